// Package docs Shift Handover API.
//
// Documentation of the local Shift Handover API. It edits one surgical shift
// handover report at a time and exports it as a slide deck.
//
//     Schemes: http
//     BasePath: /
//     Version: 1.0.0
//     Host: 127.0.0.1:8080
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//     - application/vnd.openxmlformats-officedocument.presentationml.presentation
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/shift-handover/export"
	"github.com/linesmerrill/shift-handover/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/report report currentReport
// Gets the report being edited.
// responses:
//   200: reportResponse

// swagger:route PUT /api/v1/report/fields/{field} report updateField
// Sets one scalar field of the report being edited.
// responses:
//   200: reportResponse
//   400: errorResponse

// swagger:route PUT /api/v1/report/date report switchDate
// Switches the form to another date, discarding unsaved edits.
// responses:
//   200: reportResponse

// Shows the full handover report
// swagger:response reportResponse
type reportResponseWrapper struct {
	// in:body
	Body models.Report
}

// swagger:route POST /api/v1/report/export report exportReport
// Exports the report being edited as DD-MM-YYYY.pptx. With download=true the
// deck is streamed back instead.
// responses:
//   200: exportResponse
//   409: errorResponse

// Shows where the deck was written
// swagger:response exportResponse
type exportResponseWrapper struct {
	// in:body
	Body export.Result
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}

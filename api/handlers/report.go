package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/databases"
	"github.com/linesmerrill/shift-handover/export"
	"github.com/linesmerrill/shift-handover/models"
	"github.com/linesmerrill/shift-handover/mutations"
	"github.com/linesmerrill/shift-handover/session"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Report handles the handover form requests
type Report struct {
	Editor    *session.Editor
	RDB       databases.ReportDatabase
	Exporter  *export.Exporter
	ExportDir string
}

// FormValue is the value of one form input. Numbers are accepted as well as
// strings so clients may send counters either way.
type FormValue string

// UnmarshalJSON accepts a JSON string, number or null
func (v *FormValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = FormValue(n.String())
		return nil
	}
	if string(b) == "null" {
		*v = ""
		return nil
	}
	return fmt.Errorf("value must be a string or a number, got %s", b)
}

type valueRequest struct {
	Value FormValue `json:"value"`
}

type dateRequest struct {
	ReportDate string `json:"reportDate"`
}

type addItemResponse struct {
	ID     string        `json:"id"`
	Report models.Report `json:"report"`
}

type saveResponse struct {
	Message    string `json:"message"`
	ReportDate string `json:"reportDate"`
}

// ReportDatesHandler lists the dates that have a saved report
func (re Report) ReportDatesHandler(w http.ResponseWriter, r *http.Request) {
	dates, err := re.RDB.Dates(r.Context())
	if err != nil {
		config.ErrorStatus("failed to list saved reports", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dates": dates})
}

// CurrentReportHandler returns the report open in the form
func (re Report) CurrentReportHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, re.Editor.Snapshot())
}

// SwitchDateHandler opens the report of another date. Unsaved edits are dropped.
func (re Report) SwitchDateHandler(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	writeJSON(w, http.StatusOK, re.Editor.SwitchDate(r.Context(), req.ReportDate))
}

// UpdateFieldHandler sets one top-level field from form input
func (re Report) UpdateFieldHandler(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	report, err := re.Editor.SetField(r.Context(), field, string(req.Value))
	if err != nil {
		mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// UpdateTeamHandler sets the doctors or nurses of the on-duty team
func (re Report) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	report, err := re.Editor.SetTeam(role, string(req.Value))
	if err != nil {
		mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AddItemHandler appends an empty item to a detail list
func (re Report) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	list := models.ListName(mux.Vars(r)["list"])

	report, id, err := re.Editor.AddItem(list)
	if err != nil {
		mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addItemResponse{ID: id, Report: report})
}

// UpdateItemHandler sets one field of a list item
func (re Report) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req valueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	report, err := re.Editor.UpdateItem(models.ListName(vars["list"]), vars["id"], vars["field"], string(req.Value))
	if err != nil {
		mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RemoveItemHandler drops a list item. Unknown ids are ignored.
func (re Report) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	report, err := re.Editor.RemoveItem(models.ListName(vars["list"]), vars["id"])
	if err != nil {
		mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SaveHandler persists the report open in the form
func (re Report) SaveHandler(w http.ResponseWriter, r *http.Request) {
	if err := re.Editor.Save(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, databases.ErrStorageFailure) {
			status = http.StatusInsufficientStorage
		}
		config.ErrorStatus("failed to save report", status, w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Message: "report saved", ReportDate: re.Editor.Date()})
}

// ExportHandler renders the current report as a slide deck. With
// ?download=true the file is streamed back, otherwise it is written to the
// default download folder.
func (re Report) ExportHandler(w http.ResponseWriter, r *http.Request) {
	download, _ := strconv.ParseBool(r.URL.Query().Get("download"))

	var dest export.Destination = export.DirectoryDestination{Dir: re.ExportDir}
	started := false
	if download {
		dest = export.WriterDestination{W: w, Prepare: func(name string) {
			started = true
			w.Header().Set("Content-Type", pptxContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
			w.WriteHeader(http.StatusOK)
		}}
	}

	res, err := re.Exporter.Export(r.Context(), re.Editor.Snapshot(), dest)
	switch {
	case errors.Is(err, export.ErrExportInProgress):
		config.ErrorStatus("an export is already running", http.StatusConflict, w, err)
		return
	case err != nil && started:
		// the body has started; all that is left is to log
		zap.S().Errorw("export download interrupted", "file", res.FileName, "error", err)
		return
	case err != nil:
		config.ErrorStatus("failed to export report", http.StatusInternalServerError, w, err)
		return
	}
	if !download {
		writeJSON(w, http.StatusOK, res)
	}
}

func mutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mutations.ErrUnknownField),
		errors.Is(err, mutations.ErrUnknownList),
		errors.Is(err, mutations.ErrUnknownRole):
		config.ErrorStatus("invalid form update", http.StatusBadRequest, w, err)
	default:
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

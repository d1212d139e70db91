// Package mutations holds the pure update functions applied to a report on
// every form edit. No function here modifies its input; each returns a new
// report that the caller adopts as the current record.
package mutations

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/linesmerrill/shift-handover/models"
)

var (
	// ErrUnknownField is returned for a field name that the report or item does not declare
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownList is returned for a list name outside the three detail lists
	ErrUnknownList = errors.New("unknown list")
	// ErrUnknownRole is returned for an on-duty team role other than doctors or nurses
	ErrUnknownRole = errors.New("unknown role")
)

// NewID generates list item ids. Tests may replace it.
var NewID = func() string {
	return uuid.New().String()
}

// CoerceInt converts raw form input into a counter value. Empty input, text that
// does not parse and non-finite numbers all become 0; fractional input is
// truncated toward zero.
func CoerceInt(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// SetScalarField sets a top-level field from raw form input. Numeric fields are
// coerced with CoerceInt, text and date fields keep the raw string.
func SetScalarField(r models.Report, field, raw string) (models.Report, error) {
	out := r.Clone()
	if models.IsNumericField(field) {
		*counter(&out, field) = CoerceInt(raw)
		return out, nil
	}
	switch field {
	case models.FieldReportDate:
		out.ReportDate = raw
	case models.FieldAdditionalNotes:
		out.AdditionalNotes = raw
	default:
		return r, ErrUnknownField
	}
	return out, nil
}

func counter(r *models.Report, field string) *int {
	switch field {
	case models.FieldPreviousPatients:
		return &r.PreviousPatients
	case models.FieldNewAdmissions:
		return &r.NewAdmissions
	case models.FieldDischarges:
		return &r.Discharges
	case models.FieldTransfersOut:
		return &r.TransfersOut
	case models.FieldTransfersIn:
		return &r.TransfersIn
	case models.FieldHospitalTransfersOut:
		return &r.HospitalTransfersOut
	case models.FieldCurrentPatients:
		return &r.CurrentPatients
	case models.FieldOutpatients:
		return &r.Outpatients
	case models.FieldMinorSurgeries:
		return &r.MinorSurgeries
	case models.FieldScheduledSurgeriesCount:
		return &r.ScheduledSurgeriesCount
	case models.FieldEmergencySurgeriesCount:
		return &r.EmergencySurgeriesCount
	}
	return nil
}

// SetTeamField updates one role of the on-duty team and leaves the other untouched
func SetTeamField(r models.Report, role, value string) (models.Report, error) {
	out := r.Clone()
	switch role {
	case models.RoleDoctors:
		out.OnDutyTeam.Doctors = value
	case models.RoleNurses:
		out.OnDutyTeam.Nurses = value
	default:
		return r, ErrUnknownRole
	}
	return out, nil
}

// AddListItem appends an empty item with a fresh id to the named list and
// returns the new report together with that id.
func AddListItem(r models.Report, list models.ListName) (models.Report, string, error) {
	if !list.Valid() {
		return r, "", ErrUnknownList
	}
	out := r.Clone()
	id := NewID()
	switch list {
	case models.ListScheduledSurgeries:
		out.ScheduledSurgeriesDetails = append(out.ScheduledSurgeriesDetails, models.SurgeryDetail{ID: id})
	case models.ListEmergencySurgeries:
		out.EmergencySurgeriesDetails = append(out.EmergencySurgeriesDetails, models.SurgeryDetail{ID: id})
	case models.ListSevereHandovers:
		out.SeverePatientHandovers = append(out.SeverePatientHandovers, models.SeverePatientHandover{ID: id})
	}
	return out, id, nil
}

// RemoveListItem drops the item with the given id. An unknown id is not an
// error: the report comes back unchanged.
func RemoveListItem(r models.Report, list models.ListName, id string) (models.Report, error) {
	if !list.Valid() {
		return r, ErrUnknownList
	}
	out := r.Clone()
	switch list {
	case models.ListScheduledSurgeries:
		out.ScheduledSurgeriesDetails = removeSurgery(out.ScheduledSurgeriesDetails, id)
	case models.ListEmergencySurgeries:
		out.EmergencySurgeriesDetails = removeSurgery(out.EmergencySurgeriesDetails, id)
	case models.ListSevereHandovers:
		kept := out.SeverePatientHandovers[:0]
		for _, h := range out.SeverePatientHandovers {
			if h.ID != id {
				kept = append(kept, h)
			}
		}
		out.SeverePatientHandovers = kept
	}
	return out, nil
}

func removeSurgery(details []models.SurgeryDetail, id string) []models.SurgeryDetail {
	kept := details[:0]
	for _, s := range details {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return kept
}

// UpdateListItem replaces one field of the item with the given id. An unknown
// id leaves the report unchanged; an unknown field name is an error.
func UpdateListItem(r models.Report, list models.ListName, id, field, value string) (models.Report, error) {
	if !list.Valid() {
		return r, ErrUnknownList
	}
	out := r.Clone()
	switch list {
	case models.ListScheduledSurgeries, models.ListEmergencySurgeries:
		details := out.ScheduledSurgeriesDetails
		if list == models.ListEmergencySurgeries {
			details = out.EmergencySurgeriesDetails
		}
		if surgeryField(nil, field) == nil {
			return r, ErrUnknownField
		}
		for i := range details {
			if details[i].ID == id {
				*surgeryField(&details[i], field) = value
				break
			}
		}
	case models.ListSevereHandovers:
		if handoverField(nil, field) == nil {
			return r, ErrUnknownField
		}
		for i := range out.SeverePatientHandovers {
			if out.SeverePatientHandovers[i].ID == id {
				*handoverField(&out.SeverePatientHandovers[i], field) = value
				break
			}
		}
	}
	return out, nil
}

// surgeryField returns the address of the named editable field. A nil item
// only checks the name.
func surgeryField(s *models.SurgeryDetail, field string) *string {
	if s == nil {
		s = &models.SurgeryDetail{}
	}
	switch field {
	case models.ItemFieldPatientName:
		return &s.PatientName
	case models.ItemFieldBirthYear:
		return &s.BirthYear
	case models.ItemFieldDiagnosis:
		return &s.Diagnosis
	case models.ItemFieldProcedure:
		return &s.Procedure
	case models.ItemFieldSurgeon:
		return &s.Surgeon
	}
	return nil
}

func handoverField(h *models.SeverePatientHandover, field string) *string {
	if h == nil {
		h = &models.SeverePatientHandover{}
	}
	switch field {
	case models.ItemFieldPatientName:
		return &h.PatientName
	case models.ItemFieldBirthYear:
		return &h.BirthYear
	case models.ItemFieldDiagnosis:
		return &h.Diagnosis
	case models.ItemFieldCurrentStatus:
		return &h.CurrentStatus
	}
	return nil
}

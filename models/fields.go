package models

// Scalar field names as they appear on the form and in the stored document
const (
	FieldReportDate              = "reportDate"
	FieldPreviousPatients        = "previousPatients"
	FieldNewAdmissions           = "newAdmissions"
	FieldDischarges              = "discharges"
	FieldTransfersOut            = "transfersOut"
	FieldTransfersIn             = "transfersIn"
	FieldHospitalTransfersOut    = "hospitalTransfersOut"
	FieldCurrentPatients         = "currentPatients"
	FieldOutpatients             = "outpatients"
	FieldMinorSurgeries          = "minorSurgeries"
	FieldScheduledSurgeriesCount = "scheduledSurgeriesCount"
	FieldEmergencySurgeriesCount = "emergencySurgeriesCount"
	FieldAdditionalNotes         = "additionalNotes"
	FieldOnDutyTeam              = "onDutyTeam"
)

// NumericFields lists every integer field of a report in form order
var NumericFields = []string{
	FieldPreviousPatients,
	FieldNewAdmissions,
	FieldDischarges,
	FieldTransfersOut,
	FieldTransfersIn,
	FieldHospitalTransfersOut,
	FieldCurrentPatients,
	FieldOutpatients,
	FieldMinorSurgeries,
	FieldScheduledSurgeriesCount,
	FieldEmergencySurgeriesCount,
}

// IsNumericField reports whether field is one of NumericFields
func IsNumericField(field string) bool {
	for _, f := range NumericFields {
		if f == field {
			return true
		}
	}
	return false
}

// Role names of the on-duty team
const (
	RoleDoctors = "doctors"
	RoleNurses  = "nurses"
)

// ListName identifies one of the three detail lists of a report
type ListName string

// The detail lists
const (
	ListScheduledSurgeries ListName = "scheduledSurgeries"
	ListEmergencySurgeries ListName = "emergencySurgeries"
	ListSevereHandovers    ListName = "severeHandovers"
)

// Valid reports whether l names a known list
func (l ListName) Valid() bool {
	switch l {
	case ListScheduledSurgeries, ListEmergencySurgeries, ListSevereHandovers:
		return true
	}
	return false
}

// Item field names shared by the detail entities
const (
	ItemFieldID            = "id"
	ItemFieldPatientName   = "patientName"
	ItemFieldBirthYear     = "birthYear"
	ItemFieldDiagnosis     = "diagnosis"
	ItemFieldProcedure     = "procedure"
	ItemFieldSurgeon       = "surgeon"
	ItemFieldCurrentStatus = "currentStatus"
)

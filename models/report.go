package models

// CurrentSchemaVersion is the version stamped on every report written by the store
const CurrentSchemaVersion = 2

// Report holds the structure for one shift handover report, keyed by ReportDate
type Report struct {
	SchemaVersion int        `json:"schemaVersion"`
	ReportDate    string     `json:"reportDate"`
	OnDutyTeam    OnDutyTeam `json:"onDutyTeam"`

	PreviousPatients     int `json:"previousPatients"`
	NewAdmissions        int `json:"newAdmissions"`
	Discharges           int `json:"discharges"`
	TransfersOut         int `json:"transfersOut"`
	TransfersIn          int `json:"transfersIn"`
	HospitalTransfersOut int `json:"hospitalTransfersOut"`
	CurrentPatients      int `json:"currentPatients"`
	Outpatients          int `json:"outpatients"`
	MinorSurgeries       int `json:"minorSurgeries"`

	// summary counts are user entered and never derived from the detail lists
	ScheduledSurgeriesCount   int             `json:"scheduledSurgeriesCount"`
	EmergencySurgeriesCount   int             `json:"emergencySurgeriesCount"`
	ScheduledSurgeriesDetails []SurgeryDetail `json:"scheduledSurgeriesDetails"`
	EmergencySurgeriesDetails []SurgeryDetail `json:"emergencySurgeriesDetails"`

	SeverePatientHandovers []SeverePatientHandover `json:"severePatientHandovers"`

	AdditionalNotes string `json:"additionalNotes"`
}

// OnDutyTeam holds the free-text roster of the shift
type OnDutyTeam struct {
	Doctors string `json:"doctors"`
	Nurses  string `json:"nurses"`
}

// SurgeryDetail holds one scheduled or emergency surgery
type SurgeryDetail struct {
	ID          string `json:"id"`
	PatientName string `json:"patientName"`
	BirthYear   string `json:"birthYear"`
	Diagnosis   string `json:"diagnosis"`
	Procedure   string `json:"procedure"`
	Surgeon     string `json:"surgeon"`
}

// SeverePatientHandover holds one severe patient handed over to the next shift
type SeverePatientHandover struct {
	ID            string `json:"id"`
	PatientName   string `json:"patientName"`
	BirthYear     string `json:"birthYear"`
	Diagnosis     string `json:"diagnosis"`
	CurrentStatus string `json:"currentStatus"`
}

// NewReport returns the canonical empty report for the given date
func NewReport(date string) Report {
	return Report{
		SchemaVersion:             CurrentSchemaVersion,
		ReportDate:                date,
		ScheduledSurgeriesDetails: []SurgeryDetail{},
		EmergencySurgeriesDetails: []SurgeryDetail{},
		SeverePatientHandovers:    []SeverePatientHandover{},
	}
}

// Clone returns a deep copy of the report. The detail lists never share a
// backing array with the original; nil lists stay nil.
func (r Report) Clone() Report {
	c := r
	if r.ScheduledSurgeriesDetails != nil {
		c.ScheduledSurgeriesDetails = append(make([]SurgeryDetail, 0, len(r.ScheduledSurgeriesDetails)), r.ScheduledSurgeriesDetails...)
	}
	if r.EmergencySurgeriesDetails != nil {
		c.EmergencySurgeriesDetails = append(make([]SurgeryDetail, 0, len(r.EmergencySurgeriesDetails)), r.EmergencySurgeriesDetails...)
	}
	if r.SeverePatientHandovers != nil {
		c.SeverePatientHandovers = append(make([]SeverePatientHandover, 0, len(r.SeverePatientHandovers)), r.SeverePatientHandovers...)
	}
	return c
}

// Normalize replaces nil detail lists with empty ones
func (r *Report) Normalize() {
	if r.ScheduledSurgeriesDetails == nil {
		r.ScheduledSurgeriesDetails = []SurgeryDetail{}
	}
	if r.EmergencySurgeriesDetails == nil {
		r.EmergencySurgeriesDetails = []SurgeryDetail{}
	}
	if r.SeverePatientHandovers == nil {
		r.SeverePatientHandovers = []SeverePatientHandover{}
	}
}

// TotalSurgeries is the sum of the two summary counts
func (r Report) TotalSurgeries() int {
	return r.ScheduledSurgeriesCount + r.EmergencySurgeriesCount
}

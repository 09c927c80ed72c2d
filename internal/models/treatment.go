package models

import (
	"time"
)

// Treatment links one physiotherapist with one patient.
// At most one active treatment may exist per pair.
type Treatment struct {
	ID        int64
	PhysioID  int64
	PatientID int64
	StartedOn time.Time
	EndedOn   *time.Time // nil while the treatment is active
	Active    bool
}

// TreatmentWithPhysio is the patient side view of a treatment
type TreatmentWithPhysio struct {
	Treatment
	PhysioFirstName string
	PhysioLastName  string
}

// RosterEntry is one row of the physiotherapist's active patient list
type RosterEntry struct {
	PatientID int64
	FirstName string
	LastName  string
}

// PatientDetail is the full card the physiotherapist sees for a patient in care
type PatientDetail struct {
	Patient
	TreatmentID      int64
	StartedOn        time.Time
	PastAppointments int64
}

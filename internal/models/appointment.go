package models

import (
	"time"
)

const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
)

type Appointment struct {
	ID          int64
	TreatmentID int64
	ScheduledOn time.Time
	ScheduledAt string // time of day, HH:MM:SS
	Status      string
}

// AppointmentWithPatient is the physiotherapist agenda view
type AppointmentWithPatient struct {
	Appointment
	PatientID        int64
	PatientFirstName string
	PatientLastName  string
}

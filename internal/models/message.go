package models

import (
	"time"
)

type Message struct {
	ID          int64
	TreatmentID int64
	Sender      PrincipalKind
	Body        string
	SentAt      time.Time
}

// Conversation is one row of the physiotherapist chat list: a patient in
// active care together with the latest message exchanged
type Conversation struct {
	PatientID        int64
	PatientFirstName string
	PatientLastName  string
	LastBody         string
	LastSender       PrincipalKind
	LastSentAt       time.Time
}

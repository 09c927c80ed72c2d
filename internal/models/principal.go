package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrincipalKind separates the two account tables that may authenticate
type PrincipalKind string

const (
	KindPhysio  PrincipalKind = "physio"
	KindPatient PrincipalKind = "patient"
)

// Principal is the authenticated actor resolved from an access token
type Principal struct {
	ID   int64
	Kind PrincipalKind
}

type Physio struct {
	ID           int64
	CreatedAt    time.Time
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

type Patient struct {
	ID        int64
	CreatedAt time.Time
	FirstName string
	LastName  string
	Email     string

	// Nil until the patient completes self registration.
	// Physiotherapists may create patient records ahead of that.
	PasswordHash *string

	BirthDate time.Time
	Gender    string
	HeightCm  decimal.Decimal
	WeightKg  decimal.Decimal
	Diagnosis string
}

// Registered reports whether the patient claimed the account with a password
func (p Patient) Registered() bool {
	return p.PasswordHash != nil
}

package models

import (
	"encoding/json"
	"time"
)

// TrainingSession records one execution of a training card by the patient
type TrainingSession struct {
	ID     int64
	CardID int64
	HeldAt time.Time
	Survey json.RawMessage // nil until the end of session questionnaire is submitted
}

// SessionExercise holds what the patient actually performed
type SessionExercise struct {
	SessionID  int64
	ExerciseID int64
	ActualSets int
	ActualReps int
	Notes      string
}

// SessionSummary is the patient side session list view
type SessionSummary struct {
	ID              int64
	HeldAt          time.Time
	CardID          int64
	CardName        string
	CardKind        string
	PhysioFirstName string
	PhysioLastName  string
}

// SessionExerciseDetail compares performed dosage with the assigned one
type SessionExerciseDetail struct {
	ExerciseID   int64
	Name         string
	ActualSets   int
	ActualReps   int
	Notes        string
	AssignedSets int
	AssignedReps int
}

// CardProgress groups the sessions of one training card for progress charts
type CardProgress struct {
	CardID   int64
	CardName string
	Sessions []TrainingSession
}

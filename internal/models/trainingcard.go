package models

const (
	CardKindClinic = "clinic"
	CardKindHome   = "home"
)

type TrainingCard struct {
	ID          int64
	TreatmentID int64
	Name        string
	Kind        string
	Notes       string
}

// CardExercise is an exercise assigned to a training card with its dosage
type CardExercise struct {
	CardID     int64
	ExerciseID int64
	Sets       int
	Reps       int
}

// CardExerciseDetail joins the assignment with the exercise description
type CardExerciseDetail struct {
	Exercise
	Sets int
	Reps int
}

package handlers

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fisiocare/backend/internal/models"
)

// Response shapes shared by several handlers. Request shapes stay local
// to the handler that binds them.

const dateLayout = "2006-01-02"

type physioResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func toPhysioResponse(p models.Physio) physioResponse {
	return physioResponse{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

type patientResponse struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Email      string          `json:"email"`
	BirthDate  string          `json:"birthDate"`
	Gender     string          `json:"gender"`
	HeightCm   decimal.Decimal `json:"heightCm"`
	WeightKg   decimal.Decimal `json:"weightKg"`
	Diagnosis  string          `json:"diagnosis"`
	Registered bool            `json:"registered"`
}

func toPatientResponse(p models.Patient) patientResponse {
	return patientResponse{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		BirthDate:  p.BirthDate.Format(dateLayout),
		Gender:     p.Gender,
		HeightCm:   p.HeightCm,
		WeightKg:   p.WeightKg,
		Diagnosis:  p.Diagnosis,
		Registered: p.Registered(),
	}
}

type treatmentResponse struct {
	ID        int64  `json:"id"`
	StartedOn string `json:"startedOn"`
	EndedOn   string `json:"endedOn,omitempty"`
	Active    bool   `json:"active"`
}

func toTreatmentResponse(t models.Treatment) treatmentResponse {
	response := treatmentResponse{
		ID:        t.ID,
		StartedOn: t.StartedOn.Format(dateLayout),
		Active:    t.Active,
	}
	if t.EndedOn != nil {
		response.EndedOn = t.EndedOn.Format(dateLayout)
	}
	return response
}

type appointmentResponse struct {
	ID          int64  `json:"id"`
	TreatmentID int64  `json:"treatmentId"`
	ScheduledOn string `json:"scheduledOn"`
	ScheduledAt string `json:"scheduledAt"`
	Status      string `json:"status"`
}

func toAppointmentResponse(a models.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          a.ID,
		TreatmentID: a.TreatmentID,
		ScheduledOn: a.ScheduledOn.Format(dateLayout),
		ScheduledAt: a.ScheduledAt,
		Status:      a.Status,
	}
}

type messageResponse struct {
	ID          int64     `json:"id"`
	TreatmentID int64     `json:"treatmentId"`
	Sender      string    `json:"sender"`
	Body        string    `json:"body"`
	SentAt      time.Time `json:"sentAt"`
}

func toMessageResponse(m models.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		TreatmentID: m.TreatmentID,
		Sender:      string(m.Sender),
		Body:        m.Body,
		SentAt:      m.SentAt,
	}
}

type exerciseResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Execution   string `json:"execution"`
	Advice      string `json:"advice"`
	Image       string `json:"image,omitempty"`
	Video       string `json:"video,omitempty"`
}

func toExerciseResponse(e models.Exercise) exerciseResponse {
	return exerciseResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Execution:   e.Execution,
		Advice:      e.Advice,
		Image:       e.Image,
		Video:       e.Video,
	}
}

type cardResponse struct {
	ID          int64  `json:"id"`
	TreatmentID int64  `json:"treatmentId"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Notes       string `json:"notes,omitempty"`
}

func toCardResponse(c models.TrainingCard) cardResponse {
	return cardResponse{
		ID:          c.ID,
		TreatmentID: c.TreatmentID,
		Name:        c.Name,
		Kind:        c.Kind,
		Notes:       c.Notes,
	}
}

type sessionResponse struct {
	ID     int64           `json:"id"`
	CardID int64           `json:"cardId"`
	HeldAt time.Time       `json:"heldAt"`
	Survey json.RawMessage `json:"survey,omitempty"`
}

func toSessionResponse(s models.TrainingSession) sessionResponse {
	return sessionResponse{
		ID:     s.ID,
		CardID: s.CardID,
		HeldAt: s.HeldAt,
		Survey: s.Survey,
	}
}

type sessionExerciseResponse struct {
	ExerciseID   int64  `json:"exerciseId"`
	Name         string `json:"name"`
	ActualSets   int    `json:"actualSets"`
	ActualReps   int    `json:"actualReps"`
	Notes        string `json:"notes,omitempty"`
	AssignedSets int    `json:"assignedSets"`
	AssignedReps int    `json:"assignedReps"`
}

func toSessionExerciseResponses(details []models.SessionExerciseDetail) []sessionExerciseResponse {
	responses := make([]sessionExerciseResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, sessionExerciseResponse{
			ExerciseID:   d.ExerciseID,
			Name:         d.Name,
			ActualSets:   d.ActualSets,
			ActualReps:   d.ActualReps,
			Notes:        d.Notes,
			AssignedSets: d.AssignedSets,
			AssignedReps: d.AssignedReps,
		})
	}
	return responses
}

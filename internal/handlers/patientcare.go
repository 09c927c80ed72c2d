package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/appointment"
	"github.com/fisiocare/backend/internal/service/chat"
	"github.com/fisiocare/backend/internal/service/training"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// PatientCareHandler is the whole authenticated patient surface. Route
// names follow the app the patients already use.
type PatientCareHandler struct {
	treatments   *treatment.TreatmentService
	appointments *appointment.AppointmentService
	chat         *chat.ChatService
	training     *training.TrainingService
}

func NewPatientCare(
	treatments *treatment.TreatmentService,
	appointments *appointment.AppointmentService,
	chatService *chat.ChatService,
	trainingService *training.TrainingService,
) *PatientCareHandler {
	return &PatientCareHandler{
		treatments:   treatments,
		appointments: appointments,
		chat:         chatService,
		training:     trainingService,
	}
}

func (h *PatientCareHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /trattamenti", h.listTreatments)
	mux.HandleFunc("GET /trattamenti/{id}", h.getTreatment)
	mux.HandleFunc("GET /appuntamenti", h.listAppointments)
	mux.HandleFunc("POST /appuntamenti", h.requestAppointment)
	mux.HandleFunc("GET /messaggi", h.listMessages)
	mux.HandleFunc("POST /messaggi", h.sendMessage)
	mux.HandleFunc("GET /schede", h.listCards)
	mux.HandleFunc("POST /sessioni", h.startSession)
	mux.HandleFunc("GET /sessioni", h.listSessions)
	mux.HandleFunc("GET /sessioni/{id}", h.sessionDetail)
	mux.HandleFunc("PATCH /sessioni/{id}/esercizi", h.updateSessionExercise)
	mux.HandleFunc("PATCH /sessioni/{id}/sondaggio", h.saveSurvey)
}

type treatmentWithPhysioResponse struct {
	treatmentResponse
	PhysioFirstName string `json:"physioFirstName"`
	PhysioLastName  string `json:"physioLastName"`
}

func (h *PatientCareHandler) listTreatments(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	treatments, err := h.treatments.ListForPatient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]treatmentWithPhysioResponse, 0, len(treatments))
	for _, t := range treatments {
		responses = append(responses, treatmentWithPhysioResponse{
			treatmentResponse: toTreatmentResponse(t.Treatment),
			PhysioFirstName:   t.PhysioFirstName,
			PhysioLastName:    t.PhysioLastName,
		})
	}

	render.JSON(w, http.StatusOK, "Treatments", responses)
}

func (h *PatientCareHandler) getTreatment(w http.ResponseWriter, r *http.Request) {
	treatmentID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	found, err := h.treatments.GetForPatient(r.Context(), treatmentID, principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Treatment", treatmentWithPhysioResponse{
		treatmentResponse: toTreatmentResponse(found.Treatment),
		PhysioFirstName:   found.PhysioFirstName,
		PhysioLastName:    found.PhysioLastName,
	})
}

func (h *PatientCareHandler) listAppointments(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	appointments, err := h.appointments.ListForPatient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]appointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		responses = append(responses, toAppointmentResponse(a))
	}

	render.JSON(w, http.StatusOK, "Appointments", responses)
}

func (h *PatientCareHandler) requestAppointment(w http.ResponseWriter, r *http.Request) {
	scheduledOn, scheduledAt, err := bindSlot(w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	requested, err := h.appointments.Request(r.Context(), principal.ID, scheduledOn, scheduledAt)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Appointment requested", toAppointmentResponse(requested))
}

func (h *PatientCareHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	messages, err := h.chat.ListForPatient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, toMessageResponse(m))
	}

	render.JSON(w, http.StatusOK, "Messages", responses)
}

func (h *PatientCareHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Body string `json:"body" validate:"required,max=2000"`
	}

	data, err := render.BindAndValidate[SendRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	message, err := h.chat.SendAsPatient(r.Context(), principal.ID, data.Body)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Message sent", toMessageResponse(message))
}

func (h *PatientCareHandler) listCards(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	cards, err := h.training.ListCardsForPatient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		responses = append(responses, toCardResponse(c))
	}

	render.JSON(w, http.StatusOK, "Training cards", responses)
}

func (h *PatientCareHandler) startSession(w http.ResponseWriter, r *http.Request) {
	type StartSessionRequest struct {
		CardID int64 `json:"cardId" validate:"required"`
	}

	data, err := render.BindAndValidate[StartSessionRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	session, err := h.training.StartSession(r.Context(), principal.ID, data.CardID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Session started", toSessionResponse(session))
}

func (h *PatientCareHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	type SessionSummaryResponse struct {
		ID              int64  `json:"id"`
		HeldAt          string `json:"heldAt"`
		CardID          int64  `json:"cardId"`
		CardName        string `json:"cardName"`
		CardKind        string `json:"cardKind"`
		PhysioFirstName string `json:"physioFirstName"`
		PhysioLastName  string `json:"physioLastName"`
	}

	principal := principalctx.MustFromContext(r.Context())

	summaries, err := h.training.ListSessionsForPatient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]SessionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		responses = append(responses, SessionSummaryResponse{
			ID:              s.ID,
			HeldAt:          s.HeldAt.Format("2006-01-02 15:04"),
			CardID:          s.CardID,
			CardName:        s.CardName,
			CardKind:        s.CardKind,
			PhysioFirstName: s.PhysioFirstName,
			PhysioLastName:  s.PhysioLastName,
		})
	}

	render.JSON(w, http.StatusOK, "Training sessions", responses)
}

func (h *PatientCareHandler) sessionDetail(w http.ResponseWriter, r *http.Request) {
	type SessionDetailResponse struct {
		sessionResponse
		Exercises []sessionExerciseResponse `json:"exercises"`
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	detail, err := h.training.SessionDetailForPatient(r.Context(), principal.ID, sessionID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Session detail", SessionDetailResponse{
		sessionResponse: toSessionResponse(detail.Session),
		Exercises:       toSessionExerciseResponses(detail.Exercises),
	})
}

func (h *PatientCareHandler) updateSessionExercise(w http.ResponseWriter, r *http.Request) {
	type UpdateRequest struct {
		ExerciseID int64   `json:"exerciseId" validate:"required"`
		ActualSets *int    `json:"actualSets" validate:"omitempty,min=0"`
		ActualReps *int    `json:"actualReps" validate:"omitempty,min=0"`
		Notes      *string `json:"notes" validate:"omitempty,max=2000"`
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	err = h.training.UpdateSessionExercise(r.Context(), principal.ID, sessionID, data.ExerciseID, repository.UpdateSessionExerciseParams{
		ActualSets: data.ActualSets,
		ActualReps: data.ActualReps,
		Notes:      data.Notes,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Session exercise updated", nil)
}

func (h *PatientCareHandler) saveSurvey(w http.ResponseWriter, r *http.Request) {
	type SurveyRequest struct {
		Survey json.RawMessage `json:"survey" validate:"required"`
	}

	sessionID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[SurveyRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.training.SaveSurvey(r.Context(), principal.ID, sessionID, data.Survey); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Survey saved", nil)
}

package handlers

import (
	"net/http"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/training"
)

// TrainingHandler is the physiotherapist side of cards and sessions
type TrainingHandler struct {
	training *training.TrainingService
}

func NewTraining(trainingService *training.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: trainingService}
}

func (h *TrainingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /patients/{id}/cards", h.createCard)
	mux.HandleFunc("GET /patients/{id}/cards", h.listCards)
	mux.HandleFunc("GET /patients/{id}/progress", h.progress)
	mux.HandleFunc("PATCH /cards/{id}", h.updateCard)
	mux.HandleFunc("DELETE /cards/{id}", h.deleteCard)
	mux.HandleFunc("POST /cards/{id}/exercises", h.addExercise)
	mux.HandleFunc("GET /cards/{id}/exercises", h.listExercises)
	mux.HandleFunc("PATCH /cards/{id}/exercises/{exerciseId}", h.updateExercise)
	mux.HandleFunc("DELETE /cards/{id}/exercises/{exerciseId}", h.removeExercise)
	mux.HandleFunc("GET /cards/{id}/sessions", h.listSessions)
	mux.HandleFunc("GET /sessions/{id}", h.sessionDetail)
}

func (h *TrainingHandler) createCard(w http.ResponseWriter, r *http.Request) {
	type CreateCardRequest struct {
		Name  string `json:"name" validate:"required,max=200"`
		Kind  string `json:"kind" validate:"required,oneof=clinic home"`
		Notes string `json:"notes"`
	}

	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[CreateCardRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	card, err := h.training.CreateCard(r.Context(), principal.ID, patientID, data.Name, data.Kind, data.Notes)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Training card created", toCardResponse(card))
}

func (h *TrainingHandler) listCards(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	cards, err := h.training.ListCards(r.Context(), principal.ID, patientID)
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

func (h *TrainingHandler) updateCard(w http.ResponseWriter, r *http.Request) {
	type UpdateCardRequest struct {
		Name  *string `json:"name" validate:"omitempty,max=200"`
		Kind  *string `json:"kind" validate:"omitempty,oneof=clinic home"`
		Notes *string `json:"notes"`
	}

	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[UpdateCardRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	card, err := h.training.UpdateCard(r.Context(), principal.ID, cardID, repository.UpdateCardParams{
		Name:  data.Name,
		Kind:  data.Kind,
		Notes: data.Notes,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Training card updated", toCardResponse(card))
}

func (h *TrainingHandler) deleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.training.DeleteCard(r.Context(), principal.ID, cardID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *TrainingHandler) addExercise(w http.ResponseWriter, r *http.Request) {
	type AddExerciseRequest struct {
		ExerciseID int64 `json:"exerciseId" validate:"required"`
		Sets       int   `json:"sets" validate:"required,min=1"`
		Reps       int   `json:"reps" validate:"required,min=1"`
	}

	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[AddExerciseRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	err = h.training.AddExercise(r.Context(), principal.ID, cardID, data.ExerciseID, data.Sets, data.Reps)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Exercise assigned to card", nil)
}

func (h *TrainingHandler) listExercises(w http.ResponseWriter, r *http.Request) {
	type CardExerciseResponse struct {
		exerciseResponse
		Sets int `json:"sets"`
		Reps int `json:"reps"`
	}

	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	details, err := h.training.ListCardExercises(r.Context(), principal.ID, cardID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]CardExerciseResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, CardExerciseResponse{
			exerciseResponse: toExerciseResponse(d.Exercise),
			Sets:             d.Sets,
			Reps:             d.Reps,
		})
	}

	render.JSON(w, http.StatusOK, "Card exercises", responses)
}

func (h *TrainingHandler) updateExercise(w http.ResponseWriter, r *http.Request) {
	type UpdateExerciseRequest struct {
		Sets *int `json:"sets" validate:"omitempty,min=1"`
		Reps *int `json:"reps" validate:"omitempty,min=1"`
	}

	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	exerciseID, err := pathID(r, "exerciseId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[UpdateExerciseRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	err = h.training.UpdateCardExercise(r.Context(), principal.ID, cardID, exerciseID, repository.UpdateCardExerciseParams{
		Sets: data.Sets,
		Reps: data.Reps,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Card exercise updated", nil)
}

func (h *TrainingHandler) removeExercise(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	exerciseID, err := pathID(r, "exerciseId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.training.RemoveCardExercise(r.Context(), principal.ID, cardID, exerciseID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

func (h *TrainingHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	sessions, err := h.training.ListCardSessions(r.Context(), principal.ID, cardID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, toSessionResponse(s))
	}

	render.JSON(w, http.StatusOK, "Card sessions", responses)
}

func (h *TrainingHandler) sessionDetail(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.training.SessionDetailForPhysio(r.Context(), principal.ID, sessionID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Session detail", SessionDetailResponse{
		sessionResponse: toSessionResponse(detail.Session),
		Exercises:       toSessionExerciseResponses(detail.Exercises),
	})
}

func (h *TrainingHandler) progress(w http.ResponseWriter, r *http.Request) {
	type CardProgressResponse struct {
		CardID   int64             `json:"cardId"`
		CardName string            `json:"cardName"`
		Sessions []sessionResponse `json:"sessions"`
	}

	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	progress, err := h.training.Progress(r.Context(), principal.ID, patientID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]CardProgressResponse, 0, len(progress))
	for _, p := range progress {
		sessions := make([]sessionResponse, 0, len(p.Sessions))
		for _, s := range p.Sessions {
			sessions = append(sessions, toSessionResponse(s))
		}
		responses = append(responses, CardProgressResponse{
			CardID:   p.CardID,
			CardName: p.CardName,
			Sessions: sessions,
		})
	}

	render.JSON(w, http.StatusOK, "Training progress", responses)
}

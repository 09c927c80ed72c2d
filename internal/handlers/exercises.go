package handlers

import (
	"net/http"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/exercise"
)

type ExercisesHandler struct {
	exercises *exercise.ExerciseService
}

func NewExercises(exercises *exercise.ExerciseService) *ExercisesHandler {
	return &ExercisesHandler{exercises: exercises}
}

func (h *ExercisesHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /exercises", h.list)
	mux.HandleFunc("POST /exercises", h.create)
	mux.HandleFunc("GET /exercises/{id}", h.get)
	mux.HandleFunc("PATCH /exercises/{id}", h.update)
	mux.HandleFunc("DELETE /exercises/{id}", h.delete)
}

func (h *ExercisesHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateRequest struct {
		Name        string `json:"name" validate:"required,max=200"`
		Description string `json:"description" validate:"required"`
		Execution   string `json:"execution" validate:"required"`
		Advice      string `json:"advice"`
		Image       string `json:"image"`
		Video       string `json:"video"`
	}

	data, err := render.BindAndValidate[CreateRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	created, err := h.exercises.Create(r.Context(), repository.CreateExerciseParams{
		PhysioID:    principal.ID,
		Name:        data.Name,
		Description: data.Description,
		Execution:   data.Execution,
		Advice:      data.Advice,
		Image:       data.Image,
		Video:       data.Video,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Exercise created", toExerciseResponse(created))
}

func (h *ExercisesHandler) list(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	exercises, err := h.exercises.List(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]exerciseResponse, 0, len(exercises))
	for _, e := range exercises {
		responses = append(responses, toExerciseResponse(e))
	}

	render.JSON(w, http.StatusOK, "Exercise catalog", responses)
}

func (h *ExercisesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	found, err := h.exercises.Get(r.Context(), principal.ID, id)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Exercise", toExerciseResponse(found))
}

func (h *ExercisesHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateRequest struct {
		Name        *string `json:"name" validate:"omitempty,max=200"`
		Description *string `json:"description"`
		Execution   *string `json:"execution"`
		Advice      *string `json:"advice"`
		Image       *string `json:"image"`
		Video       *string `json:"video"`
	}

	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	updated, err := h.exercises.Update(r.Context(), principal.ID, id, repository.UpdateExerciseParams{
		Name:        data.Name,
		Description: data.Description,
		Execution:   data.Execution,
		Advice:      data.Advice,
		Image:       data.Image,
		Video:       data.Video,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Exercise updated", toExerciseResponse(updated))
}

func (h *ExercisesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.exercises.Delete(r.Context(), principal.ID, id); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

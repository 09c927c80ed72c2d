package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/profile"
)

type ProfileHandler struct {
	profiles *profile.ProfileService
}

func NewProfile(profiles *profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterPhysio mounts the physiotherapist's own record routes
func (h *ProfileHandler) RegisterPhysio(mux *http.ServeMux) {
	mux.HandleFunc("GET /profile", h.getPhysio)
	mux.HandleFunc("PATCH /profile", h.updatePhysio)
}

// RegisterPatient mounts the patient's own record routes, deletion included
func (h *ProfileHandler) RegisterPatient(mux *http.ServeMux) {
	mux.HandleFunc("GET /profile", h.getPatient)
	mux.HandleFunc("PUT /profile", h.updatePatient)
	mux.HandleFunc("DELETE /profile", h.deletePatient)
}

func (h *ProfileHandler) getPhysio(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	physio, err := h.profiles.Physio(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Profile", toPhysioResponse(physio))
}

func (h *ProfileHandler) updatePhysio(w http.ResponseWriter, r *http.Request) {
	type UpdateRequest struct {
		FirstName *string `json:"firstName" validate:"omitempty,max=100"`
		LastName  *string `json:"lastName" validate:"omitempty,max=100"`
		Email     *string `json:"email" validate:"omitempty,email"`
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	physio, err := h.profiles.UpdatePhysio(r.Context(), principal.ID, repository.UpdatePhysioParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Profile updated", toPhysioResponse(physio))
}

func (h *ProfileHandler) getPatient(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	patient, err := h.profiles.Patient(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Profile", toPatientResponse(patient))
}

func (h *ProfileHandler) updatePatient(w http.ResponseWriter, r *http.Request) {
	type UpdateRequest struct {
		FirstName *string          `json:"firstName" validate:"omitempty,max=100"`
		LastName  *string          `json:"lastName" validate:"omitempty,max=100"`
		Email     *string          `json:"email" validate:"omitempty,email"`
		BirthDate *string          `json:"birthDate"`
		Gender    *string          `json:"gender" validate:"omitempty,oneof=M F Other"`
		HeightCm  *decimal.Decimal `json:"heightCm"`
		WeightKg  *decimal.Decimal `json:"weightKg"`
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	var birthDate *time.Time
	if data.BirthDate != nil {
		parsed, err := time.Parse(dateLayout, *data.BirthDate)
		if err != nil {
			render.Error(w, http.StatusBadRequest, "Invalid birth date, expected YYYY-MM-DD")
			return
		}
		birthDate = &parsed
	}

	principal := principalctx.MustFromContext(r.Context())

	patient, err := h.profiles.UpdatePatient(r.Context(), principal.ID, repository.UpdatePatientParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		BirthDate: birthDate,
		Gender:    data.Gender,
		HeightCm:  data.HeightCm,
		WeightKg:  data.WeightKg,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Profile updated", toPatientResponse(patient))
}

func (h *ProfileHandler) deletePatient(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	if err := h.profiles.DeletePatient(r.Context(), principal.ID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

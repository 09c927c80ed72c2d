package handlers

import (
	"net/http"
	"time"

	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/service/auth"
)

const PatientAuthCookiePath = "/pazienti/auth"

type PatientAuthHandler struct {
	auth *auth.AuthService
}

func NewPatientAuth(authService *auth.AuthService) *PatientAuthHandler {
	return &PatientAuthHandler{auth: authService}
}

func (h *PatientAuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /check-email", h.checkEmail)
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
}

// checkEmail answers the app's first registration screen: whether the
// email belongs to a record the patient may claim
func (h *PatientAuthHandler) checkEmail(w http.ResponseWriter, r *http.Request) {
	type CheckEmailRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	data, err := render.BindAndValidate[CheckEmailRequest](w, r)
	if err != nil {
		return
	}

	if err := h.auth.CheckEmail(r.Context(), data.Email); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Email is available for registration", nil)
}

func (h *PatientAuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		FirstName string `json:"firstName" validate:"required,max=100"`
		LastName  string `json:"lastName" validate:"required,max=100"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
		BirthDate string `json:"birthDate" validate:"required"`
		Gender    string `json:"gender" validate:"required,oneof=M F Other"`
	}
	type RegisterResponse struct {
		AccessToken string          `json:"accessToken"`
		Profile     patientResponse `json:"profile"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	birthDate, err := time.Parse(dateLayout, data.BirthDate)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid birth date, expected YYYY-MM-DD")
		return
	}

	patient, pair, err := h.auth.RegisterPatient(r.Context(), auth.RegisterPatientParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
		BirthDate: birthDate,
		Gender:    data.Gender,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PatientAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusCreated, "Registered successfully", RegisterResponse{
		AccessToken: pair.Access.Value,
		Profile:     toPatientResponse(patient),
	})
}

func (h *PatientAuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type LoginResponse struct {
		AccessToken string `json:"accessToken"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	pair, err := h.auth.Login(r.Context(), models.KindPatient, data.Email, data.Password)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PatientAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusOK, "Logged in successfully", LoginResponse{AccessToken: pair.Access.Value})
}

func (h *PatientAuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	refresh, err := refreshFromCookie(r)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Refresh token cookie is missing")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), models.KindPatient, refresh)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PatientAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusOK, "Tokens refreshed successfully", RefreshResponse{AccessToken: pair.Access.Value})
}

func (h *PatientAuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	refresh, err := refreshFromCookie(r)
	if err != nil {
		render.NoContent(w)
		return
	}

	if err := h.auth.Logout(r.Context(), refresh); err != nil {
		render.ServiceError(w, err)
		return
	}

	clearRefreshCookie(w, PatientAuthCookiePath)
	render.NoContent(w)
}

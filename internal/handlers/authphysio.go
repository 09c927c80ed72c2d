package handlers

import (
	"net/http"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/service/auth"
)

// PhysioAuthCookiePath scopes the refresh cookie to the routes that
// actually consume it
const PhysioAuthCookiePath = "/fisioterapista/auth"

type PhysioAuthHandler struct {
	auth *auth.AuthService
}

func NewPhysioAuth(authService *auth.AuthService) *PhysioAuthHandler {
	return &PhysioAuthHandler{auth: authService}
}

// Register mounts the auth routes. Everything is public except
// changePassword, which goes behind the given middleware.
func (h *PhysioAuthHandler) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /refresh", h.refresh)
	mux.HandleFunc("POST /logout", h.logout)
	mux.Handle("POST /changePassword", protect(http.HandlerFunc(h.changePassword)))
}

func (h *PhysioAuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		FirstName string `json:"firstName" validate:"required,max=100"`
		LastName  string `json:"lastName" validate:"required,max=100"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
	}
	type RegisterResponse struct {
		AccessToken string         `json:"accessToken"`
		Profile     physioResponse `json:"profile"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	physio, pair, err := h.auth.RegisterPhysio(r.Context(), auth.RegisterPhysioParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.Password,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PhysioAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusCreated, "Registered successfully", RegisterResponse{
		AccessToken: pair.Access.Value,
		Profile:     toPhysioResponse(physio),
	})
}

func (h *PhysioAuthHandler) login(w http.ResponseWriter, r *http.Request) {
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

	pair, err := h.auth.Login(r.Context(), models.KindPhysio, data.Email, data.Password)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PhysioAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusOK, "Logged in successfully", LoginResponse{AccessToken: pair.Access.Value})
}

func (h *PhysioAuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	type RefreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	refresh, err := refreshFromCookie(r)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Refresh token cookie is missing")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), models.KindPhysio, refresh)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	setRefreshCookie(w, PhysioAuthCookiePath, pair.Refresh, h.auth.RefreshTokenTTL())
	render.JSON(w, http.StatusOK, "Tokens refreshed successfully", RefreshResponse{AccessToken: pair.Access.Value})
}

func (h *PhysioAuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	refresh, err := refreshFromCookie(r)
	if err != nil {
		render.NoContent(w)
		return
	}

	if err := h.auth.Logout(r.Context(), refresh); err != nil {
		render.ServiceError(w, err)
		return
	}

	clearRefreshCookie(w, PhysioAuthCookiePath)
	render.NoContent(w)
}

func (h *PhysioAuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	type ChangePasswordRequest struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}

	data, err := render.BindAndValidate[ChangePasswordRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.auth.ChangePassword(r.Context(), principal.ID, data.OldPassword, data.NewPassword); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Password changed successfully", nil)
}

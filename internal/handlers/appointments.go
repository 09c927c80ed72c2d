package handlers

import (
	"net/http"
	"time"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/service/appointment"
)

const timeLayout = "15:04"

// AppointmentsHandler is the physiotherapist's agenda
type AppointmentsHandler struct {
	appointments *appointment.AppointmentService
}

func NewAppointments(appointments *appointment.AppointmentService) *AppointmentsHandler {
	return &AppointmentsHandler{appointments: appointments}
}

func (h *AppointmentsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /appointments", h.agenda)
	mux.HandleFunc("POST /appointments/{patientId}", h.schedule)
	mux.HandleFunc("GET /appointments/{patientId}", h.listForPatient)
	mux.HandleFunc("PATCH /appointments/{id}", h.reschedule)
	mux.HandleFunc("POST /appointments/{id}/confirm", h.confirm)
	mux.HandleFunc("DELETE /appointments/{id}", h.cancel)
}

type appointmentWithPatientResponse struct {
	appointmentResponse
	PatientID        int64  `json:"patientId"`
	PatientFirstName string `json:"patientFirstName"`
	PatientLastName  string `json:"patientLastName"`
}

func toAppointmentWithPatientResponses(appointments []models.AppointmentWithPatient) []appointmentWithPatientResponse {
	responses := make([]appointmentWithPatientResponse, 0, len(appointments))
	for _, a := range appointments {
		responses = append(responses, appointmentWithPatientResponse{
			appointmentResponse: toAppointmentResponse(a.Appointment),
			PatientID:           a.PatientID,
			PatientFirstName:    a.PatientFirstName,
			PatientLastName:     a.PatientLastName,
		})
	}
	return responses
}

// bindSlot parses the shared {date, time} request shape
func bindSlot(w http.ResponseWriter, r *http.Request) (time.Time, string, error) {
	type SlotRequest struct {
		Date string `json:"date" validate:"required"`
		Time string `json:"time" validate:"required"`
	}

	data, err := render.BindAndValidate[SlotRequest](w, r)
	if err != nil {
		return time.Time{}, "", err
	}

	scheduledOn, err := time.Parse(dateLayout, data.Date)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return time.Time{}, "", err
	}

	if _, err := time.Parse(timeLayout, data.Time); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid time, expected HH:MM")
		return time.Time{}, "", err
	}

	return scheduledOn, data.Time + ":00", nil
}

func (h *AppointmentsHandler) agenda(w http.ResponseWriter, r *http.Request) {
	principal := principalctx.MustFromContext(r.Context())

	appointments, err := h.appointments.Agenda(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Agenda", toAppointmentWithPatientResponses(appointments))
}

func (h *AppointmentsHandler) schedule(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "patientId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	scheduledOn, scheduledAt, err := bindSlot(w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	created, err := h.appointments.Schedule(r.Context(), principal.ID, patientID, scheduledOn, scheduledAt)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Appointment scheduled", toAppointmentResponse(created))
}

func (h *AppointmentsHandler) listForPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "patientId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	appointments, err := h.appointments.ListForPair(r.Context(), principal.ID, patientID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Appointments", toAppointmentWithPatientResponses(appointments))
}

func (h *AppointmentsHandler) reschedule(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	scheduledOn, scheduledAt, err := bindSlot(w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	moved, err := h.appointments.Reschedule(r.Context(), principal.ID, appointmentID, scheduledOn, scheduledAt)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Appointment rescheduled", toAppointmentResponse(moved))
}

func (h *AppointmentsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.appointments.Confirm(r.Context(), principal.ID, appointmentID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Appointment confirmed", nil)
}

func (h *AppointmentsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.appointments.Cancel(r.Context(), principal.ID, appointmentID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/repository"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// PatientsHandler is the physiotherapist's roster: patients linked by an
// active treatment
type PatientsHandler struct {
	treatments *treatment.TreatmentService
}

func NewPatients(treatments *treatment.TreatmentService) *PatientsHandler {
	return &PatientsHandler{treatments: treatments}
}

func (h *PatientsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /patients", h.roster)
	mux.HandleFunc("POST /patients", h.addPatient)
	mux.HandleFunc("GET /patients/{id}", h.patientDetail)
	mux.HandleFunc("PATCH /patients/{id}", h.updatePatient)
	mux.HandleFunc("DELETE /patients/{id}", h.endTreatment)
}

func (h *PatientsHandler) roster(w http.ResponseWriter, r *http.Request) {
	type RosterEntry struct {
		PatientID int64  `json:"patientId"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	principal := principalctx.MustFromContext(r.Context())

	entries, err := h.treatments.Roster(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	roster := make([]RosterEntry, 0, len(entries))
	for _, e := range entries {
		roster = append(roster, RosterEntry{PatientID: e.PatientID, FirstName: e.FirstName, LastName: e.LastName})
	}

	render.JSON(w, http.StatusOK, "Patients in care", roster)
}

func (h *PatientsHandler) addPatient(w http.ResponseWriter, r *http.Request) {
	type AddPatientRequest struct {
		FirstName string          `json:"firstName" validate:"required,max=100"`
		LastName  string          `json:"lastName" validate:"required,max=100"`
		Email     string          `json:"email" validate:"required,email"`
		BirthDate string          `json:"birthDate" validate:"required"`
		Gender    string          `json:"gender" validate:"required,oneof=M F Other"`
		HeightCm  decimal.Decimal `json:"heightCm" validate:"required"`
		WeightKg  decimal.Decimal `json:"weightKg" validate:"required"`
		Diagnosis string          `json:"diagnosis" validate:"required"`
	}
	type AddPatientResponse struct {
		Patient   patientResponse   `json:"patient"`
		Treatment treatmentResponse `json:"treatment"`
	}

	data, err := render.BindAndValidate[AddPatientRequest](w, r)
	if err != nil {
		return
	}

	birthDate, err := time.Parse(dateLayout, data.BirthDate)
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid birth date, expected YYYY-MM-DD")
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	patient, opened, err := h.treatments.AddPatient(r.Context(), principal.ID, treatment.AddPatientParams{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		BirthDate: birthDate,
		Gender:    data.Gender,
		HeightCm:  data.HeightCm,
		WeightKg:  data.WeightKg,
		Diagnosis: data.Diagnosis,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Patient taken into care", AddPatientResponse{
		Patient:   toPatientResponse(patient),
		Treatment: toTreatmentResponse(opened),
	})
}

func (h *PatientsHandler) patientDetail(w http.ResponseWriter, r *http.Request) {
	type DetailResponse struct {
		patientResponse
		TreatmentID      int64  `json:"treatmentId"`
		InCareSince      string `json:"inCareSince"`
		PastAppointments int64  `json:"pastAppointments"`
	}

	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	detail, err := h.treatments.PatientDetail(r.Context(), principal.ID, patientID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Patient detail", DetailResponse{
		patientResponse:  toPatientResponse(detail.Patient),
		TreatmentID:      detail.TreatmentID,
		InCareSince:      detail.StartedOn.Format(dateLayout),
		PastAppointments: detail.PastAppointments,
	})
}

func (h *PatientsHandler) updatePatient(w http.ResponseWriter, r *http.Request) {
	type UpdateRequest struct {
		HeightCm  *decimal.Decimal `json:"heightCm"`
		WeightKg  *decimal.Decimal `json:"weightKg"`
		Diagnosis *string          `json:"diagnosis"`
	}

	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[UpdateRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	patient, err := h.treatments.UpdatePatient(r.Context(), principal.ID, patientID, repository.UpdatePatientParams{
		HeightCm:  data.HeightCm,
		WeightKg:  data.WeightKg,
		Diagnosis: data.Diagnosis,
	})
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, "Patient updated", toPatientResponse(patient))
}

func (h *PatientsHandler) endTreatment(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "id")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	if err := h.treatments.EndTreatment(r.Context(), principal.ID, patientID); err != nil {
		render.ServiceError(w, err)
		return
	}

	render.NoContent(w)
}

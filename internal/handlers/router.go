package handlers

import (
	"net/http"

	"github.com/fisiocare/backend/internal/handlers/middleware"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/logger"
	"github.com/fisiocare/backend/internal/models"
	"github.com/fisiocare/backend/internal/service/appointment"
	"github.com/fisiocare/backend/internal/service/auth"
	"github.com/fisiocare/backend/internal/service/chat"
	"github.com/fisiocare/backend/internal/service/exercise"
	"github.com/fisiocare/backend/internal/service/profile"
	"github.com/fisiocare/backend/internal/service/training"
	"github.com/fisiocare/backend/internal/service/treatment"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type Services struct {
	Auth         *auth.AuthService
	Profiles     *profile.ProfileService
	Treatments   *treatment.TreatmentService
	Exercises    *exercise.ExerciseService
	Appointments *appointment.AppointmentService
	Chat         *chat.ChatService
	Training     *training.TrainingService
}

// NewRouter wires the two route families:
//
//	/fisioterapista/...  physiotherapist surface
//	/pazienti/...        patient surface
func NewRouter(s Services, l logger.Logger) http.Handler {
	withPhysioAuth := middleware.Auth(s.Auth, models.KindPhysio)
	withPatientAuth := middleware.Auth(s.Auth, models.KindPatient)

	profiles := NewProfile(s.Profiles)

	// Physiotherapist surface
	physioAuthMux := http.NewServeMux()
	NewPhysioAuth(s.Auth).Register(physioAuthMux, withPhysioAuth)

	physioProtected := http.NewServeMux()
	profiles.RegisterPhysio(physioProtected)
	NewPatients(s.Treatments).Register(physioProtected)
	NewExercises(s.Exercises).Register(physioProtected)
	NewChat(s.Chat).Register(physioProtected)
	NewAppointments(s.Appointments).Register(physioProtected)
	NewTraining(s.Training).Register(physioProtected)

	physio := http.NewServeMux()
	physio.Handle("/auth/", http.StripPrefix("/auth", physioAuthMux))
	physio.Handle("/", withPhysioAuth(physioProtected))

	// Patient surface
	patientAuthMux := http.NewServeMux()
	NewPatientAuth(s.Auth).Register(patientAuthMux)

	patientProtected := http.NewServeMux()
	profiles.RegisterPatient(patientProtected)
	NewPatientCare(s.Treatments, s.Appointments, s.Chat, s.Training).Register(patientProtected)

	patient := http.NewServeMux()
	patient.Handle("/auth/", http.StripPrefix("/auth", patientAuthMux))
	patient.Handle("/", withPatientAuth(patientProtected))

	root := http.NewServeMux()
	root.Handle("/fisioterapista/", http.StripPrefix("/fisioterapista", physio))
	root.Handle("/pazienti/", http.StripPrefix("/pazienti", patient))
	root.HandleFunc("GET /{$}", welcome)

	return chain(root,
		middleware.Logger(l),
	)
}

func welcome(w http.ResponseWriter, r *http.Request) {
	type WelcomeResponse struct {
		Physiotherapists string `json:"physiotherapists"`
		Patients         string `json:"patients"`
	}

	render.JSON(w, http.StatusOK, "fisiocare API", WelcomeResponse{
		Physiotherapists: "/fisioterapista",
		Patients:         "/pazienti",
	})
}

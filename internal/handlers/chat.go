package handlers

import (
	"net/http"
	"time"

	"github.com/fisiocare/backend/internal/handlers/principalctx"
	"github.com/fisiocare/backend/internal/handlers/render"
	"github.com/fisiocare/backend/internal/service/chat"
)

// ChatHandler is the physiotherapist side of the messaging surface
type ChatHandler struct {
	chat *chat.ChatService
}

func NewChat(chatService *chat.ChatService) *ChatHandler {
	return &ChatHandler{chat: chatService}
}

func (h *ChatHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /chat", h.conversations)
	mux.HandleFunc("GET /chat/{patientId}", h.history)
	mux.HandleFunc("POST /chat/{patientId}", h.send)
}

func (h *ChatHandler) conversations(w http.ResponseWriter, r *http.Request) {
	type ConversationResponse struct {
		PatientID  int64     `json:"patientId"`
		FirstName  string    `json:"firstName"`
		LastName   string    `json:"lastName"`
		LastBody   string    `json:"lastBody"`
		LastSender string    `json:"lastSender"`
		LastSentAt time.Time `json:"lastSentAt"`
	}

	principal := principalctx.MustFromContext(r.Context())

	conversations, err := h.chat.Conversations(r.Context(), principal.ID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		responses = append(responses, ConversationResponse{
			PatientID:  c.PatientID,
			FirstName:  c.PatientFirstName,
			LastName:   c.PatientLastName,
			LastBody:   c.LastBody,
			LastSender: string(c.LastSender),
			LastSentAt: c.LastSentAt,
		})
	}

	render.JSON(w, http.StatusOK, "Conversations", responses)
}

func (h *ChatHandler) history(w http.ResponseWriter, r *http.Request) {
	patientID, err := pathID(r, "patientId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	messages, err := h.chat.History(r.Context(), principal.ID, patientID)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	responses := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, toMessageResponse(m))
	}

	render.JSON(w, http.StatusOK, "Chat history", responses)
}

func (h *ChatHandler) send(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Body string `json:"body" validate:"required,max=2000"`
	}

	patientID, err := pathID(r, "patientId")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := render.BindAndValidate[SendRequest](w, r)
	if err != nil {
		return
	}

	principal := principalctx.MustFromContext(r.Context())

	message, err := h.chat.SendAsPhysio(r.Context(), principal.ID, patientID, data.Body)
	if err != nil {
		render.ServiceError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, "Message sent", toMessageResponse(message))
}

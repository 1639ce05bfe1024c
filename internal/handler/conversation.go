package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/service"
)

// ConversationHandler serves direct messages. Every route here sits behind
// the auth middleware; the service re-checks participation per conversation.
type ConversationHandler struct {
	messaging *service.MessagingService
	logger    *slog.Logger
}

func NewConversationHandler(messaging *service.MessagingService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{messaging: messaging, logger: logger}
}

// HandleList returns the caller's conversations, most recently active first.
//
// GET /api/conversations
func (h *ConversationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	convs, err := h.messaging.GetConversations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, convs)
}

type createConversationRequest struct {
	ParticipantID string `json:"participantId"`
}

// HandleCreate opens a conversation with another user, or returns the
// existing one for the pair.
//
// POST /api/conversations
func (h *ConversationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	conv, err := h.messaging.CreateConversation(r.Context(), userID, req.ParticipantID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// HandleMessages returns a conversation's messages, oldest-first.
//
// GET /api/conversations/{id}/messages
func (h *ConversationHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	convID := chi.URLParam(r, "id")

	msgs, err := h.messaging.GetMessages(r.Context(), userID, convID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// HandleSend appends a message to a conversation.
//
// POST /api/conversations/{id}/messages
func (h *ConversationHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	convID := chi.URLParam(r, "id")

	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.messaging.SendMessage(r.Context(), userID, convID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// HandleMarkRead stamps the other participant's messages as read.
//
// POST /api/conversations/{id}/read
func (h *ConversationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	convID := chi.URLParam(r, "id")

	if err := h.messaging.MarkRead(r.Context(), userID, convID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/service"
)

// CommentHandler serves a post's comment thread.
type CommentHandler struct {
	feed   *service.FeedService
	logger *slog.Logger
}

func NewCommentHandler(feed *service.FeedService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{feed: feed, logger: logger}
}

// HandleList returns a post's comments, oldest-first.
//
// GET /api/posts/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	comments, err := h.feed.GetComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate adds a comment (or a reply, when parentId is set) to a post.
//
// POST /api/posts/{id}/comments
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	var input service.CreateCommentInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.feed.CreateComment(r.Context(), userID, postID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

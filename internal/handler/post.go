package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/service"
)

// PostHandler serves the feed: listing posts, creating them, and toggling
// post/comment likes.
type PostHandler struct {
	feed   *service.FeedService
	logger *slog.Logger
}

func NewPostHandler(feed *service.FeedService, logger *slog.Logger) *PostHandler {
	return &PostHandler{feed: feed, logger: logger}
}

// HandleList returns a page of the feed, newest-first. Anonymous requests
// are fine; authenticated ones also get per-post viewerLiked flags.
//
// GET /api/posts?limit=20&offset=0
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	posts, err := h.feed.GetPosts(r.Context(), viewerID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleCreate creates a post owned by the authenticated user.
//
// POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var input service.CreatePostInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.feed.CreatePost(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleToggleLike flips the caller's like on a post and returns the
// resulting state and count.
//
// POST /api/posts/{id}/like
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	postID := chi.URLParam(r, "id")

	result, err := h.feed.TogglePostLike(r.Context(), userID, postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleToggleCommentLike flips the caller's like on a comment.
//
// POST /api/comments/{id}/like
func (h *PostHandler) HandleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	commentID := chi.URLParam(r, "id")

	result, err := h.feed.ToggleCommentLike(r.Context(), userID, commentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

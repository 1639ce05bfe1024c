package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/service"
)

// ProfileHandler serves public profiles, own-profile edits, and follow
// toggles.
type ProfileHandler struct {
	profiles *service.ProfileService
	social   *service.SocialService
	logger   *slog.Logger
}

func NewProfileHandler(
	profiles *service.ProfileService,
	social *service.SocialService,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, social: social, logger: logger}
}

// HandleGet returns a profile by ID. Authenticated viewers also learn
// whether they follow it.
//
// GET /api/profiles/{id}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := auth.UserIDFromContext(r.Context())
	profileID := chi.URLParam(r, "id")

	view, err := h.profiles.GetProfile(r.Context(), viewerID, profileID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleUpdate applies partial edits to the caller's own profile.
//
// PUT /api/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var input service.UpdateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleToggleFollow flips the caller's follow edge to another user.
//
// POST /api/users/{id}/follow
func (h *ProfileHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	result, err := h.social.ToggleFollow(r.Context(), userID, targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/authstate"
	"github.com/sakif/pulse/internal/service"
)

const (
	stateCookie     = "oauth_state"
	sessionMaxAge   = 24 * 60 * 60
	postLoginTarget = "/"
)

// AuthHandler manages sign-up, sign-in, the Google OAuth flow, and session
// cookies. It also drives the auth state object so subscribers observe
// sign-in/sign-out transitions.
type AuthHandler struct {
	google   *auth.GoogleProvider
	sessions *service.SessionService
	state    *authstate.State
	logger   *slog.Logger
}

func NewAuthHandler(
	google *auth.GoogleProvider,
	sessions *service.SessionService,
	state *authstate.State,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:   google,
		sessions: sessions,
		state:    state,
		logger:   logger,
	}
}

// HandleGoogleLogin redirects the browser to Google's consent page.
//
// GET /auth/google/login
//
// A random state value goes into a short-lived HttpOnly cookie; the callback
// verifies it so a forged callback URL cannot complete a login.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth flow: verify state, exchange the
// code for the Google profile, bootstrap the account, set the session cookie.
//
// GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("oauth callback: state mismatch or missing")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, postLoginTarget+"?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.sessions.LoginOrRegisterGoogle(r.Context(), gu)
	if err != nil {
		h.logger.Error("oauth callback: login failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, result.Token)
	h.state.SignedIn(r.Context(), result.Profile.ID)

	http.Redirect(w, r, postLoginTarget, http.StatusSeeOther)
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// HandleSignUp creates a credential-backed account and signs it in.
//
// POST /auth/signup
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.Username, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	h.state.SignedIn(r.Context(), result.Profile.ID)

	writeJSON(w, http.StatusCreated, result.Profile)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin signs in with email and password.
//
// POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	h.state.SignedIn(r.Context(), result.Profile.ID)

	writeJSON(w, http.StatusOK, result.Profile)
}

// HandleLogout clears the session cookie. The JWT itself stays valid until
// expiry since sessions are stateless.
//
// POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.state.SignedOut()

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

// HandleMe returns the authenticated user's own profile.
//
// GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	profile, err := h.sessions.GetProfileByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root; main.go only
// loads config and calls New/Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/authstate"
	"github.com/sakif/pulse/internal/config"
	"github.com/sakif/pulse/internal/handler"
	"github.com/sakif/pulse/internal/middleware"
	sqliteRepo "github.com/sakif/pulse/internal/repository/sqlite"
	"github.com/sakif/pulse/internal/service"
)

// Server owns the router and the resources that must be released on
// shutdown, notably the database connection.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	state  *authstate.State
}

// New assembles the full dependency graph. Each layer only receives what it
// needs: services get repository interfaces, handlers get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	sessions := service.NewSessionService(db.Profiles(), tokens, passwords, logger)
	feed := service.NewFeedService(db.Posts(), db.Comments(), db.Likes(), logger)
	social := service.NewSocialService(db.Follows(), logger)
	messaging := service.NewMessagingService(db.Conversations(), db.Messages(), db.Profiles(), logger)
	profiles := service.NewProfileService(db.Profiles(), db.Follows(), logger)

	state := authstate.New(sessions.GetProfileByID, logger)

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
		state:  state,
	}

	s.setupRoutes(tokens, sessions, feed, social, messaging, profiles)

	return s, nil
}

// AuthState exposes the auth state object so other components (and tests)
// can observe session transitions.
func (s *Server) AuthState() *authstate.State {
	return s.state
}

// Handler returns the root HTTP handler. Used by httptest in handler tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(
	tokens *auth.TokenService,
	sessions *service.SessionService,
	feed *service.FeedService,
	social *service.SocialService,
	messaging *service.MessagingService,
	profiles *service.ProfileService,
) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var google *auth.GoogleProvider
	if s.cfg.GoogleEnabled() {
		google = auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL)
	}

	authHandler := handler.NewAuthHandler(google, sessions, s.state, s.logger)
	postHandler := handler.NewPostHandler(feed, s.logger)
	commentHandler := handler.NewCommentHandler(feed, s.logger)
	profileHandler := handler.NewProfileHandler(profiles, social, s.logger)
	convHandler := handler.NewConversationHandler(messaging, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		if google != nil {
			r.Get("/google/login", authHandler.HandleGoogleLogin)
			r.Get("/google/callback", authHandler.HandleGoogleCallback)
		}
		r.Post("/signup", authHandler.HandleSignUp)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth attaches the viewer when a valid
		// session cookie is present.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/posts", postHandler.HandleList)
			r.Get("/posts/{id}/comments", commentHandler.HandleList)
			r.Get("/profiles/{id}", profileHandler.HandleGet)
		})

		// Everything else needs a session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/posts", postHandler.HandleCreate)
			r.Post("/posts/{id}/like", postHandler.HandleToggleLike)
			r.Post("/posts/{id}/comments", commentHandler.HandleCreate)
			r.Post("/comments/{id}/like", postHandler.HandleToggleCommentLike)
			r.Post("/users/{id}/follow", profileHandler.HandleToggleFollow)
			r.Put("/profile", profileHandler.HandleUpdate)
			r.Get("/conversations", convHandler.HandleList)
			r.Post("/conversations", convHandler.HandleCreate)
			r.Get("/conversations/{id}/messages", convHandler.HandleMessages)
			r.Post("/conversations/{id}/messages", convHandler.HandleSend)
			r.Post("/conversations/{id}/read", convHandler.HandleMarkRead)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.Bool("googleOAuth", s.cfg.GoogleEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/markdave123-py/Deskmate/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Deskmate/internal/api/middlewares"
	"github.com/markdave123-py/Deskmate/internal/config"
	"github.com/markdave123-py/Deskmate/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.SugaredLogger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, log *zap.SugaredLogger, sessions *services.SessionService, appointments *services.AppointmentService) *Server {
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(cfg, log, sessions, appointments),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &Server{httpServer: httpSrv, log: log}
}

// NewRouter returns the HTTP handler for the API.
func NewRouter(cfg *config.Config, log *zap.SugaredLogger, sessions *services.SessionService, appointments *services.AppointmentService) http.Handler {
	sessionHandler := handlers.NewSessionHandler(sessions, log.Named("http"))
	docHandler := handlers.NewDocumentHandler(sessions, cfg.MaxUploadMB, log.Named("http"))
	chatHandler := handlers.NewChatHandler(sessions, log.Named("http"))
	apptHandler := handlers.NewAppointmentHandler(appointments, log.Named("http"))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	// Upload builds the index synchronously, one embedding call per batch.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Post("/sessions", sessionHandler.CreateSession)

		api.Route("/sessions/{sessionID}", func(s chi.Router) {
			s.Use(appMiddleware.SessionMiddleware(sessions))
			s.Get("/", sessionHandler.GetSession)
			s.Delete("/", sessionHandler.EndSession)
			s.Post("/documents", docHandler.UploadDocument)
			s.Post("/chat/query", chatHandler.QueryDocument)
		})

		api.Post("/appointments", apptHandler.BookAppointment)
	})

	return r
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Infow("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}

package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iyZAIRI/tazuna-bot/internal/umadb"
)

// Managers bundles the four entity managers the API serves from. They
// are constructed by the caller and shared explicitly; the server never
// creates its own.
type Managers struct {
	Characters *umadb.CharacterManager
	Skills     *umadb.SkillManager
	Races      *umadb.RaceManager
	Supports   *umadb.SupportCardManager
}

// Close releases every manager's snapshot handle.
func (m Managers) Close() {
	if m.Characters != nil {
		m.Characters.Close()
	}
	if m.Skills != nil {
		m.Skills.Close()
	}
	if m.Races != nil {
		m.Races.Close()
	}
	if m.Supports != nil {
		m.Supports.Close()
	}
}

// Server is the JSON lookup API over the loaded snapshot.
type Server struct {
	managers Managers
	port     int
	bind     string
	router   *chi.Mux
}

// NewServer creates the API server around already-constructed managers.
func NewServer(managers Managers, port int, bind string) *Server {
	s := &Server{
		managers: managers,
		port:     port,
		bind:     bind,
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/api/health", s.Health)

	r.Route("/api/characters", func(r chi.Router) {
		r.Get("/", s.ListCharacters)
		r.Get("/random", s.RandomCharacter)
		r.Get("/{id}", s.GetCharacter)
	})

	r.Route("/api/skills", func(r chi.Router) {
		r.Get("/", s.ListSkills)
		r.Get("/top", s.TopSkills)
		r.Get("/random", s.RandomSkill)
		r.Get("/{id}", s.GetSkill)
	})

	r.Route("/api/races", func(r chi.Router) {
		r.Get("/", s.ListRaces)
		r.Get("/random", s.RandomRace)
		r.Get("/{id}", s.GetRace)
	})

	r.Route("/api/supports", func(r chi.Router) {
		r.Get("/", s.ListSupports)
		r.Get("/random", s.RandomSupport)
		r.Get("/{id}", s.GetSupport)
	})
}

// requestLogger logs each request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("Request")
		}()

		next.ServeHTTP(ww, r)
	})
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	var addr string
	if s.bind != "" {
		addr = fmt.Sprintf("%s:%d", s.bind, s.port)
	} else {
		addr = fmt.Sprintf(":%d", s.port)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Package api exposes the HTTP surface: account registration and
// login, the route catalog, and the flight lifecycle endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tartanair/va-backend/internal/auth"
	"github.com/tartanair/va-backend/internal/tracker"
	"github.com/tartanair/va-backend/internal/types"
)

// UserStore is the account/catalog persistence the handlers need.
// *db.Client satisfies it. Lookups return (nil, nil) when absent.
type UserStore interface {
	CreateUser(user *types.User) error
	GetUserByEmail(email string) (*types.User, error)
	ListRoutes() ([]*types.Route, error)
}

// Server wires the HTTP handlers to the auth service, the store and
// the flight tracker.
type Server struct {
	store   UserStore
	auth    *auth.Service
	tracker *tracker.Tracker
}

// NewServer creates a new API server
func NewServer(store UserStore, authSvc *auth.Service, trk *tracker.Tracker) *Server {
	return &Server{
		store:   store,
		auth:    authSvc,
		tracker: trk,
	}
}

// Router builds the HTTP router with CORS and request logging.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/routes", s.handleListRoutes)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
	})

	r.Route("/flights", func(r chi.Router) {
		r.Get("/live", s.handleLiveFlights)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/start", s.handleStartFlight)
			r.Post("/update", s.handleUpdateFlight)
			r.Post("/finish", s.handleFinishFlight)
		})
	})

	return r
}

type contextKey string

const userIDKey contextKey = "user_id"

// requireAuth resolves the bearer credential into a principal once per
// request, before any handler runs.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.auth.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid or missing bearer token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principal(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// errorResponse mirrors the shape clients already consume
type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.tracker.Stats().IncrementRejectedRequests()
	s.respondJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

// respondDomainError maps tracker failures to HTTP statuses
func (s *Server) respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Flight not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		s.respondError(w, http.StatusUnauthorized, "Invalid or missing bearer token")
	default:
		log.Printf("Internal error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

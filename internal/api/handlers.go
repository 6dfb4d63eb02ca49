package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tartanair/va-backend/internal/auth"
	"github.com/tartanair/va-backend/internal/tracker"
	"github.com/tartanair/va-backend/internal/types"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Callsign string `json:"callsign,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type startFlightRequest struct {
	RouteID *int   `json:"route_id,omitempty"`
	Dep     string `json:"dep"`
	Arr     string `json:"arr"`
}

type startFlightResponse struct {
	FlightID string `json:"flight_id"`
	Message  string `json:"message"`
}

type updateFlightRequest struct {
	FlightID string  `json:"flight_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	AltFt    float64 `json:"alt_ft"`
	IASKt    float64 `json:"ias_kt"`
	VSFpm    float64 `json:"vs_fpm"`
	OnGround bool    `json:"onground"`
}

type updateFlightResponse struct {
	OK bool `json:"ok"`
}

type finishFlightRequest struct {
	FlightID       string   `json:"flight_id"`
	LandingRateFPM *float64 `json:"landing_rate_fpm,omitempty"`
}

type finishFlightResponse struct {
	Message      string  `json:"message"`
	BlockMinutes float64 `json:"block_minutes"`
	DistanceNM   float64 `json:"distance_nm"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, messageResponse{Message: "Welcome to the Tartan Air Backend API"})
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := s.store.ListRoutes()
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if routes == nil {
		routes = []*types.Route{}
	}
	s.respondJSON(w, http.StatusOK, routes)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	existing, err := s.store.GetUserByEmail(email)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if existing != nil {
		s.respondError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	user := &types.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(user); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, userResponse{
		ID:       user.ID,
		Email:    user.Email,
		Callsign: user.Callsign,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.auth.Token(user.ID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (s *Server) handleStartFlight(w http.ResponseWriter, r *http.Request) {
	var req startFlightRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Dep == "" || req.Arr == "" {
		s.respondError(w, http.StatusBadRequest, "dep and arr are required")
		return
	}

	flight, err := s.tracker.Start(r.Context(), principal(r), req.Dep, req.Arr, req.RouteID)
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Route not found")
			return
		}
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, startFlightResponse{
		FlightID: flight.ID,
		Message:  "Flight started",
	})
}

func (s *Server) handleUpdateFlight(w http.ResponseWriter, r *http.Request) {
	var req updateFlightRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sample := tracker.Sample{
		Lat:      req.Lat,
		Lon:      req.Lon,
		AltFt:    req.AltFt,
		IASKt:    req.IASKt,
		VSFpm:    req.VSFpm,
		OnGround: req.OnGround,
	}
	if err := s.tracker.Update(r.Context(), principal(r), req.FlightID, sample); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, updateFlightResponse{OK: true})
}

func (s *Server) handleFinishFlight(w http.ResponseWriter, r *http.Request) {
	var req finishFlightRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.tracker.Finish(r.Context(), principal(r), req.FlightID, req.LandingRateFPM)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	message := "Flight finished"
	if result.AlreadyFinished {
		message = "Already finished"
	}
	s.respondJSON(w, http.StatusOK, finishFlightResponse{
		Message:      message,
		BlockMinutes: result.BlockMinutes,
		DistanceNM:   result.DistanceNM,
	})
}

func (s *Server) handleLiveFlights(w http.ResponseWriter, r *http.Request) {
	live, err := s.tracker.Live(r.Context())
	if err != nil {
		s.respondDomainError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, live)
}

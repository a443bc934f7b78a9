package server

import (
	"net/http"

	"github.com/Tomlord1122/dashboard-backend/internal/auth"
	"github.com/Tomlord1122/dashboard-backend/internal/schema"
	"github.com/Tomlord1122/dashboard-backend/internal/service"
)

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !s.decodeJSON(w, r, schema.Login, &req) {
		return
	}

	resp, err := s.userService.Login(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, resp)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := s.userService.Me(r.Context(), claims.UserID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, user)
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !s.decodeJSON(w, r, schema.Register, &req) {
		return
	}

	user, err := s.userService.Register(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusCreated, user)
}

func (s *Server) weatherHandler(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Weather is not configured")
		return
	}

	allowCached := r.URL.Query().Get("refresh") != "true"
	report, err := s.weather.Get(r.Context(), allowCached)
	if err != nil {
		s.logger.Warn("weather fetch failed", "err", err)
		respondWithError(w, http.StatusBadGateway, "Weather provider unavailable")
		return
	}
	respondWithData(w, http.StatusOK, report)
}

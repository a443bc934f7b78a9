package server

import (
	"bytes"
	"net/http"

	"github.com/Tomlord1122/dashboard-backend/internal/schema"
	"github.com/Tomlord1122/dashboard-backend/internal/service"
)

func (s *Server) resolveCalendarHandler(w http.ResponseWriter, r *http.Request) {
	month, ok1 := intParam(r, "month")
	year, ok2 := intParam(r, "year")
	if !ok1 || !ok2 {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	cal, err := s.calendarService.Resolve(r.Context(), month, year)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, cal)
}

func (s *Server) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var req service.EventRequest
	if !s.decodeJSON(w, r, schema.Event, &req) {
		return
	}

	event, err := s.calendarService.CreateEvent(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, event)
}

func (s *Server) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	event, err := s.calendarService.GetEvent(r.Context(), id)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, event)
}

func (s *Server) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}
	var req service.EventRequest
	if !s.decodeJSON(w, r, schema.Event, &req) {
		return
	}

	event, err := s.calendarService.UpdateEvent(r.Context(), id, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, event)
}

func (s *Server) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "eventId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	if err := s.calendarService.DeleteEvent(r.Context(), id); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, struct{}{})
}

func (s *Server) exportCalendarHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.calendarService.ExportICS(r.Context(), &buf); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

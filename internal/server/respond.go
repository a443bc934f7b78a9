package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/dashboard-backend/internal/service"
)

const maxBodyBytes = 1 << 20

type okEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondWithData(w http.ResponseWriter, code int, data any) {
	respondWithJSON(w, code, okEnvelope{Status: "OK", Data: data})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorEnvelope{Status: "ERROR", Message: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal JSON response", "err", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"ERROR","message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithServiceError maps the service error taxonomy onto HTTP statuses.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, service.ErrUnauthorized):
		code = http.StatusUnauthorized
	}

	var svcErr *service.Error
	if code == http.StatusInternalServerError || !errors.As(err, &svcErr) {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithError(w, code, svcErr.Message)
}

// decodeJSON reads the body, checks it against the named schema and decodes
// it into dst. It writes the error response itself and reports success.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, schemaName string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body is too large")
			return false
		}
		respondWithError(w, http.StatusBadRequest, "Error reading request body")
		return false
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		code, msg := decodeErrorResponse(err)
		if len(bytes.TrimSpace(body)) == 0 {
			code, msg = http.StatusBadRequest, "Request body must not be empty"
		}
		respondWithError(w, code, msg)
		return false
	}

	if err := s.validator.Validate(schemaName, doc); err != nil {
		s.logger.Debug("payload failed schema validation", "schema", schemaName, "err", err)
		respondWithError(w, http.StatusBadRequest, "Invalid Payload")
		return false
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		code, msg := decodeErrorResponse(err)
		respondWithError(w, code, msg)
		return false
	}
	return true
}

func decodeErrorResponse(err error) (int, string) {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		return http.StatusBadRequest, fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Request body contains badly-formed JSON"
	case errors.As(err, &unmarshalTypeError):
		return http.StatusBadRequest, fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return http.StatusBadRequest, fmt.Sprintf("Request body contains unknown field %s", fieldName)
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "Request body must not be empty"
	default:
		return http.StatusBadRequest, "Invalid Payload"
	}
}

// idParam parses a positive integer path parameter.
func idParam(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, strconv.IntSize)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func intParam(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	return n, err == nil
}

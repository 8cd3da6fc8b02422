package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode ErrorCode, message string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(r.Context(), level, "request failed",
		slog.Int("status", statusCode),
		slog.String("error_code", string(errorCode)),
		slog.String("error_message", message),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dat, err := json.Marshal(ErrorResponse{ErrorCode: errorCode, Message: message})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error_code":"internal_error","message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(dat)
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	dat, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error_code":"internal_error","message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(dat)
}

// decodeBody decodes a JSON request body into dst, writing the error response on failure
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		s.respondWithError(w, r, http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge, "Request body too large")
	case errors.Is(err, io.EOF):
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeMalformedBody, "Request body is empty")
	default:
		s.respondWithError(w, r, http.StatusBadRequest, ErrCodeMalformedBody, "Could not decode request body")
	}
	return false
}

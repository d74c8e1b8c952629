// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the wire shape for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "authentication required"
	}
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: message})
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusForbidden, ErrorResponse{Error: message})
}

func NotFound(w http.ResponseWriter, resource string) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

func Conflict(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusConflict, ErrorResponse{Error: message})
}

func Gone(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusGone, ErrorResponse{Error: message})
}

func BadGateway(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadGateway, ErrorResponse{Error: message})
}

func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal server error", "error", err)
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
	})
}

// Package api provides HTTP handlers for the debate practice API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/jdeboer/debatkamer/internal/debate"
	"github.com/jdeboer/debatkamer/internal/topics"
)

// Error kinds reported to clients. Validation problems are distinguishable
// from internal failures.
const (
	ErrKindBadRequest = "bad_request"
	ErrKindConflict   = "conflict"
	ErrKindNotFound   = "not_found"
	ErrKindInternal   = "internal_error"
)

// Handler provides common handler dependencies.
type Handler struct {
	engine  *debate.Engine
	catalog *topics.Catalog
}

// NewHandler creates a new Handler.
func NewHandler(engine *debate.Engine, catalog *topics.Catalog) *Handler {
	return &Handler{engine: engine, catalog: catalog}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response with a kind and a human message.
func Error(w http.ResponseWriter, status int, kind, message string) {
	JSON(w, status, map[string]string{"error": kind, "message": message})
}

package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error kinds carried in every error response, one per status the API can
// produce.
const (
	kindValidation      = "validation"
	kindUnauthenticated = "unauthenticated"
	kindForbidden       = "forbidden"
	kindNotFound        = "not_found"
	kindConflict        = "conflict"
	kindStorage         = "storage"
)

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, map[string]errorPayload{"error": {Kind: kind, Message: message}})
}

// respondStorageError hides backend failure detail from clients but keeps
// it in the server log.
func respondStorageError(w http.ResponseWriter, err error) {
	log.Printf("Storage error: %v", err)
	respondError(w, http.StatusInternalServerError, kindStorage, "internal storage error")
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/xavierca1/pharma-crm/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the use case error kinds onto HTTP statuses. Domain errors
// carry their code to the client; technical errors never leak details.
func writeError(w http.ResponseWriter, err error) {
	if usecase.IsDomainError(err) {
		status := http.StatusBadRequest
		switch usecase.ErrorCode(err) {
		case usecase.CodeUnauthorized:
			status = http.StatusForbidden
		case usecase.CodeActorUnknown:
			status = http.StatusUnauthorized
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{
			"error": err.Error(),
			"code":  usecase.ErrorCode(err),
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
		"code":  usecase.CodeDatabase,
	})
}

func requireActor(w http.ResponseWriter, actorID string) bool {
	if actorID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
			"code":  usecase.CodeActorUnknown,
		})
		return false
	}
	return true
}

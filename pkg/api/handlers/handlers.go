package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cbodonnell/settlers/pkg/game/mirror"
	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/cbodonnell/settlers/pkg/version"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// MaxListLimit caps the limit query parameter of HandleListResults
const MaxListLimit = 500

type HealthResponseBody struct {
	Status string `json:"status"`
}

type VersionResponseBody struct {
	Version string `json:"version"`
}

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &HealthResponseBody{Status: "ok"})
	}
}

func HandleVersion() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &VersionResponseBody{Version: version.Get()})
	}
}

// HandleGetSession serves the latest snapshot of the running session
func HandleGetSession(m *mirror.Mirror) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := m.Latest()
		if !ok {
			http.Error(w, "No session", http.StatusNotFound)
			return
		}
		writeJSON(w, snapshot)
	}
}

func HandleListResults(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := repositories.DefaultListLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(parsed, MaxListLimit)
		}

		results, err := repository.ListMatchResults(r.Context(), limit)
		if err != nil {
			log.Error("Failed to list match results: %v", err)
			http.Error(w, "Failed to list match results", http.StatusInternalServerError)
			return
		}
		writeJSON(w, results)
	}
}

func HandleGetResult(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := uuid.Parse(mux.Vars(r)["sessionID"])
		if err != nil {
			http.Error(w, "Invalid session id", http.StatusBadRequest)
			return
		}

		result, err := repository.GetMatchResult(r.Context(), sessionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Match result not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to get match result: %v", err)
			http.Error(w, "Failed to get match result", http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

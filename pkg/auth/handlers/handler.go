package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/settlers/pkg/log"
)

// AuthHandler is an interface for handling authentication requests
type AuthHandler interface {
	// HandleLogin exchanges credentials for an ID token accepted by the game server.
	HandleLogin() func(w http.ResponseWriter, r *http.Request)
}

// LoginResponseBody is returned by every AuthHandler on a successful login
type LoginResponseBody struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    string `json:"expiresIn"`
	UserID       string `json:"userID"`
	Name         string `json:"name,omitempty"`
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("error encoding response: %v", err)
		http.Error(w, "error encoding response", http.StatusInternalServerError)
	}
}

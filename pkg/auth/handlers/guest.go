package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cbodonnell/settlers/pkg/auth/providers"
	"github.com/cbodonnell/settlers/pkg/log"
)

var _ AuthHandler = &GuestAuthHandler{}

// MaxGuestNameLength bounds the display name of a guest
const MaxGuestNameLength = 32

// GuestAuthHandler issues self-signed guest tokens
type GuestAuthHandler struct {
	provider *providers.JWTAuthProvider
}

func NewGuestAuthHandler(provider *providers.JWTAuthProvider) *GuestAuthHandler {
	return &GuestAuthHandler{
		provider: provider,
	}
}

// HandleLogin issues a token for the display name in the "name" form value
func (h *GuestAuthHandler) HandleLogin() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			http.Error(w, "Missing name", http.StatusBadRequest)
			return
		}
		if len(name) > MaxGuestNameLength {
			http.Error(w, "Name is too long", http.StatusBadRequest)
			return
		}

		token, claims, err := h.provider.IssueToken(name)
		if err != nil {
			log.Error("Failed to issue guest token: %v", err)
			http.Error(w, "Failed to login", http.StatusInternalServerError)
			return
		}

		writeJSON(w, &LoginResponseBody{
			IDToken:   token,
			ExpiresIn: strconv.Itoa(int(providers.GuestTokenTTL.Seconds())),
			UserID:    claims.UID,
			Name:      claims.Name,
		})
	}
}

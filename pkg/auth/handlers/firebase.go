package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cbodonnell/settlers/pkg/log"
)

var _ AuthHandler = &FirebaseAuthHandler{}

// DefaultIdentityToolkitURL is the base URL of the Firebase Auth REST API
const DefaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseAuthHandler implements AuthHandler using Firebase Auth REST API
type FirebaseAuthHandler struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type NewFirebaseAuthHandlerOptions struct {
	APIKey string
	// BaseURL defaults to DefaultIdentityToolkitURL
	BaseURL string
	Client  *http.Client
}

// NewFirebaseAuthHandler creates a new instance of FirebaseAuthHandler
func NewFirebaseAuthHandler(opts NewFirebaseAuthHandlerOptions) *FirebaseAuthHandler {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultIdentityToolkitURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &FirebaseAuthHandler{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		client:  opts.Client,
	}
}

// ErrorResponseBody is the response body for an error
// https://firebase.google.com/docs/reference/rest/auth#section-error-format
type ErrorResponseBody struct {
	Error struct {
		Code    int                  `json:"code"`
		Message ErrorResponseMessage `json:"message"`
	} `json:"error"`
}

type ErrorResponseMessage string

const (
	ErrorInvalidEmail            ErrorResponseMessage = "INVALID_EMAIL"
	ErrorInvalidLoginCredentials ErrorResponseMessage = "INVALID_LOGIN_CREDENTIALS"
	ErrorTooManyAttempts         ErrorResponseMessage = "TOO_MANY_ATTEMPTS_TRY_LATER"
)

type signInRequestBody struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponseBody struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	DisplayName  string `json:"displayName"`
}

// HandleLogin handles requests to the login endpoint
// https://firebase.google.com/docs/reference/rest/auth#section-sign-in-email-password
func (s *FirebaseAuthHandler) HandleLogin() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.FormValue("email")
		password := r.FormValue("password")

		if email == "" {
			http.Error(w, "Missing email", http.StatusBadRequest)
			return
		}
		if password == "" {
			http.Error(w, "Missing password", http.StatusBadRequest)
			return
		}

		resp, err := s.post("/accounts:signInWithPassword", &signInRequestBody{
			Email:             email,
			Password:          password,
			ReturnSecureToken: true,
		})
		if err != nil {
			log.Error("error sending request: %v", err)
			http.Error(w, "error sending request", http.StatusInternalServerError)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Error("error response status: %s", resp.Status)
			errorResponse := &ErrorResponseBody{}
			if err := json.NewDecoder(resp.Body).Decode(errorResponse); err != nil {
				log.Error("failed to decode error response: %v", err)
				http.Error(w, "failed to decode error response", http.StatusInternalServerError)
				return
			}

			switch errorResponse.Error.Message {
			case ErrorInvalidEmail:
				http.Error(w, "Invalid email", http.StatusBadRequest)
				return
			case ErrorInvalidLoginCredentials:
				http.Error(w, "Invalid credentials", http.StatusBadRequest)
				return
			case ErrorTooManyAttempts:
				http.Error(w, "Too many attempts, try again later", http.StatusTooManyRequests)
				return
			}

			log.Error("unhandled error response message: %s", errorResponse.Error.Message)
			http.Error(w, "Failed to login", http.StatusInternalServerError)
			return
		}

		signIn := &signInResponseBody{}
		if err := json.NewDecoder(resp.Body).Decode(signIn); err != nil {
			log.Error("error decoding response: %v", err)
			http.Error(w, "error decoding response", http.StatusInternalServerError)
			return
		}

		writeJSON(w, &LoginResponseBody{
			IDToken:      signIn.IDToken,
			RefreshToken: signIn.RefreshToken,
			ExpiresIn:    signIn.ExpiresIn,
			UserID:       signIn.LocalID,
			Name:         signIn.DisplayName,
		})
	}
}

func (s *FirebaseAuthHandler) post(path string, payload interface{}) (*http.Response, error) {
	body := bytes.NewBuffer(nil)
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return nil, fmt.Errorf("error encoding request body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path+"?key="+s.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.client.Do(req)
}

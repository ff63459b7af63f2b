package providers

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

var _ AuthProvider = &FirebaseAuthProvider{}

// FirebaseAuthProvider verifies ID tokens issued by Firebase Authentication
type FirebaseAuthProvider struct {
	client *auth.Client
}

// NewFirebaseAuthProvider creates a verifier for the tokens of projectID.
// apiKey may be empty when application default credentials are available.
func NewFirebaseAuthProvider(ctx context.Context, projectID string, apiKey string) (*FirebaseAuthProvider, error) {
	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %v", err)
	}
	return &FirebaseAuthProvider{client: client}, nil
}

func (p *FirebaseAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %v", err)
	}
	return &TokenClaims{
		UID:  token.UID,
		Name: displayName(token.Claims),
	}, nil
}

// displayName prefers the profile name and falls back to the local part of the email
func displayName(claims map[string]interface{}) string {
	if name, _ := claims["name"].(string); name != "" {
		return name
	}
	email, _ := claims["email"].(string)
	local, _, _ := strings.Cut(email, "@")
	return local
}

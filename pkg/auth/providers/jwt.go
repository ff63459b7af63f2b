package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var _ AuthProvider = &JWTAuthProvider{}

// GuestTokenTTL is the lifetime of tokens issued by JWTAuthProvider.
const GuestTokenTTL = 12 * time.Hour

// JWTAuthProvider issues and verifies HMAC signed tokens for self-hosted servers.
type JWTAuthProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type NewJWTAuthProviderOptions struct {
	Secret string
	Issuer string
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

func NewJWTAuthProvider(opts NewJWTAuthProviderOptions) (*JWTAuthProvider, error) {
	if opts.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &JWTAuthProvider{
		secret: []byte(opts.Secret),
		issuer: opts.Issuer,
		now:    opts.Now,
	}, nil
}

// IssueToken signs a token for a new guest user with the given display name.
func (p *JWTAuthProvider) IssueToken(name string) (string, *TokenClaims, error) {
	now := p.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(GuestTokenTTL)),
		},
		Name: name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %v", err)
	}
	return signed, &TokenClaims{UID: claims.Subject, Name: name}, nil
}

// VerifyToken verifies a token issued by IssueToken
func (p *JWTAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("error verifying token: %v", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("error verifying token: missing subject")
	}

	return &TokenClaims{
		UID:  claims.Subject,
		Name: claims.Name,
	}, nil
}

package repositories

import (
	"context"

	"github.com/cbodonnell/settlers/pkg/repositories/models"
	"github.com/google/uuid"
)

// DefaultListLimit is used when ListMatchResults is called with a limit of zero or less
const DefaultListLimit = 50

type Repository interface {
	Close(ctx context.Context) error
	// SaveMatchResult stores result. Saving a session that is already stored keeps the first result.
	SaveMatchResult(ctx context.Context, result *models.MatchResult) error
	GetMatchResult(ctx context.Context, sessionID uuid.UUID) (*models.MatchResult, error)
	// ListMatchResults returns the most recently finished matches first.
	ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error)
}

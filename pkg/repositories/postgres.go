package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies the migrations in migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations string) (Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v", err)
	}

	var username string
	var database string
	if err := pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to query database: %v", err)
	}
	log.Info("Connected to %s as %s", database, username)

	scripts, err := readMigrations(migrations)
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, script := range scripts {
		if _, err := pool.Exec(ctx, script); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	standings, err := json.Marshal(result.Standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %v", err)
	}

	q := `
	INSERT INTO match_results (session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (session_id) DO NOTHING;
	`
	_, err = r.pool.Exec(ctx, q,
		result.SessionID,
		int64(result.WinnerID),
		result.WinnerName,
		result.Rounds,
		result.VictoryPointsTarget,
		result.FinishedAt,
		standings,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetMatchResult(ctx context.Context, sessionID uuid.UUID) (*models.MatchResult, error) {
	q := `
	SELECT session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings
	FROM match_results WHERE session_id = $1;
	`
	result, err := scanPostgresMatchResult(r.pool.QueryRow(ctx, q, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := `
	SELECT session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings
	FROM match_results ORDER BY finished_at DESC LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		result, err := scanPostgresMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %v", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match results: %v", err)
	}

	return results, nil
}

func scanPostgresMatchResult(row pgx.Row) (*models.MatchResult, error) {
	var (
		winnerID  int64
		standings []byte
		result    models.MatchResult
	)
	if err := row.Scan(&result.SessionID, &winnerID, &result.WinnerName, &result.Rounds, &result.VictoryPointsTarget, &result.FinishedAt, &standings); err != nil {
		return nil, err
	}
	result.WinnerID = uint32(winnerID)
	result.FinishedAt = result.FinishedAt.UTC()
	if err := json.Unmarshal(standings, &result.Standings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %v", err)
	}

	return &result, nil
}

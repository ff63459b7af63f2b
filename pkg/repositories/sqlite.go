package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cbodonnell/settlers/pkg/repositories/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	scripts, err := readMigrations(migrations)
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, script := range scripts {
		if _, err := db.ExecContext(ctx, script); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	standings, err := json.Marshal(result.Standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %v", err)
	}

	q := `
	INSERT INTO match_results (session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (session_id) DO NOTHING;
	`
	_, err = r.db.ExecContext(ctx, q,
		result.SessionID.String(),
		result.WinnerID,
		result.WinnerName,
		result.Rounds,
		result.VictoryPointsTarget,
		result.FinishedAt.UnixMilli(),
		string(standings),
	)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) GetMatchResult(ctx context.Context, sessionID uuid.UUID) (*models.MatchResult, error) {
	q := `
	SELECT session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings
	FROM match_results WHERE session_id = ?;
	`
	result, err := scanSQLiteMatchResult(r.db.QueryRowContext(ctx, q, sessionID.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan match result: %v", err)
	}

	return result, nil
}

func (r *SQLiteRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := `
	SELECT session_id, winner_id, winner_name, rounds, victory_points_target, finished_at, standings
	FROM match_results ORDER BY finished_at DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		result, err := scanSQLiteMatchResult(rows)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteMatchResult(row rowScanner) (*models.MatchResult, error) {
	var (
		sessionID  string
		finishedAt int64
		standings  string
		result     models.MatchResult
	)
	if err := row.Scan(&sessionID, &result.WinnerID, &result.WinnerName, &result.Rounds, &result.VictoryPointsTarget, &finishedAt, &standings); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %v", sessionID, err)
	}
	result.SessionID = id
	result.FinishedAt = time.UnixMilli(finishedAt).UTC()
	if err := json.Unmarshal([]byte(standings), &result.Standings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %v", err)
	}

	return &result, nil
}

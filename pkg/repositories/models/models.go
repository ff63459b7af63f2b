package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult is the final outcome of a finished session
type MatchResult struct {
	SessionID           uuid.UUID      `json:"session_id"`
	WinnerID            uint32         `json:"winner_id"`
	WinnerName          string         `json:"winner_name,omitempty"`
	Rounds              int            `json:"rounds"`
	VictoryPointsTarget int            `json:"victory_points_target"`
	FinishedAt          time.Time      `json:"finished_at"`
	Standings           []PlayerResult `json:"standings"`
}

type PlayerResult struct {
	PlayerID       uint32 `json:"player_id"`
	Name           string `json:"name"`
	VictoryPoints  int    `json:"victory_points"`
	LongestRoad    int    `json:"longest_road"`
	KnightsPlayed  int    `json:"knights_played"`
	HasLongestRoad bool   `json:"has_longest_road,omitempty"`
	HasLargestArmy bool   `json:"has_largest_army,omitempty"`
}

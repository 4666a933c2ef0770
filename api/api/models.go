/* models.go
 * This file contain the structs that are returned to api consumers
 * Authors: Zachary Bower
 */

package api

import (
	"llaves-bot/api/bracket"
	"llaves-bot/api/external"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"llaves-bot/metrics"
	"log/slog"
)

// Options configures an API built on an existing store
type Options struct {
	// FinalFormat is used for cycles the store has no final format for
	FinalFormat       logic.FinalFormat
	AdminPasswordHash string
	Logger            *slog.Logger
	Metrics           *metrics.Collectors
}

// ResultOutcome is returned after a result is submitted
type ResultOutcome struct {
	Match      shared.Match
	Evaluation logic.Evaluation
	Steps      []bracket.Step
}

// ImportReport summarises a roster import
type ImportReport struct {
	Inserted int
	Existing int
	Skipped  []external.SkippedEntry
}

// Stats are the totals shown on the dashboard
type Stats struct {
	TotalTeams       int `json:"totalTeams"`
	BasicoTeams      int `json:"basicoTeams"`
	SuperiorTeams    int `json:"superiorTeams"`
	TotalMatches     int `json:"totalMatches"`
	CompletedMatches int `json:"completedMatches"`
}

/* store_interface.go
 * Contains the interface implemented by Store and by the mock used in the api tests
 * Authors: Zachary Bower
 */

package store

import (
	"context"
	"llaves-bot/api/bracket"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
)

// Interface defines the methods used by the API package
type Interface interface {
	bracket.Repository

	GetMatch(ctx context.Context, matchID int64) (shared.Match, error)
	// InsertRound stores the given slots of a round in order, assigning ids and positions
	InsertRound(ctx context.Context, cycle shared.Cycle, round int, slots []shared.MatchFields) ([]shared.Match, error)
	DeleteMatches(ctx context.Context, cycle shared.Cycle) (int64, error)

	// ListTeams returns the roster of a cycle, or every team when cycle is empty
	ListTeams(ctx context.Context, cycle shared.Cycle) ([]shared.Team, error)
	SaveTeams(ctx context.Context, teams []shared.Team) (int, error)

	GetFinalFormat(ctx context.Context) (logic.FinalFormat, error)
	SetFinalFormat(ctx context.Context, format logic.FinalFormat) error

	Close(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

/* repository.go
 * The narrow store contract used by the materializer and the propagator
 * Authors: Zachary Bower
 */

package bracket

import (
	"context"
	"llaves-bot/api/shared"
)

// Repository reads and writes match rows. Implementations return errors wrapping shared.ErrStoreUnavailable
// when the store cannot be reached, never partial data.
type Repository interface {
	ListMatches(ctx context.Context, cycle shared.Cycle) ([]shared.Match, error)
	// GetMatchesInRound returns the rows of one round ordered by id
	GetMatchesInRound(ctx context.Context, cycle shared.Cycle, round int) ([]shared.Match, error)
	// UpsertMatch writes the slot (cycle, round, position), inserting it when absent
	UpsertMatch(ctx context.Context, cycle shared.Cycle, round int, position int, fields shared.MatchFields) (shared.Match, error)
	UpdateMatchResult(ctx context.Context, matchID int64, fields shared.ResultFields) (shared.Match, error)
}

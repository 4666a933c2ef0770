/* fake_repo_test.go
 * In-memory Repository used by the bracket tests
 * Authors: Zachary Bower
 */

package bracket

import (
	"context"
	"fmt"
	"llaves-bot/api/shared"
	"sort"
)

type fakeRepo struct {
	rows   map[int64]shared.Match
	nextID int64

	// Error injection for testing error paths
	ListMatchesError       error
	GetMatchesInRoundError error
	UpsertMatchError       error
	UpdateMatchResultError error
	// failUpsertAfter makes UpsertMatch fail once this many upserts succeeded, -1 disables it
	failUpsertAfter int
	upserts         int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]shared.Match), nextID: 1, failUpsertAfter: -1}
}

// seedRound1 stores round 1 matches in the given order. A pair with an empty second id is a bye.
func (f *fakeRepo) seedRound1(cycle shared.Cycle, pairs ...[2]string) []shared.Match {
	var out []shared.Match
	for i, pair := range pairs {
		pos := i
		m := shared.Match{
			ID:       f.nextID,
			Cycle:    cycle,
			Round:    1,
			Position: &pos,
			Team1ID:  shared.TeamRef(shared.TeamID(pair[0])),
			Team2ID:  shared.TeamRef(shared.TeamID(pair[1])),
			Team1:    &shared.Team{ID: shared.TeamID(pair[0]), Name: "Team " + pair[0]},
		}
		if pair[1] != "" {
			m.Team2 = &shared.Team{ID: shared.TeamID(pair[1]), Name: "Team " + pair[1]}
		}
		f.rows[m.ID] = m
		f.nextID++
		out = append(out, m)
	}
	return out
}

// decide writes a winner the way the result flow does and returns the stored row
func (f *fakeRepo) decide(id int64, winner string) shared.Match {
	m, err := f.UpdateMatchResult(context.Background(), id, shared.ResultFields{
		WinnerID:  shared.TeamRef(shared.TeamID(winner)),
		Team1Sets: 1,
	})
	if err != nil {
		panic(err)
	}
	return m
}

func (f *fakeRepo) inRound(cycle shared.Cycle, round int) []shared.Match {
	var out []shared.Match
	for _, m := range f.rows {
		if m.Cycle == cycle && m.Round == round {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepo) snapshot() map[int64]shared.Match {
	out := make(map[int64]shared.Match, len(f.rows))
	for id, m := range f.rows {
		out[id] = m
	}
	return out
}

func (f *fakeRepo) ListMatches(ctx context.Context, cycle shared.Cycle) ([]shared.Match, error) {
	if f.ListMatchesError != nil {
		return nil, f.ListMatchesError
	}
	var out []shared.Match
	for _, m := range f.rows {
		if m.Cycle == cycle {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) GetMatchesInRound(ctx context.Context, cycle shared.Cycle, round int) ([]shared.Match, error) {
	if f.GetMatchesInRoundError != nil {
		return nil, f.GetMatchesInRoundError
	}
	return f.inRound(cycle, round), nil
}

func (f *fakeRepo) UpsertMatch(ctx context.Context, cycle shared.Cycle, round int, position int, fields shared.MatchFields) (shared.Match, error) {
	if f.UpsertMatchError != nil {
		return shared.Match{}, f.UpsertMatchError
	}
	if f.failUpsertAfter >= 0 && f.upserts >= f.failUpsertAfter {
		return shared.Match{}, fmt.Errorf("%w: upsert refused", shared.ErrStoreUnavailable)
	}
	f.upserts++

	var row shared.Match
	found := false
	for _, m := range f.rows {
		if m.Cycle == cycle && m.Round == round && m.Position != nil && *m.Position == position {
			row, found = m, true
			break
		}
	}
	if !found {
		pos := position
		row = shared.Match{ID: f.nextID, Cycle: cycle, Round: round, Position: &pos}
		f.nextID++
	}
	row.Team1ID = fields.Team1ID
	row.Team2ID = fields.Team2ID
	row.WinnerID = fields.WinnerID
	row.IsBye = fields.IsBye
	row.Team1Sets = fields.Team1Sets
	row.Team2Sets = fields.Team2Sets
	row.Score = fields.Score
	row.CompletedAt = fields.CompletedAt
	f.rows[row.ID] = row
	return row, nil
}

func (f *fakeRepo) UpdateMatchResult(ctx context.Context, matchID int64, fields shared.ResultFields) (shared.Match, error) {
	if f.UpdateMatchResultError != nil {
		return shared.Match{}, f.UpdateMatchResultError
	}
	row, ok := f.rows[matchID]
	if !ok {
		return shared.Match{}, shared.ErrMatchNotFound
	}
	row.WinnerID = fields.WinnerID
	row.Team1Sets = fields.Team1Sets
	row.Team2Sets = fields.Team2Sets
	row.Score = fields.Score
	row.CompletedAt = fields.CompletedAt
	f.rows[matchID] = row
	return row, nil
}

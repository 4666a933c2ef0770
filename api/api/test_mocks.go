/* test_mocks.go
 * Contains an in-memory store used to test the API package and its consumers without MongoDB
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"fmt"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"llaves-bot/api/store"
	"sort"
	"sync"
)

// MockStore implements store.Interface in memory
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Matches map[int64]store.MatchRecord
	Teams   []shared.Team
	Format  logic.FinalFormat
	nextID  int64

	// Error injection for testing error paths
	ListMatchesError       error
	GetMatchesInRoundError error
	GetMatchError          error
	UpsertMatchError       error
	UpdateMatchResultError error
	InsertRoundError       error
	DeleteMatchesError     error
	ListTeamsError         error
	SaveTeamsError         error
	GetFinalFormatError    error
	SetFinalFormatError    error

	Closed bool
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{Matches: make(map[int64]store.MatchRecord), nextID: 1}
}

// AddTeams stores teams directly, assigning ids to the ones without
func (m *MockStore) AddTeams(teams ...shared.Team) []shared.Team {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.Team, 0, len(teams))
	for _, t := range teams {
		if t.ID == "" {
			t.ID = shared.TeamID(fmt.Sprintf("team-%d", len(m.Teams)+1))
		}
		m.Teams = append(m.Teams, t)
		out = append(out, t)
	}
	return out
}

func (m *MockStore) teamsByID() map[shared.TeamID]shared.Team {
	teams := make(map[shared.TeamID]shared.Team, len(m.Teams))
	for _, t := range m.Teams {
		teams[t.ID] = t
	}
	return teams
}

func (m *MockStore) collect(keep func(store.MatchRecord) bool) []shared.Match {
	teams := m.teamsByID()
	var out []shared.Match
	for _, r := range m.Matches {
		if keep(r) {
			out = append(out, store.ToMatch(r, teams))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListMatches mock implementation
func (m *MockStore) ListMatches(ctx context.Context, cycle shared.Cycle) ([]shared.Match, error) {
	if m.ListMatchesError != nil {
		return nil, m.ListMatchesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(r store.MatchRecord) bool { return r.Cycle == cycle }), nil
}

// GetMatchesInRound mock implementation
func (m *MockStore) GetMatchesInRound(ctx context.Context, cycle shared.Cycle, round int) ([]shared.Match, error) {
	if m.GetMatchesInRoundError != nil {
		return nil, m.GetMatchesInRoundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collect(func(r store.MatchRecord) bool { return r.Cycle == cycle && r.Round == round }), nil
}

// GetMatch mock implementation
func (m *MockStore) GetMatch(ctx context.Context, matchID int64) (shared.Match, error) {
	if m.GetMatchError != nil {
		return shared.Match{}, m.GetMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Matches[matchID]
	if !ok {
		return shared.Match{}, fmt.Errorf("%w: %d", shared.ErrMatchNotFound, matchID)
	}
	return store.ToMatch(r, m.teamsByID()), nil
}

// UpsertMatch mock implementation
func (m *MockStore) UpsertMatch(ctx context.Context, cycle shared.Cycle, round int, position int, fields shared.MatchFields) (shared.Match, error) {
	if m.UpsertMatchError != nil {
		return shared.Match{}, m.UpsertMatchError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := int64(0)
	for _, r := range m.Matches {
		if r.Cycle == cycle && r.Round == round && r.Position != nil && *r.Position == position {
			id = r.ID
			break
		}
	}
	if id == 0 {
		id = m.nextID
		m.nextID++
	}
	record := store.NewMatchRecord(id, cycle, round, position, fields)
	m.Matches[id] = record
	return store.ToMatch(record, m.teamsByID()), nil
}

// UpdateMatchResult mock implementation
func (m *MockStore) UpdateMatchResult(ctx context.Context, matchID int64, fields shared.ResultFields) (shared.Match, error) {
	if m.UpdateMatchResultError != nil {
		return shared.Match{}, m.UpdateMatchResultError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Matches[matchID]
	if !ok {
		return shared.Match{}, fmt.Errorf("%w: %d", shared.ErrMatchNotFound, matchID)
	}
	r.WinnerID = fields.WinnerID
	r.Team1Sets = fields.Team1Sets
	r.Team2Sets = fields.Team2Sets
	r.Score = fields.Score
	r.CompletedAt = fields.CompletedAt
	m.Matches[matchID] = r
	return store.ToMatch(r, m.teamsByID()), nil
}

// InsertRound mock implementation
func (m *MockStore) InsertRound(ctx context.Context, cycle shared.Cycle, round int, slots []shared.MatchFields) ([]shared.Match, error) {
	if m.InsertRoundError != nil {
		return nil, m.InsertRoundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	teams := m.teamsByID()
	out := make([]shared.Match, 0, len(slots))
	for i, fields := range slots {
		record := store.NewMatchRecord(m.nextID, cycle, round, i, fields)
		m.Matches[record.ID] = record
		m.nextID++
		out = append(out, store.ToMatch(record, teams))
	}
	return out, nil
}

// DeleteMatches mock implementation
func (m *MockStore) DeleteMatches(ctx context.Context, cycle shared.Cycle) (int64, error) {
	if m.DeleteMatchesError != nil {
		return 0, m.DeleteMatchesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, r := range m.Matches {
		if r.Cycle == cycle {
			delete(m.Matches, id)
			deleted++
		}
	}
	return deleted, nil
}

// ListTeams mock implementation, ordered by course then name like the real store
func (m *MockStore) ListTeams(ctx context.Context, cycle shared.Cycle) ([]shared.Team, error) {
	if m.ListTeamsError != nil {
		return nil, m.ListTeamsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []shared.Team
	for _, t := range m.Teams {
		if cycle == "" || t.Cycle == cycle {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Course != out[j].Course {
			return out[i].Course < out[j].Course
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// SaveTeams mock implementation
func (m *MockStore) SaveTeams(ctx context.Context, teams []shared.Team) (int, error) {
	if m.SaveTeamsError != nil {
		return 0, m.SaveTeamsError
	}
	inserted := 0
	for _, team := range teams {
		if m.hasTeam(team) {
			continue
		}
		team.ID = ""
		m.AddTeams(team)
		inserted++
	}
	return inserted, nil
}

func (m *MockStore) hasTeam(team shared.Team) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Teams {
		if t.Name == team.Name && t.Course == team.Course {
			return true
		}
	}
	return false
}

// GetFinalFormat mock implementation
func (m *MockStore) GetFinalFormat(ctx context.Context) (logic.FinalFormat, error) {
	if m.GetFinalFormatError != nil {
		return logic.FinalFormat{}, m.GetFinalFormatError
	}
	return m.Format, nil
}

// SetFinalFormat mock implementation
func (m *MockStore) SetFinalFormat(ctx context.Context, format logic.FinalFormat) error {
	if m.SetFinalFormatError != nil {
		return m.SetFinalFormatError
	}
	m.Format = format
	return nil
}

// Close mock implementation
func (m *MockStore) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

// Ensure MockStore implements store.Interface
var _ store.Interface = (*MockStore)(nil)

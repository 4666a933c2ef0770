/* materialize_test.go
 * Contains unit tests for materialize.go functions
 * Authors: Zachary Bower
 */

package bracket

import (
	"context"
	"fmt"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func materializeRepo(t *testing.T, repo *fakeRepo, cycle shared.Cycle) []Round {
	t.Helper()
	matches, err := repo.ListMatches(context.Background(), cycle)
	require.NoError(t, err)
	return NewMaterializer(quietLogger()).Materialize(cycle, matches, logic.DefaultFinalFormat)
}

// region Materialize tests

func TestMaterialize_EmptyCycle(t *testing.T) {
	rounds := NewMaterializer(nil).Materialize(shared.CycleBasico, nil, logic.DefaultFinalFormat)

	assert.NotNil(t, rounds)
	assert.Empty(t, rounds)
}

func TestMaterialize_FiveTeamsBeforeAnyResult(t *testing.T) {
	repo := newFakeRepo()
	repo.seedRound1(shared.CycleBasico, [2]string{"a", "b"}, [2]string{"c", "d"}, [2]string{"e", ""})

	rounds := materializeRepo(t, repo, shared.CycleBasico)

	require.Len(t, rounds, 3)
	assert.Equal(t, []string{"CUARTOS DE FINAL", "SEMIFINALES", "FINAL"}, []string{rounds[0].Title, rounds[1].Title, rounds[2].Title})
	require.Len(t, rounds[0].Matches, 3)
	require.Len(t, rounds[1].Matches, 2)
	require.Len(t, rounds[2].Matches, 1)

	bye := rounds[0].Matches[2]
	assert.True(t, bye.IsBye)
	assert.Equal(t, shared.TeamID("e"), *bye.WinnerID)
	assert.Equal(t, 2, bye.BracketPosition)

	open := rounds[1].Matches[0]
	assert.True(t, open.IsGenerated)
	assert.Equal(t, "gen-basico-r2-p0", open.SyntheticID)
	assert.True(t, open.Team1.IsTBD())
	assert.True(t, open.Team2.IsTBD())
	assert.False(t, open.Editable)

	carried := rounds[1].Matches[1]
	assert.Equal(t, "gen-basico-r2-bye-1", carried.SyntheticID)
	assert.True(t, carried.IsBye)
	assert.Equal(t, shared.TeamID("e"), *carried.WinnerID)
	assert.Equal(t, "Team e", carried.Team1.Name)

	final := rounds[2].Matches[0]
	assert.Equal(t, "gen-basico-r3-p0", final.SyntheticID)
	assert.True(t, final.Team1.IsTBD())
	assert.Equal(t, shared.TeamID("e"), *final.Team2ID)
	assert.Nil(t, final.WinnerID)
}

func TestMaterialize_ByeAutoResolvesWithoutStoredFlag(t *testing.T) {
	matches := []shared.Match{
		{ID: 1, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("a"), Team2ID: shared.TeamRef("b")},
		{ID: 2, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("c")},
	}

	rounds := NewMaterializer(quietLogger()).Materialize(shared.CycleBasico, matches, logic.DefaultFinalFormat)

	bye := rounds[0].Matches[1]
	assert.True(t, bye.IsBye)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, shared.TeamID("c"), *bye.WinnerID)
	assert.True(t, bye.IsWinner1)
	assert.True(t, bye.HasNoOpponent)
	assert.Equal(t, "Pase automático", bye.Status)
	assert.False(t, bye.Editable)
}

func TestMaterialize_RoundOneOrderedByID(t *testing.T) {
	matches := []shared.Match{
		{ID: 30, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("e"), Team2ID: shared.TeamRef("f")},
		{ID: 10, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("a"), Team2ID: shared.TeamRef("b")},
		{ID: 20, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("c"), Team2ID: shared.TeamRef("d")},
	}

	rounds := NewMaterializer(quietLogger()).Materialize(shared.CycleBasico, matches, logic.DefaultFinalFormat)

	ids := []int64{}
	for i, m := range rounds[0].Matches {
		ids = append(ids, m.ID)
		assert.Equal(t, i, m.BracketPosition)
	}
	assert.Equal(t, []int64{10, 20, 30}, ids)
}

func TestMaterialize_DisplaySetsAndRequiredSets(t *testing.T) {
	matches := []shared.Match{
		{ID: 1, Cycle: shared.CycleSuperior, Round: 1, Team1ID: shared.TeamRef("a"), Team2ID: shared.TeamRef("b"), Score: "11-6, 9-11"},
		{ID: 2, Cycle: shared.CycleSuperior, Round: 1, Team1ID: shared.TeamRef("c"), Team2ID: shared.TeamRef("d")},
		{ID: 3, Cycle: shared.CycleSuperior, Round: 1, Team1ID: shared.TeamRef("e")},
	}

	rounds := NewMaterializer(quietLogger()).Materialize(shared.CycleSuperior, matches, logic.DefaultFinalFormat)

	require.Len(t, rounds, 3)
	played, unplayed, bye := rounds[0].Matches[0], rounds[0].Matches[1], rounds[0].Matches[2]
	assert.Equal(t, 3, played.RequiredSets)
	assert.Equal(t, []shared.SetScore{{Team1: 11, Team2: 6}, {Team1: 9, Team2: 11}}, played.Sets)
	assert.Equal(t, []shared.SetScore{{}, {}, {}}, unplayed.Sets)
	assert.Equal(t, []shared.SetScore{{Team1: 1}, {Team1: 1}, {Team1: 1}}, bye.Sets)
	assert.True(t, played.Editable)

	final := rounds[2].Matches[0]
	assert.Equal(t, 5, final.RequiredSets)
	assert.Len(t, final.Sets, 5)
}

func TestMaterialize_FinalFormatIsConfigurable(t *testing.T) {
	matches := []shared.Match{
		{ID: 1, Cycle: shared.CycleBasico, Round: 1, Team1ID: shared.TeamRef("a"), Team2ID: shared.TeamRef("b")},
	}

	rounds := NewMaterializer(quietLogger()).Materialize(shared.CycleBasico, matches, logic.FinalFormat{Basico: 5, Superior: 5})

	require.Len(t, rounds, 1)
	assert.Equal(t, "FINAL", rounds[0].Title)
	assert.Equal(t, 5, rounds[0].Matches[0].RequiredSets)
}

func TestMaterialize_UsesStoredLaterRounds(t *testing.T) {
	repo := newFakeRepo()
	r1 := repo.seedRound1(shared.CycleBasico, [2]string{"a", "b"}, [2]string{"c", "d"})
	p := NewPropagator(repo, quietLogger())
	_, err := p.Propagate(context.Background(), repo.decide(r1[0].ID, "a"))
	require.NoError(t, err)
	_, err = p.Propagate(context.Background(), repo.decide(r1[1].ID, "d"))
	require.NoError(t, err)

	rounds := materializeRepo(t, repo, shared.CycleBasico)

	require.Len(t, rounds, 2)
	final := rounds[1].Matches[0]
	assert.False(t, final.IsGenerated)
	assert.Greater(t, final.ID, int64(0))
	assert.Equal(t, shared.TeamID("a"), *final.Team1ID)
	assert.Equal(t, shared.TeamID("d"), *final.Team2ID)
	assert.True(t, final.Editable)
	assert.Equal(t, "Pendiente", final.Status)
	assert.True(t, rounds[0].Matches[0].IsWinner1)
	assert.True(t, rounds[0].Matches[1].IsWinner2)
}

func TestMaterialize_IgnoresRoundsAboveHeight(t *testing.T) {
	repo := newFakeRepo()
	repo.seedRound1(shared.CycleBasico, [2]string{"a", "b"}, [2]string{"c", "d"})
	_, err := repo.UpsertMatch(context.Background(), shared.CycleBasico, 4, 0, shared.MatchFields{Team1ID: shared.TeamRef("a")})
	require.NoError(t, err)
	_, err = repo.UpsertMatch(context.Background(), shared.CycleBasico, 2, 3, shared.MatchFields{Team1ID: shared.TeamRef("a")})
	require.NoError(t, err)

	rounds := materializeRepo(t, repo, shared.CycleBasico)

	require.Len(t, rounds, 2)
	assert.Len(t, rounds[1].Matches, 1)
	assert.True(t, rounds[1].Matches[0].IsGenerated)
}

func TestMaterialize_NeverExceedsMaxRounds(t *testing.T) {
	for teams := 1; teams <= 40; teams++ {
		t.Run(fmt.Sprintf("%d teams", teams), func(t *testing.T) {
			repo := newFakeRepo()
			var pairs [][2]string
			for i := 0; i < teams; i += 2 {
				pair := [2]string{fmt.Sprintf("t%d", i), ""}
				if i+1 < teams {
					pair[1] = fmt.Sprintf("t%d", i+1)
				}
				pairs = append(pairs, pair)
			}
			repo.seedRound1(shared.CycleSuperior, pairs...)

			rounds := materializeRepo(t, repo, shared.CycleSuperior)

			require.Len(t, rounds, MaxRounds(teams))
			assert.Len(t, rounds[len(rounds)-1].Matches, 1)
			for i, r := range rounds {
				assert.Equal(t, i+1, r.Number)
			}
		})
	}
}

// endregion

// region FindMatch tests

func TestFindMatch(t *testing.T) {
	repo := newFakeRepo()
	r1 := repo.seedRound1(shared.CycleBasico, [2]string{"a", "b"}, [2]string{"c", "d"})
	rounds := materializeRepo(t, repo, shared.CycleBasico)

	view, ok := FindMatch(rounds, r1[1].ID)
	require.True(t, ok)
	assert.Equal(t, 1, view.BracketPosition)

	_, ok = FindMatch(rounds, 999)
	assert.False(t, ok)
}

// endregion

/* materialize.go
 * Builds the complete bracket of a cycle from its stored rows: round 1 as stored, later rounds from the store
 * where a filled row exists and projected from their predecessors where it does not
 * Authors: Zachary Bower
 */

package bracket

import (
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"log/slog"
	"sort"
)

// Round is one column of the bracket
type Round struct {
	Number  int         `json:"round"`
	Title   string      `json:"title"`
	Matches []MatchView `json:"matches"`
}

// MatchView is a match annotated for display
type MatchView struct {
	shared.Match
	BracketPosition int               `json:"bracketPosition"`
	RequiredSets    int               `json:"requiredSets"`
	Sets            []shared.SetScore `json:"sets"`
	HasNoOpponent   bool              `json:"hasNoOpponent"`
	IsWinner1       bool              `json:"isWinner1"`
	IsWinner2       bool              `json:"isWinner2"`
	Editable        bool              `json:"editable"`
	Status          string            `json:"status"`
}

type Materializer struct {
	logger *slog.Logger
}

// NewMaterializer returns a Materializer logging to logger, or to slog.Default() when logger is nil
func NewMaterializer(logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{logger: logger}
}

// Materialize returns the rounds of one cycle in order, each with its matches in bracket order.
// Preconditions: Receives the cycle, every stored row of that cycle, and the final format in use
// Postconditions: Returns an empty slice when the cycle has no round 1 rows. Rows above the height derived from
// round 1 are ignored and logged.
func (mt *Materializer) Materialize(cycle shared.Cycle, matches []shared.Match, format logic.FinalFormat) []Round {
	byRound := make(map[int][]shared.Match)
	for _, m := range matches {
		if m.Round < 1 {
			mt.logger.Warn("ignoring match with invalid round", "cycle", cycle, "match_id", m.ID, "round", m.Round)
			continue
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}

	round1 := sortByID(byRound[1])
	if len(round1) == 0 {
		return []Round{}
	}
	maxRounds, _ := heightOf(round1)
	mt.reportExcess(cycle, byRound, maxRounds)

	prev := make([]shared.Match, len(round1))
	for i, m := range round1 {
		prev[i] = resolveBye(m)
	}
	columns := [][]shared.Match{prev}

	for r := 2; r <= maxRounds; r++ {
		stored, unplaced := slotsOf(byRound[r], r)
		for _, m := range unplaced {
			mt.logger.Warn("ignoring duplicate slot", "cycle", cycle, "round", r, "match_id", m.ID)
		}

		size := (len(prev) + 1) / 2
		cur := make([]shared.Match, 0, size)
		for k := 0; k < size; k++ {
			if m, ok := stored[k]; ok && !isVacant(m) {
				cur = append(cur, m)
				continue
			}
			var second *shared.Match
			if 2*k+1 < len(prev) {
				second = &prev[2*k+1]
			}
			cur = append(cur, project(cycle, r, k, prev[2*k], second))
		}
		for pos := range stored {
			if pos >= size {
				mt.logger.Warn("ignoring match outside bracket", "cycle", cycle, "round", r, "position", pos)
			}
		}
		columns = append(columns, cur)
		prev = cur
	}

	finalRound := len(columns)
	rounds := make([]Round, 0, len(columns))
	for i, column := range columns {
		number := i + 1
		required := logic.RequiredSets(cycle, number == finalRound, format)
		views := make([]MatchView, 0, len(column))
		for pos, m := range column {
			views = append(views, annotate(m, pos, required))
		}
		rounds = append(rounds, Round{Number: number, Title: RoundTitle(number, finalRound), Matches: views})
	}
	return rounds
}

func (mt *Materializer) reportExcess(cycle shared.Cycle, byRound map[int][]shared.Match, maxRounds int) {
	var excess []int
	for r := range byRound {
		if r > maxRounds {
			excess = append(excess, r)
		}
	}
	if len(excess) == 0 {
		return
	}
	sort.Ints(excess)
	mt.logger.Warn("stored rounds exceed bracket height",
		"cycle", cycle, "max_rounds", maxRounds, "rounds", excess, "error", shared.ErrStructuralInconsistency)
}

// resolveBye forces a round 1 match without a second team to a decided bye
func resolveBye(m shared.Match) shared.Match {
	if m.HasOpponent() {
		return m
	}
	m.IsBye = true
	m.Team2ID = nil
	m.Team2 = nil
	if m.Team1ID != nil {
		winner := *m.Team1ID
		m.WinnerID = &winner
	}
	return m
}

// project builds the in-memory match fed by predecessors first and second. A nil second makes a bye.
func project(cycle shared.Cycle, round int, position int, first shared.Match, second *shared.Match) shared.Match {
	m := shared.Match{
		Cycle:       cycle,
		Round:       round,
		IsGenerated: true,
		SyntheticID: SyntheticID(cycle, round, position, second == nil),
	}
	pos := position
	m.Position = &pos

	m.Team1ID, m.Team1 = advancing(first)
	if second == nil {
		m.IsBye = true
		if m.Team1ID != nil {
			winner := *m.Team1ID
			m.WinnerID = &winner
		}
		return m
	}
	m.Team2ID, m.Team2 = advancing(*second)
	return m
}

// advancing returns the team leaving a match, or the TBD placeholder while it is undecided
func advancing(m shared.Match) (*shared.TeamID, *shared.Team) {
	if !m.IsDecided() {
		return nil, shared.TBDTeam()
	}
	winner := *m.WinnerID
	team := m.Team1
	if shared.SameTeam(m.WinnerID, m.Team2ID) {
		team = m.Team2
	}
	if team == nil {
		team = &shared.Team{ID: winner}
	}
	return &winner, team
}

func annotate(m shared.Match, position int, required int) MatchView {
	view := MatchView{
		Match:           m,
		BracketPosition: position,
		RequiredSets:    required,
		HasNoOpponent:   m.IsBye || (m.Team2 == nil && !m.HasOpponent()),
		IsWinner1:       m.IsDecided() && shared.SameTeam(m.WinnerID, m.Team1ID),
		IsWinner2:       m.IsDecided() && shared.SameTeam(m.WinnerID, m.Team2ID),
		Status:          logic.MatchStatus(m),
	}
	switch sets := logic.ParseScore(m.Score); {
	case view.HasNoOpponent:
		view.Sets = filledSets(required, shared.SetScore{Team1: 1, Team2: 0})
	case len(sets) == 0:
		view.Sets = filledSets(required, shared.SetScore{})
	default:
		view.Sets = sets
	}

	view.Editable = m.ID > 0 && !m.IsGenerated && !m.IsBye &&
		m.Team1ID != nil && m.Team2ID != nil &&
		(m.Team1 == nil || !m.Team1.IsTBD()) && (m.Team2 == nil || !m.Team2.IsTBD())
	return view
}

func filledSets(n int, set shared.SetScore) []shared.SetScore {
	sets := make([]shared.SetScore, n)
	for i := range sets {
		sets[i] = set
	}
	return sets
}

// FindMatch looks up a persisted match in materialized rounds
func FindMatch(rounds []Round, matchID int64) (MatchView, bool) {
	for _, r := range rounds {
		for _, m := range r.Matches {
			if m.ID == matchID && !m.IsGenerated {
				return m, true
			}
		}
	}
	return MatchView{}, false
}

/* propagate.go
 * Moves the winner of a finished match into its slot of the next round. Byes created on the way are advanced
 * through a worklist until a real match or the final is reached.
 * Authors: Zachary Bower
 */

package bracket

import (
	"context"
	"fmt"
	"llaves-bot/api/shared"
	"log/slog"
	"time"
)

// StepKind describes what one propagation step did
type StepKind string

const (
	// StepMatch filled both teams of a next round match
	StepMatch StepKind = "match"
	// StepBye advanced a winner that has no opponent in the next round
	StepBye StepKind = "bye"
	// StepStall left the next round untouched because the sibling match is not decided
	StepStall StepKind = "stall"
	// StepClear emptied a later slot whose participants are no longer known
	StepClear StepKind = "clear"
)

// Step records one slot visited while propagating
type Step struct {
	Kind     StepKind     `json:"kind"`
	Cycle    shared.Cycle `json:"cycle"`
	Round    int          `json:"round"`
	Position int          `json:"position"`
	MatchID  int64        `json:"matchId,omitempty"`
}

type Propagator struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewPropagator returns a Propagator writing through repo
func NewPropagator(repo Repository, logger *slog.Logger) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{repo: repo, logger: logger, now: time.Now}
}

// Propagate advances the winner of completed and any byes that follow from it.
// Preconditions: Receives a stored match whose winner has been written
// Postconditions: Returns the steps taken. Re-running it for the same match leaves the store unchanged. A store
// failure stops the walk at the failing step, earlier writes stay committed.
func (p *Propagator) Propagate(ctx context.Context, completed shared.Match) ([]Step, error) {
	if err := validateCompleted(completed); err != nil {
		return nil, err
	}

	round1, err := p.repo.GetMatchesInRound(ctx, completed.Cycle, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read round 1: %w", err)
	}
	maxRounds, sizes := heightOf(round1)

	var steps []Step
	queue := []shared.Match{completed}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.Round >= maxRounds {
			continue
		}

		step, next, reset, err := p.advance(ctx, cur, sizes)
		if err != nil {
			return steps, err
		}
		steps = append(steps, step)
		switch {
		case step.Kind == StepBye:
			queue = append(queue, next)
		case reset:
			cleared, err := p.clearAfter(ctx, next, maxRounds)
			steps = append(steps, cleared...)
			if err != nil {
				return steps, err
			}
		}
	}
	return steps, nil
}

// Retract empties every later slot that was filled from changed, after its result was edited to undecided.
// Preconditions: Receives a stored match
// Postconditions: Returns one StepClear per emptied slot. Slots already empty end the walk, so repeating it is a
// no-op.
func (p *Propagator) Retract(ctx context.Context, changed shared.Match) ([]Step, error) {
	if changed.IsGenerated || changed.ID <= 0 {
		return nil, shared.Invalid("match", "generated match %s cannot be retracted", changed.Key())
	}
	round1, err := p.repo.GetMatchesInRound(ctx, changed.Cycle, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read round 1: %w", err)
	}
	maxRounds, _ := heightOf(round1)
	return p.clearAfter(ctx, changed, maxRounds)
}

// clearAfter walks from one match towards the final, emptying each stored slot it feeds
func (p *Propagator) clearAfter(ctx context.Context, from shared.Match, maxRounds int) ([]Step, error) {
	var steps []Step
	cur := from
	for cur.Round < maxRounds {
		pos, nextSlots, err := p.locate(ctx, cur)
		if err != nil {
			return steps, err
		}
		nextRound, pair := cur.Round+1, pos/2
		existing, exists := nextSlots[pair]
		if !exists || isVacant(existing) {
			return steps, nil
		}

		row, err := p.repo.UpsertMatch(ctx, cur.Cycle, nextRound, pair, shared.MatchFields{})
		if err != nil {
			return steps, fmt.Errorf("failed to clear round %d slot %d: %w", nextRound, pair, err)
		}
		steps = append(steps, Step{Kind: StepClear, Cycle: cur.Cycle, Round: nextRound, Position: pair, MatchID: row.ID})
		p.logger.Info("cleared slot", "cycle", cur.Cycle, "round", nextRound, "position", pair, "match_id", row.ID)
		cur = row
	}
	return steps, nil
}

// locate finds the slot of cur in its round and reads the slots of the round after it
func (p *Propagator) locate(ctx context.Context, cur shared.Match) (int, map[int]shared.Match, error) {
	same, err := p.repo.GetMatchesInRound(ctx, cur.Cycle, cur.Round)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read round %d: %w", cur.Round, err)
	}
	slots, _ := slotsOf(same, cur.Round)
	pos, ok := positionOf(slots, cur.ID)
	if !ok {
		return 0, nil, fmt.Errorf("%w: match %d is not stored in round %d", shared.ErrMatchNotFound, cur.ID, cur.Round)
	}
	nextRows, err := p.repo.GetMatchesInRound(ctx, cur.Cycle, cur.Round+1)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read round %d: %w", cur.Round+1, err)
	}
	nextSlots, _ := slotsOf(nextRows, cur.Round+1)
	return pos, nextSlots, nil
}

// advance handles a single match: it finds the sibling and writes the next round slot when it can.
// Above round 1 the stored bracket position, not id order, decides which slot a match holds.
// The returned flag reports that the written slot lost a result it had before.
func (p *Propagator) advance(ctx context.Context, cur shared.Match, sizes []int) (Step, shared.Match, bool, error) {
	same, err := p.repo.GetMatchesInRound(ctx, cur.Cycle, cur.Round)
	if err != nil {
		return Step{}, shared.Match{}, false, fmt.Errorf("failed to read round %d: %w", cur.Round, err)
	}
	slots, _ := slotsOf(same, cur.Round)
	pos, ok := positionOf(slots, cur.ID)
	if !ok {
		return Step{}, shared.Match{}, false, fmt.Errorf("%w: match %d is not stored in round %d", shared.ErrMatchNotFound, cur.ID, cur.Round)
	}

	nextRound := cur.Round + 1
	pair := pos / 2
	step := Step{Cycle: cur.Cycle, Round: nextRound, Position: pair}

	nextRows, err := p.repo.GetMatchesInRound(ctx, cur.Cycle, nextRound)
	if err != nil {
		return Step{}, shared.Match{}, false, fmt.Errorf("failed to read round %d: %w", nextRound, err)
	}
	nextSlots, _ := slotsOf(nextRows, nextRound)
	existing, exists := nextSlots[pair]

	sibling := pos ^ 1
	var fields shared.MatchFields
	if sibling >= sizes[cur.Round] {
		step.Kind = StepBye
		fields = p.byeFields(cur.WinnerID, existing, exists)
	} else {
		sib, ok := slots[sibling]
		if !ok || !sib.IsDecided() {
			step.Kind = StepStall
			p.logger.Debug("waiting for sibling", "cycle", cur.Cycle, "round", cur.Round, "position", sibling)
			return step, shared.Match{}, false, nil
		}
		first, second := cur.WinnerID, sib.WinnerID
		if pos%2 == 1 {
			first, second = second, first
		}
		step.Kind = StepMatch
		fields = pairFields(first, second, existing, exists)
	}

	row, err := p.repo.UpsertMatch(ctx, cur.Cycle, nextRound, pair, fields)
	if err != nil {
		return Step{}, shared.Match{}, false, fmt.Errorf("failed to write round %d slot %d: %w", nextRound, pair, err)
	}
	step.MatchID = row.ID
	p.logger.Info("advanced winner",
		"cycle", cur.Cycle, "round", nextRound, "position", pair, "match_id", row.ID, "kind", step.Kind)
	reset := exists && existing.IsDecided() && !shared.SameTeam(existing.WinnerID, row.WinnerID)
	return step, row, reset, nil
}

// byeFields decides a slot for winner alone. The completion time of an identical bye is kept.
func (p *Propagator) byeFields(winner *shared.TeamID, existing shared.Match, exists bool) shared.MatchFields {
	completedAt := p.now().UTC()
	if exists && existing.IsBye && shared.SameTeam(existing.WinnerID, winner) && existing.CompletedAt != nil {
		completedAt = *existing.CompletedAt
	}
	return shared.MatchFields{
		Team1ID:     winner,
		Team2ID:     nil,
		WinnerID:    winner,
		IsBye:       true,
		Team1Sets:   1,
		Team2Sets:   0,
		CompletedAt: &completedAt,
	}
}

// pairFields sets up an unplayed match. A slot already holding the same two teams keeps its result.
func pairFields(first, second *shared.TeamID, existing shared.Match, exists bool) shared.MatchFields {
	fields := shared.MatchFields{Team1ID: first, Team2ID: second}
	if exists && !existing.IsBye && shared.SameTeam(existing.Team1ID, first) && shared.SameTeam(existing.Team2ID, second) {
		fields.WinnerID = existing.WinnerID
		fields.Team1Sets = existing.Team1Sets
		fields.Team2Sets = existing.Team2Sets
		fields.Score = existing.Score
		fields.CompletedAt = existing.CompletedAt
	}
	return fields
}

// SettleByes decides every round 1 bye of a cycle and advances it.
// Preconditions: Receives the cycle to settle
// Postconditions: Byes without a stored winner get team1 as winner, then each bye is propagated. Safe to repeat.
func (p *Propagator) SettleByes(ctx context.Context, cycle shared.Cycle) ([]Step, error) {
	round1, err := p.repo.GetMatchesInRound(ctx, cycle, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read round 1: %w", err)
	}

	var steps []Step
	for _, m := range sortByID(round1) {
		if m.HasOpponent() {
			continue
		}
		if m.Team1ID == nil {
			p.logger.Warn("round 1 match has no teams", "cycle", cycle, "match_id", m.ID)
			continue
		}
		if !shared.SameTeam(m.WinnerID, m.Team1ID) {
			completedAt := p.now().UTC()
			settled, err := p.repo.UpdateMatchResult(ctx, m.ID, shared.ResultFields{
				WinnerID:    m.Team1ID,
				Team1Sets:   1,
				Team2Sets:   0,
				CompletedAt: &completedAt,
			})
			if err != nil {
				return steps, fmt.Errorf("failed to settle bye %d: %w", m.ID, err)
			}
			m = settled
		}
		more, err := p.Propagate(ctx, m)
		steps = append(steps, more...)
		if err != nil {
			return steps, err
		}
	}
	return steps, nil
}

func validateCompleted(m shared.Match) error {
	if m.IsGenerated || m.ID <= 0 {
		return shared.Invalid("match", "generated match %s cannot be advanced", m.Key())
	}
	if !m.IsDecided() {
		return shared.Invalid("winner", "match %d has no winner", m.ID)
	}
	if !shared.SameTeam(m.WinnerID, m.Team1ID) && !shared.SameTeam(m.WinnerID, m.Team2ID) {
		return shared.Invalid("winner", "winner of match %d did not play in it", m.ID)
	}
	return nil
}

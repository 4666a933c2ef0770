/* api.go
 * This file contains the public methods for interacting with this package. For consistent results, functions should
 * only be called from this file, not the sub packages for bracket, logic and store.
 * Authors: Zachary Bower
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"llaves-bot/api/bracket"
	"llaves-bot/api/external"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"llaves-bot/api/store"
	"llaves-bot/config"
	"llaves-bot/metrics"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// API provides methods for interacting with the bracket data layer
type API struct {
	Store store.Interface

	materializer *bracket.Materializer
	propagator   *bracket.Propagator
	logger       *slog.Logger
	metrics      *metrics.Collectors
	defaults     logic.FinalFormat
	adminHash    []byte
	now          func() time.Time
}

// NewAPI connects to the store described by cfg and returns an API using it
func NewAPI(ctx context.Context, cfg *config.Config, collectors *metrics.Collectors) (*API, error) {
	if cfg == nil || cfg.MongoDB == "" || cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo database and URI are required")
	}

	s, err := store.NewStore(ctx, cfg.MongoDB, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	return New(s, Options{
		FinalFormat:       logic.FinalFormat{Basico: cfg.FinalSetsBasico, Superior: cfg.FinalSetsSuperior},
		AdminPasswordHash: cfg.AdminPasswordHash,
		Metrics:           collectors,
	}), nil
}

// New returns an API over an existing store
func New(s store.Interface, opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		Store:        s,
		materializer: bracket.NewMaterializer(logger),
		propagator:   bracket.NewPropagator(s, logger),
		logger:       logger,
		metrics:      opts.Metrics,
		defaults:     opts.FinalFormat,
		adminHash:    []byte(opts.AdminPasswordHash),
		now:          time.Now,
	}
}

// Login checks the admin password and returns the session used by every mutating call.
// Preconditions: Receives the user logging in and the password they typed
// Postconditions: Returns an admin session, or shared.ErrUnauthorized if the password is wrong or logins are disabled
func (a *API) Login(user shared.User, password string) (shared.Session, error) {
	if len(a.adminHash) == 0 {
		return shared.Session{}, fmt.Errorf("%w: admin login is not configured", shared.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)); err != nil {
		return shared.Session{}, fmt.Errorf("%w: wrong password", shared.ErrUnauthorized)
	}
	a.logger.Info("admin login", "user_id", user.UserID, "username", user.Username)
	return shared.Session{UserID: user.UserID, Username: user.Username, Admin: true, IssuedAt: a.now().UTC()}, nil
}

// FinalFormat returns the sets required in each cycle's final
func (a *API) FinalFormat(ctx context.Context) (logic.FinalFormat, error) {
	stored, err := a.Store.GetFinalFormat(ctx)
	if err != nil {
		return logic.FinalFormat{}, err
	}
	format := a.defaults
	if stored.Basico > 0 {
		format.Basico = stored.Basico
	}
	if stored.Superior > 0 {
		format.Superior = stored.Superior
	}
	return format, nil
}

// SetFinalFormat changes how many sets the final of a cycle is played to
// Preconditions: Receives an admin session, the cycle and an odd number of sets between 1 and 7
// Postconditions: The new format is stored, or an error is returned
func (a *API) SetFinalFormat(ctx context.Context, session shared.Session, cycle shared.Cycle, sets int) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if !logic.ValidFinalSets(sets) {
		return shared.Invalid("sets", "the final must be played to an odd number of sets between 1 and 7, got %d", sets)
	}
	format, err := a.FinalFormat(ctx)
	if err != nil {
		return err
	}
	return a.Store.SetFinalFormat(ctx, format.With(cycle, sets))
}

// GetBracket returns every round of a cycle, with rounds not yet stored projected from their predecessors
func (a *API) GetBracket(ctx context.Context, cycle shared.Cycle) ([]bracket.Round, error) {
	matches, err := a.Store.ListMatches(ctx, cycle)
	if err != nil {
		return nil, err
	}
	format, err := a.FinalFormat(ctx)
	if err != nil {
		return nil, err
	}
	return a.materializer.Materialize(cycle, matches, format), nil
}

// SubmitResult records the sets of a match and advances the winner.
// Preconditions: Receives an admin session, the persisted match id and the sets in play order
// Postconditions: The score is stored. When the sets decide the match the winner is stored and propagated into the
// next round. Returns the stored match, the evaluation and the propagation steps.
func (a *API) SubmitResult(ctx context.Context, session shared.Session, matchID int64, sets []shared.SetScore) (ResultOutcome, error) {
	if err := requireAdmin(session); err != nil {
		return ResultOutcome{}, err
	}

	match, err := a.Store.GetMatch(ctx, matchID)
	if err != nil {
		return ResultOutcome{}, err
	}
	rounds, err := a.GetBracket(ctx, match.Cycle)
	if err != nil {
		return ResultOutcome{}, err
	}
	view, ok := bracket.FindMatch(rounds, matchID)
	if !ok {
		return ResultOutcome{}, shared.Invalid("match", "match %d is outside the current bracket", matchID)
	}
	if !view.Editable {
		return ResultOutcome{}, shared.Invalid("match", "match %d cannot be edited until both teams are known", matchID)
	}

	eval, err := logic.Evaluate(sets, view.RequiredSets)
	if err != nil {
		return ResultOutcome{}, err
	}

	fields := shared.ResultFields{Team1Sets: eval.Team1Sets, Team2Sets: eval.Team2Sets, Score: eval.Summary}
	switch eval.Winner {
	case logic.SideTeam1:
		fields.WinnerID = view.Team1ID
	case logic.SideTeam2:
		fields.WinnerID = view.Team2ID
	}
	if fields.WinnerID != nil {
		completedAt := a.now().UTC()
		fields.CompletedAt = &completedAt
	}

	updated, err := a.Store.UpdateMatchResult(ctx, matchID, fields)
	if err != nil {
		return ResultOutcome{}, err
	}
	a.metrics.ObserveResult(updated.Cycle)
	a.logger.Info("result stored", "cycle", updated.Cycle, "match_id", matchID, "score", eval.Summary, "winner", eval.Winner.String(), "user_id", session.UserID)

	outcome := ResultOutcome{Match: updated, Evaluation: eval}
	if eval.Winner == logic.SideNone {
		steps, err := a.propagator.Retract(ctx, updated)
		outcome.Steps = steps
		a.metrics.ObserveSteps(steps)
		return outcome, err
	}

	settled, err := a.propagator.SettleByes(ctx, updated.Cycle)
	outcome.Steps = append(outcome.Steps, settled...)
	if err != nil {
		a.metrics.ObserveSteps(outcome.Steps)
		return outcome, err
	}
	steps, err := a.propagator.Propagate(ctx, updated)
	outcome.Steps = append(outcome.Steps, steps...)
	a.metrics.ObserveSteps(outcome.Steps)
	return outcome, err
}

// SeedCycle creates round 1 of a cycle from its roster, pairing teams in roster order
func (a *API) SeedCycle(ctx context.Context, session shared.Session, cycle shared.Cycle, force bool) ([]shared.Match, error) {
	return a.SeedCycleOrdered(ctx, session, cycle, force, nil)
}

// SeedCycleOrdered creates round 1 of a cycle. Teams named in order are paired first, in that order, and the rest
// of the roster follows.
// Preconditions: Receives an admin session, the cycle, force to replace an existing bracket and the typed team names
// Postconditions: Returns the round 1 matches with byes already advanced, or an error
func (a *API) SeedCycleOrdered(ctx context.Context, session shared.Session, cycle shared.Cycle, force bool, order []string) ([]shared.Match, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}

	teams, err := a.Store.ListTeams(ctx, cycle)
	if err != nil {
		return nil, err
	}
	if len(teams) < 2 {
		return nil, shared.Invalid("teams", "%s needs at least 2 teams, has %d", cycle.Label(), len(teams))
	}
	if len(order) > 0 {
		if teams, err = seedingOrder(order, teams); err != nil {
			return nil, err
		}
	}

	existing, err := a.Store.ListMatches(ctx, cycle)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !force {
			return nil, shared.Invalid("cycle", "%s already has a bracket, seed with force to replace it", cycle.Label())
		}
		deleted, err := a.Store.DeleteMatches(ctx, cycle)
		if err != nil {
			return nil, err
		}
		a.logger.Warn("bracket reset", "cycle", cycle, "deleted", deleted, "user_id", session.UserID)
	}

	pairings := logic.GeneratePairings(teams)
	slots := make([]shared.MatchFields, 0, len(pairings))
	completedAt := a.now().UTC()
	for _, p := range pairings {
		slot := shared.MatchFields{Team1ID: shared.TeamRef(p.Team1.ID)}
		if p.IsBye() {
			slot.IsBye = true
			slot.WinnerID = shared.TeamRef(p.Team1.ID)
			slot.Team1Sets = 1
			slot.CompletedAt = &completedAt
		} else {
			slot.Team2ID = shared.TeamRef(p.Team2.ID)
		}
		slots = append(slots, slot)
	}

	round1, err := a.Store.InsertRound(ctx, cycle, 1, slots)
	if err != nil {
		return nil, err
	}
	steps, err := a.propagator.SettleByes(ctx, cycle)
	a.metrics.ObserveSteps(steps)
	if err != nil {
		return round1, err
	}
	a.logger.Info("bracket seeded", "cycle", cycle, "teams", len(teams), "matches", len(round1))
	return round1, nil
}

// ImportRoster parses a roster document and stores its teams
// Preconditions: Receives an admin session and the raw JSON
// Postconditions: Returns how many teams were new, already on the roster, or skipped
func (a *API) ImportRoster(ctx context.Context, session shared.Session, data []byte) (ImportReport, error) {
	if err := requireAdmin(session); err != nil {
		return ImportReport{}, err
	}
	roster, err := external.ParseRoster(data)
	if err != nil {
		return ImportReport{}, err
	}
	inserted, err := a.Store.SaveTeams(ctx, roster.Teams)
	if err != nil {
		return ImportReport{}, err
	}
	return ImportReport{Inserted: inserted, Existing: len(roster.Teams) - inserted, Skipped: roster.Skipped}, nil
}

// GetTeams returns the roster of a cycle, or every team when cycle is empty
func (a *API) GetTeams(ctx context.Context, cycle shared.Cycle) ([]shared.Team, error) {
	return a.Store.ListTeams(ctx, cycle)
}

// GetStats returns the dashboard totals
func (a *API) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats

	teams, err := a.Store.ListTeams(ctx, "")
	if err != nil {
		return Stats{}, err
	}
	stats.TotalTeams = len(teams)
	for _, t := range teams {
		switch t.Cycle {
		case shared.CycleBasico:
			stats.BasicoTeams++
		case shared.CycleSuperior:
			stats.SuperiorTeams++
		}
	}

	for _, cycle := range shared.Cycles {
		matches, err := a.Store.ListMatches(ctx, cycle)
		if err != nil {
			return Stats{}, err
		}
		stats.TotalMatches += len(matches)
		for _, m := range matches {
			if m.IsDecided() {
				stats.CompletedMatches++
			}
		}
	}
	return stats, nil
}

// MatchCycle returns the cycle a stored match belongs to
func (a *API) MatchCycle(ctx context.Context, matchID int64) (shared.Cycle, error) {
	m, err := a.Store.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}
	return m.Cycle, nil
}

// seedingOrder puts the roster teams matching names first, keeping roster order for the others
func seedingOrder(names []string, roster []shared.Team) ([]shared.Team, error) {
	first, err := logic.ResolveTeams(names, roster)
	if err != nil {
		return nil, err
	}
	placed := make(map[shared.TeamID]bool, len(first))
	for _, t := range first {
		placed[t.ID] = true
	}
	ordered := append([]shared.Team{}, first...)
	for _, t := range roster {
		if !placed[t.ID] {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func requireAdmin(session shared.Session) error {
	if !session.Admin {
		return shared.ErrUnauthorized
	}
	return nil
}

// IsUserError reports whether err should be shown to the user as is
func IsUserError(err error) bool {
	return errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrMatchNotFound)
}

// Close releases the store connection
func (a *API) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}

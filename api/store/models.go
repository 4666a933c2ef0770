/* models.go
 * This file contain the structs and helper functions that relate to DB objects
 * Authors: Zachary Bower
 */

package store

import (
	"llaves-bot/api/shared"
	"time"
)

// MatchRecord represents the way a match is stored in the DB
type MatchRecord struct {
	ID          int64          `bson:"_id"`
	Cycle       shared.Cycle   `bson:"cycle"`
	Round       int            `bson:"round"`
	Position    *int           `bson:"bracket_position,omitempty"`
	Team1ID     *shared.TeamID `bson:"team1_id"`
	Team2ID     *shared.TeamID `bson:"team2_id"`
	WinnerID    *shared.TeamID `bson:"winner_id"`
	IsBye       bool           `bson:"is_bye"`
	Team1Sets   int            `bson:"team1_sets"`
	Team2Sets   int            `bson:"team2_sets"`
	Score       string         `bson:"score"`
	CompletedAt *time.Time     `bson:"completed_at"`
}

// counter holds the last id handed out for a collection
type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// ToMatch converts a record into a match, attaching team snapshots found in teams
func ToMatch(record MatchRecord, teams map[shared.TeamID]shared.Team) shared.Match {
	m := shared.Match{
		ID:          record.ID,
		Cycle:       record.Cycle,
		Round:       record.Round,
		Position:    record.Position,
		Team1ID:     nonEmpty(record.Team1ID),
		Team2ID:     nonEmpty(record.Team2ID),
		WinnerID:    nonEmpty(record.WinnerID),
		IsBye:       record.IsBye,
		Team1Sets:   record.Team1Sets,
		Team2Sets:   record.Team2Sets,
		Score:       record.Score,
		CompletedAt: record.CompletedAt,
	}
	m.Team1 = snapshot(m.Team1ID, teams)
	m.Team2 = snapshot(m.Team2ID, teams)
	return m
}

// NewMatchRecord builds the record stored for a slot
func NewMatchRecord(id int64, cycle shared.Cycle, round int, position int, fields shared.MatchFields) MatchRecord {
	pos := position
	return MatchRecord{
		ID:          id,
		Cycle:       cycle,
		Round:       round,
		Position:    &pos,
		Team1ID:     fields.Team1ID,
		Team2ID:     fields.Team2ID,
		WinnerID:    fields.WinnerID,
		IsBye:       fields.IsBye,
		Team1Sets:   fields.Team1Sets,
		Team2Sets:   fields.Team2Sets,
		Score:       fields.Score,
		CompletedAt: fields.CompletedAt,
	}
}

func nonEmpty(id *shared.TeamID) *shared.TeamID {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

func snapshot(id *shared.TeamID, teams map[shared.TeamID]shared.Team) *shared.Team {
	if id == nil {
		return nil
	}
	team, ok := teams[*id]
	if !ok {
		team = shared.Team{ID: *id, Name: string(*id)}
	}
	return &team
}

// teamIDs collects the distinct team references of a set of records
func teamIDs(records []MatchRecord) []shared.TeamID {
	seen := make(map[shared.TeamID]bool)
	var ids []shared.TeamID
	for _, r := range records {
		for _, id := range []*shared.TeamID{r.Team1ID, r.Team2ID} {
			if id != nil && *id != "" && !seen[*id] {
				seen[*id] = true
				ids = append(ids, *id)
			}
		}
	}
	return ids
}

/* models.go
 * This file contain the structs and helper functions that are shared between sub packages: teams, cycles,
 * matches and the session value handed to every mutating operation
 * Authors: Zachary Bower
 */

package shared

import (
	"fmt"
	"strings"
	"time"
)

// Cycle is one of the two independent brackets run in parallel
type Cycle string

const (
	CycleBasico   Cycle = "basico"
	CycleSuperior Cycle = "superior"
)

// Cycles lists every cycle in display order
var Cycles = []Cycle{CycleBasico, CycleSuperior}

// ParseCycle converts user input into a Cycle. Matching is case insensitive and accepts the accented spelling.
func ParseCycle(s string) (Cycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basico", "básico":
		return CycleBasico, nil
	case "superior":
		return CycleSuperior, nil
	}
	return "", &ValidationError{Field: "cycle", Reason: fmt.Sprintf("unknown cycle '%s'", s)}
}

// Label returns the display name of the cycle
func (c Cycle) Label() string {
	switch c {
	case CycleBasico:
		return "Ciclo Básico"
	case CycleSuperior:
		return "Ciclo Superior"
	}
	return string(c)
}

// TeamID is the opaque identity of a team owned by the roster
type TeamID string

// TBDName is the display name of a placeholder team in a slot that is not resolved yet
const TBDName = "TBD"

type Team struct {
	ID     TeamID `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Course string `json:"course" bson:"course"`
	Cycle  Cycle  `json:"cycle" bson:"cycle"`
}

// TBDTeam returns the placeholder used for undecided slots
func TBDTeam() *Team {
	return &Team{Name: TBDName}
}

// IsTBD reports whether the team is missing or a placeholder
func (t *Team) IsTBD() bool {
	return t == nil || t.ID == "" || t.Name == TBDName
}

// SetScore holds the points of both sides in a single set
type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Match is a single bracket match. Persisted matches carry ID > 0, matches projected in memory carry a
// SyntheticID and IsGenerated instead.
type Match struct {
	ID          int64      `json:"id,omitempty"`
	SyntheticID string     `json:"syntheticId,omitempty"`
	Cycle       Cycle      `json:"cycle"`
	Round       int        `json:"round"`
	Position    *int       `json:"-"` // slot stored with the row, nil when the row was written without one
	Team1ID     *TeamID    `json:"team1Id"`
	Team2ID     *TeamID    `json:"team2Id"`
	Team1       *Team      `json:"team1"`
	Team2       *Team      `json:"team2"`
	WinnerID    *TeamID    `json:"winnerId"`
	IsBye       bool       `json:"isBye"`
	Team1Sets   int        `json:"team1Sets"`
	Team2Sets   int        `json:"team2Sets"`
	Score       string     `json:"score"`
	CompletedAt *time.Time `json:"completedAt"`
	IsGenerated bool       `json:"isGenerated"`
}

// Key returns the identifier shown to users: the persisted id when there is one, else the synthetic id
func (m Match) Key() string {
	if m.ID > 0 {
		return fmt.Sprintf("%d", m.ID)
	}
	return m.SyntheticID
}

// IsDecided reports whether the match has a winner
func (m Match) IsDecided() bool {
	return m.WinnerID != nil && *m.WinnerID != ""
}

// HasOpponent reports whether the second slot is filled
func (m Match) HasOpponent() bool {
	return m.Team2ID != nil && *m.Team2ID != ""
}

// MatchFields are the slot contents written by an upsert
type MatchFields struct {
	Team1ID     *TeamID
	Team2ID     *TeamID
	WinnerID    *TeamID
	IsBye       bool
	Team1Sets   int
	Team2Sets   int
	Score       string
	CompletedAt *time.Time
}

// ResultFields are the result columns written when a match is played
type ResultFields struct {
	WinnerID    *TeamID
	Team1Sets   int
	Team2Sets   int
	Score       string
	CompletedAt *time.Time
}

// Session is the credential handed to every operation that mutates the bracket
type Session struct {
	UserID   string    `json:"userId"`
	Username string    `json:"username"`
	Admin    bool      `json:"admin"`
	IssuedAt time.Time `json:"issuedAt"`
}

type User struct {
	UserID   string
	Username string
}

// TeamRef returns a pointer to a copy of id, or nil for an empty id
func TeamRef(id TeamID) *TeamID {
	if id == "" {
		return nil
	}
	return &id
}

// SameTeam compares two nullable team references
func SameTeam(a, b *TeamID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

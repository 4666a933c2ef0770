/* score.go
 * Contains the score evaluator: turns per-set points into set counts, a winner side and the score summary stored
 * with the match, plus the required-set policy for each cycle
 * Authors: Zachary Bower
 */

package logic

import (
	"fmt"
	"llaves-bot/api/shared"
	"strconv"
	"strings"
)

// WinnerSide is the side that won a match, or SideNone while it is undecided
type WinnerSide int

const (
	SideNone WinnerSide = iota
	SideTeam1
	SideTeam2
)

func (w WinnerSide) String() string {
	switch w {
	case SideTeam1:
		return "team1"
	case SideTeam2:
		return "team2"
	}
	return "none"
}

// Evaluation is the outcome of a sequence of sets
type Evaluation struct {
	Team1Sets int
	Team2Sets int
	Winner    WinnerSide
	Summary   string
}

// FinalFormat holds the number of sets required in the final of each cycle
type FinalFormat struct {
	Basico   int `bson:"basico" json:"basico"`
	Superior int `bson:"superior" json:"superior"`
}

// DefaultFinalFormat is used until a tournament changes it
var DefaultFinalFormat = FinalFormat{Basico: 3, Superior: 5}

// For returns the final set count configured for a cycle
func (f FinalFormat) For(cycle shared.Cycle) int {
	if cycle == shared.CycleSuperior {
		if f.Superior > 0 {
			return f.Superior
		}
		return DefaultFinalFormat.Superior
	}
	if f.Basico > 0 {
		return f.Basico
	}
	return DefaultFinalFormat.Basico
}

// With returns a copy of f with the final of cycle set to sets
func (f FinalFormat) With(cycle shared.Cycle, sets int) FinalFormat {
	if cycle == shared.CycleSuperior {
		f.Superior = sets
	} else {
		f.Basico = sets
	}
	return f
}

// ValidFinalSets reports whether n can be used as a final format
func ValidFinalSets(n int) bool {
	return n >= 1 && n <= 7 && n%2 == 1
}

// RequiredSets returns how many sets decide a match of the given cycle
// Preconditions: Receives the cycle, whether the match is in the cycle's final round, and the final format in use
// Postconditions: Returns the configured final count for finals, else 1 for basico and 3 for superior
func RequiredSets(cycle shared.Cycle, isFinal bool, format FinalFormat) int {
	if isFinal {
		return format.For(cycle)
	}
	if cycle == shared.CycleSuperior {
		return 3
	}
	return 1
}

// Evaluate decides a match from its sets. A set is won by the side with strictly more points, ties count for
// neither side.
// Preconditions: Receives the sets in play order and the number of sets required (0 disables the length check)
// Postconditions: Returns the evaluation, or a validation error for negative points or too many sets
func Evaluate(sets []shared.SetScore, required int) (Evaluation, error) {
	if required > 0 && len(sets) > required {
		return Evaluation{}, shared.Invalid("sets", "got %d sets but the match is played to %d", len(sets), required)
	}

	var eval Evaluation
	for i, set := range sets {
		if set.Team1 < 0 || set.Team2 < 0 {
			return Evaluation{}, shared.Invalid("sets", "set %d has a negative score", i+1)
		}
		switch {
		case set.Team1 > set.Team2:
			eval.Team1Sets++
		case set.Team2 > set.Team1:
			eval.Team2Sets++
		}
	}

	switch {
	case eval.Team1Sets > eval.Team2Sets:
		eval.Winner = SideTeam1
	case eval.Team2Sets > eval.Team1Sets:
		eval.Winner = SideTeam2
	}
	eval.Summary = FormatScore(sets)
	return eval, nil
}

// FormatScore joins the played sets as "a-b, c-d". Sets where nobody scored are left out.
func FormatScore(sets []shared.SetScore) string {
	var parts []string
	for _, set := range sets {
		if set.Team1 > 0 || set.Team2 > 0 {
			parts = append(parts, fmt.Sprintf("%d-%d", set.Team1, set.Team2))
		}
	}
	return strings.Join(parts, ", ")
}

// ParseScore reads a stored score string back into sets. Unreadable numbers count as 0 so that a damaged row
// still renders.
func ParseScore(score string) []shared.SetScore {
	score = strings.TrimSpace(score)
	if score == "" {
		return nil
	}

	var sets []shared.SetScore
	for _, part := range strings.Split(score, ",") {
		points := strings.SplitN(strings.TrimSpace(part), "-", 2)
		set := shared.SetScore{Team1: atoiOrZero(points[0])}
		if len(points) == 2 {
			set.Team2 = atoiOrZero(points[1])
		}
		sets = append(sets, set)
	}
	return sets
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

/* layout.go
 * Bracket geometry: bracket height from round 1, expected size of every round, slot assignment for stored rows,
 * synthetic ids and round titles
 * Authors: Zachary Bower
 */

package bracket

import (
	"fmt"
	"llaves-bot/api/shared"
	"sort"
)

// TotalTeams counts the teams entering round 1: one per bye, two per full match
func TotalTeams(round1 []shared.Match) int {
	total := 0
	for _, m := range round1 {
		if m.HasOpponent() {
			total += 2
		} else {
			total++
		}
	}
	return total
}

// MaxRounds returns ceil(log2(totalTeams)). A lone team still plays in a single round.
func MaxRounds(totalTeams int) int {
	if totalTeams <= 0 {
		return 0
	}
	if totalTeams == 1 {
		return 1
	}
	rounds := 0
	for (1 << rounds) < totalTeams {
		rounds++
	}
	return rounds
}

// RoundSizes returns the expected match count of every round, indexed by round number. Index 0 is unused.
// Preconditions: Receives the number of round 1 matches and the bracket height
// Postconditions: Returns a slice of length maxRounds+1 where each round halves the previous one rounding up
func RoundSizes(round1Count int, maxRounds int) []int {
	if maxRounds <= 0 || round1Count == 0 {
		return []int{0}
	}
	sizes := make([]int, maxRounds+1)
	sizes[1] = round1Count
	for r := 2; r <= maxRounds; r++ {
		sizes[r] = (sizes[r-1] + 1) / 2
	}
	return sizes
}

// heightOf reads the bracket height from the round 1 rows of a cycle
func heightOf(round1 []shared.Match) (int, []int) {
	maxRounds := MaxRounds(TotalTeams(round1))
	return maxRounds, RoundSizes(len(round1), maxRounds)
}

func sortByID(matches []shared.Match) []shared.Match {
	sorted := append([]shared.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// slotsOf keys the stored rows of one round by bracket position. Round 1 is ordered by id. Later rounds are
// created out of order, so their stored position wins and id order only places rows written without one.
// The second return value lists rows that could not be placed.
func slotsOf(matches []shared.Match, round int) (map[int]shared.Match, []shared.Match) {
	sorted := sortByID(matches)
	slots := make(map[int]shared.Match, len(sorted))
	var unplaced []shared.Match

	if round == 1 {
		for i, m := range sorted {
			slots[i] = m
		}
		return slots, nil
	}

	var loose []shared.Match
	for _, m := range sorted {
		if m.Position == nil {
			loose = append(loose, m)
			continue
		}
		if _, taken := slots[*m.Position]; taken {
			unplaced = append(unplaced, m)
			continue
		}
		slots[*m.Position] = m
	}
	for i, m := range loose {
		if _, taken := slots[i]; taken {
			unplaced = append(unplaced, m)
			continue
		}
		slots[i] = m
	}
	return slots, unplaced
}

// isVacant reports whether a stored slot holds no teams and no result
func isVacant(m shared.Match) bool {
	return (m.Team1ID == nil || *m.Team1ID == "") && !m.HasOpponent() && !m.IsDecided()
}

func positionOf(slots map[int]shared.Match, matchID int64) (int, bool) {
	for pos, m := range slots {
		if m.ID == matchID {
			return pos, true
		}
	}
	return 0, false
}

// SyntheticID names a match that only exists in memory
func SyntheticID(cycle shared.Cycle, round int, position int, bye bool) string {
	if bye {
		return fmt.Sprintf("gen-%s-r%d-bye-%d", cycle, round, position)
	}
	return fmt.Sprintf("gen-%s-r%d-p%d", cycle, round, position)
}

// RoundTitle names a round counted back from the final
func RoundTitle(round int, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "FINAL"
	case 1:
		return "SEMIFINALES"
	case 2:
		return "CUARTOS DE FINAL"
	case 3:
		return "OCTAVOS DE FINAL"
	case 4:
		return "DIECISEISAVOS"
	}
	return fmt.Sprintf("Ronda %d", round)
}

/* pairing.go
 * Contains the round 1 pairing generator and the mapping from school courses to cycles
 * Authors: Zachary Bower
 */

package logic

import (
	"llaves-bot/api/shared"
	"strings"
)

var basicoCourses = []string{"1ro A", "1ro B", "1ro C", "2do A", "2do B", "2do C", "3ro A", "3ro B", "3ro C"}

var superiorCourses = []string{"4to 1ra", "4to 2da", "4to 3ra", "5to 1ra", "5to 2da", "5to 3ra", "6to 1ra", "6to 2da", "6to 3ra"}

// Courses returns every valid course in display order
func Courses() []string {
	return append(append([]string{}, basicoCourses...), superiorCourses...)
}

// CycleForCourse classifies a course into its cycle
// Preconditions: Receives a course label, e.g. "2do B"
// Postconditions: Returns the cycle and true, or false if the course is unknown
func CycleForCourse(course string) (shared.Cycle, bool) {
	course = strings.TrimSpace(course)
	for _, c := range basicoCourses {
		if strings.EqualFold(c, course) {
			return shared.CycleBasico, true
		}
	}
	for _, c := range superiorCourses {
		if strings.EqualFold(c, course) {
			return shared.CycleSuperior, true
		}
	}
	return "", false
}

// CanonicalCourse returns the course with its canonical spelling, or "" if unknown
func CanonicalCourse(course string) string {
	for _, c := range Courses() {
		if strings.EqualFold(c, strings.TrimSpace(course)) {
			return c
		}
	}
	return ""
}

// Pairing is one round 1 slot produced by GeneratePairings
type Pairing struct {
	Team1 shared.Team
	Team2 *shared.Team
}

// IsBye reports whether the pairing has no opponent
func (p Pairing) IsBye() bool {
	return p.Team2 == nil
}

// GeneratePairings pairs consecutive teams. An odd team count leaves the last team with a bye.
// Preconditions: Receives the teams of one cycle in seeding order
// Postconditions: Returns the round 1 slots in bracket order
func GeneratePairings(teams []shared.Team) []Pairing {
	pairings := make([]Pairing, 0, (len(teams)+1)/2)
	for i := 0; i < len(teams); i += 2 {
		p := Pairing{Team1: teams[i]}
		if i+1 < len(teams) {
			second := teams[i+1]
			p.Team2 = &second
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// MatchStatus returns the status text shown next to a match
func MatchStatus(m shared.Match) string {
	switch {
	case m.IsBye:
		return "Pase automático"
	case m.IsDecided():
		return "Completado"
	}
	return "Pendiente"
}

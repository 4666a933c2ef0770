/* parser.go
 * Contains the parser for roster documents: a JSON array of {name, course}
 * Authors: Zachary Bower
 */

package external

import (
	"encoding/json"
	"fmt"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"strings"
)

// ParseRoster decodes a roster document. Entries without a name, with an unknown course or repeated within the
// document are skipped and reported.
// Preconditions: Receives the raw JSON
// Postconditions: Returns the teams with their cycle set, or an error if the document is not a JSON array
func ParseRoster(data []byte) (Roster, error) {
	var entries []RosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return Roster{}, &shared.ValidationError{Field: "roster", Reason: fmt.Sprintf("expected a JSON array of {name, course}: %v", err)}
	}

	var roster Roster
	seen := make(map[string]bool)
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			roster.Skipped = append(roster.Skipped, SkippedEntry{Entry: entry, Reason: "missing name"})
			continue
		}
		course := logic.CanonicalCourse(entry.Course)
		cycle, ok := logic.CycleForCourse(course)
		if !ok {
			roster.Skipped = append(roster.Skipped, SkippedEntry{Entry: entry, Reason: fmt.Sprintf("unknown course '%s'", entry.Course)})
			continue
		}
		key := strings.ToLower(name) + "|" + course
		if seen[key] {
			roster.Skipped = append(roster.Skipped, SkippedEntry{Entry: entry, Reason: "duplicate entry"})
			continue
		}
		seen[key] = true
		roster.Teams = append(roster.Teams, shared.Team{Name: name, Course: course, Cycle: cycle})
	}
	return roster, nil
}

/* models.go
 * This file contains the models used by the external package when reading rosters
 * Authors: Zachary Bower
 */

package external

import "llaves-bot/api/shared"

// RosterEntry is one team as written in a roster document
type RosterEntry struct {
	Name   string `json:"name"`
	Course string `json:"course"`
}

// Roster is the outcome of parsing a roster document
type Roster struct {
	Teams   []shared.Team
	Skipped []SkippedEntry
}

// SkippedEntry is a roster entry that was not imported, with the reason
type SkippedEntry struct {
	Entry  RosterEntry
	Reason string
}

/* input_processing.go
 * Contains the logic for processing user input: resolving typed team names against the roster and reading set
 * scores typed as "11-6"
 * Authors: Zachary Bower
 */

package logic

import (
	"fmt"
	"llaves-bot/api/shared"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// CheckTeamNames processes team names from user input and checks if they are valid.
// Preconditions: receives two string slices; one containing the names typed by the user and another that is a list of valid team names
// Postconditions: returns two string slices, a slice of correctly formatted team names and slice of strings containing the invalid team names
func CheckTeamNames(inputTeams []string, validTeams []string) ([]string, []string) {
	var formattedTeamNames []string
	var invalidTeams []string

	lookup := make(map[string]string)
	var validTeamsLower []string
	for _, name := range validTeams {
		lower := strings.ToLower(name)
		lookup[lower] = name
		validTeamsLower = append(validTeamsLower, lower)
	}

	for _, team := range inputTeams {
		lowerTeam := strings.ToLower(team)
		fuzzyResults := fuzzy.RankFind(lowerTeam, validTeamsLower)
		if len(fuzzyResults) == 0 {
			invalidTeams = append(invalidTeams, team)
			continue
		}

		// Prefer an exact match, then the best ranked one
		best := ""
		for i := range fuzzyResults {
			if fuzzyResults[i].Target == lowerTeam {
				best = fuzzyResults[i].Target
			}
		}
		if best == "" {
			best = bestRanked(fuzzyResults)
		}
		formattedTeamNames = append(formattedTeamNames, lookup[best])
	}
	return formattedTeamNames, invalidTeams
}

func bestRanked(ranks fuzzy.Ranks) string {
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// ResolveTeams maps typed names to roster teams using CheckTeamNames.
// Preconditions: Receives the typed names and the roster to match against
// Postconditions: Returns the matched teams in input order, or a validation error listing the names that matched
// nothing or matched a team twice
func ResolveTeams(inputs []string, roster []shared.Team) ([]shared.Team, error) {
	names := make([]string, 0, len(roster))
	byName := make(map[string]shared.Team, len(roster))
	for _, team := range roster {
		names = append(names, team.Name)
		byName[team.Name] = team
	}

	matched, invalid := CheckTeamNames(cleanQuotes(inputs), names)
	if len(invalid) > 0 {
		var str strings.Builder
		str.WriteString("the following team names are invalid:")
		for i := range invalid {
			str.WriteString(fmt.Sprintf(" '%s'", invalid[i]))
		}
		return nil, &shared.ValidationError{Field: "teams", Reason: str.String()}
	}

	seen := make(map[string]bool)
	teams := make([]shared.Team, 0, len(matched))
	for _, name := range matched {
		if seen[name] {
			return nil, shared.Invalid("teams", "'%s' entered multiple times", name)
		}
		seen[name] = true
		teams = append(teams, byName[name])
	}
	return teams, nil
}

// ParseSetArgs reads set scores typed as separate "a-b" arguments, e.g. ["11-6", "9-11"]
// Preconditions: Receives the raw arguments
// Postconditions: Returns the sets in order, or a validation error naming the first bad argument
func ParseSetArgs(args []string) ([]shared.SetScore, error) {
	var sets []shared.SetScore
	for _, arg := range args {
		arg = strings.TrimSuffix(strings.TrimSpace(arg), ",")
		if arg == "" {
			continue
		}
		points := strings.Split(arg, "-")
		if len(points) != 2 {
			return nil, shared.Invalid("sets", "'%s' is not a set score, use the form 11-6", arg)
		}
		t1, err1 := strconv.Atoi(points[0])
		t2, err2 := strconv.Atoi(points[1])
		if err1 != nil || err2 != nil {
			return nil, shared.Invalid("sets", "'%s' is not a set score, use the form 11-6", arg)
		}
		sets = append(sets, shared.SetScore{Team1: t1, Team2: t2})
	}
	if len(sets) == 0 {
		return nil, shared.Invalid("sets", "at least one set score is required")
	}
	return sets, nil
}

func cleanQuotes(inputs []string) []string {
	out := make([]string, len(inputs))
	for i := range inputs {
		s := strings.ReplaceAll(inputs[i], "\"", "")
		s = strings.ReplaceAll(s, "“", "")
		s = strings.ReplaceAll(s, "”", "")
		out[i] = s
	}
	return out
}

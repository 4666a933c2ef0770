/* format.go
 * Contains the text rendering of brackets and results for discord messages
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"llaves-bot/api/bracket"
	"llaves-bot/api/shared"
	"strings"
)

// discordLimit is the maximum length of a discord message
const discordLimit = 2000

func teamLabel(team *shared.Team) string {
	if team.IsTBD() {
		return shared.TBDName
	}
	if team.Course == "" {
		return team.Name
	}
	return fmt.Sprintf("%s (%s)", team.Name, team.Course)
}

// formatMatch renders one line of a bracket, e.g. "`#3` **Aguilas (1ro A)** vs Buhos (1ro A) · 11-6 · Completado"
func formatMatch(m bracket.MatchView) string {
	id := "`--`"
	if !m.IsGenerated && m.ID > 0 {
		id = fmt.Sprintf("`#%d`", m.ID)
	}

	team1 := teamLabel(m.Team1)
	if m.IsWinner1 {
		team1 = "**" + team1 + "**"
	}
	if m.HasNoOpponent {
		return fmt.Sprintf("%s %s · %s\n", id, team1, m.Status)
	}

	team2 := teamLabel(m.Team2)
	if m.IsWinner2 {
		team2 = "**" + team2 + "**"
	}
	line := fmt.Sprintf("%s %s vs %s", id, team1, team2)
	if m.Score != "" {
		line += " · " + m.Score
	}
	return fmt.Sprintf("%s · %s\n", line, m.Status)
}

// formatBracket renders every round of a cycle
func formatBracket(cycle shared.Cycle, rounds []bracket.Round) string {
	var res strings.Builder
	res.WriteString(fmt.Sprintf("**%s**\n", cycle.Label()))
	if len(rounds) == 0 {
		res.WriteString("Todavía no hay llaves para este ciclo\n")
		return res.String()
	}
	for _, r := range rounds {
		res.WriteString(fmt.Sprintf("\n__%s__ (al mejor de %d)\n", r.Title, requiredSets(r)))
		for _, m := range r.Matches {
			res.WriteString(formatMatch(m))
		}
	}
	return res.String()
}

func requiredSets(r bracket.Round) int {
	if len(r.Matches) == 0 {
		return 0
	}
	return r.Matches[0].RequiredSets
}

func formatStep(step bracket.Step) string {
	switch step.Kind {
	case bracket.StepMatch:
		return fmt.Sprintf("- Ronda %d: partido `#%d` listo para jugarse\n", step.Round, step.MatchID)
	case bracket.StepBye:
		return fmt.Sprintf("- Ronda %d: pase automático `#%d`\n", step.Round, step.MatchID)
	case bracket.StepClear:
		return fmt.Sprintf("- Ronda %d: partido `#%d` vuelve a quedar sin equipos\n", step.Round, step.MatchID)
	}
	return fmt.Sprintf("- Ronda %d: esperando al rival\n", step.Round)
}

// splitMessage breaks text into chunks that fit in a discord message, cutting at line ends
func splitMessage(text string) []string {
	if len(text) <= discordLimit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > discordLimit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			chunks = append(chunks, line[:discordLimit])
			line = line[discordLimit:]
		}
		if cur.Len()+len(line) > discordLimit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func send(session DiscordSession, channelID string, text string) {
	for _, chunk := range splitMessage(text) {
		if _, err := session.ChannelMessageSend(channelID, chunk); err != nil {
			fmt.Println("failed to send message:", err)
			return
		}
	}
}

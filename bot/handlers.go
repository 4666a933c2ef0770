/* handlers.go
 * Contains testable handler methods that accept DiscordSession interface
 * Authors: Zachary Bower
 */

package bot

import (
	"fmt"
	"llaves-bot/api/api"
	"llaves-bot/api/logic"
	"llaves-bot/api/shared"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
)

// args splits a message on spaces, keeping quoted text together
func args(content string) []string {
	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	split, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		return strings.Fields(content)
	}
	parts := split[:0]
	for _, p := range split {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// reply sends the text of user errors back to the channel and logs anything else
func reply(session DiscordSession, message *discordgo.MessageCreate, err error, action string) {
	if api.IsUserError(err) {
		send(session, message.ChannelID, fmt.Sprintf("No se pudo %s: %s", action, err))
		return
	}
	log.Printf("%s failed: %v", action, err)
	send(session, message.ChannelID, fmt.Sprintf("Ocurrió un error inesperado al %s", action))
}

func user(message *discordgo.MessageCreate) shared.User {
	return shared.User{UserID: message.Author.ID, Username: message.Author.Username}
}

// helpMessageHandler handles the $help command with a DiscordSession interface
func (b *Bot) helpMessageHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Llaves Bot v1.0\n")
	res.WriteString("`$bracket <ciclo>`: muestra las llaves del ciclo (basico o superior). Los partidos con `--` todavía no existen\n")
	res.WriteString("`$teams [ciclo]`: lista los equipos inscriptos\n")
	res.WriteString("`$stats`: muestra la cantidad de equipos y partidos jugados\n")
	res.WriteString("Comandos de administración:\n")
	res.WriteString("`$login <contraseña>`: inicia sesión como administrador\n")
	res.WriteString("`$logout`: cierra la sesión\n")
	res.WriteString("`$result <partido> <a-b> ...`: carga los sets de un partido, e.g. `$result 3 11-6 9-11 11-8`\n")
	res.WriteString("`$format <ciclo> <sets>`: cambia a cuántos sets se juega la final (1, 3, 5 o 7)\n")
	res.WriteString("`$seed <ciclo> [force] [equipo ...]`: arma la primera ronda con los equipos inscriptos. `force` reemplaza las llaves existentes. Los equipos nombrados se emparejan primero, en ese orden. Los nombres con espacios van entre \" (e.g. \"Los Pumas\")\n")
	send(session, message.ChannelID, res.String())
}

// bracketHandler handles the $bracket command with a DiscordSession interface
func (b *Bot) bracketHandler(session DiscordSession, message *discordgo.MessageCreate) {
	parts := args(message.Content)
	if len(parts) < 2 {
		send(session, message.ChannelID, "Uso: `$bracket <basico|superior>`")
		return
	}
	cycle, err := shared.ParseCycle(parts[1])
	if err != nil {
		reply(session, message, err, "mostrar las llaves")
		return
	}

	ctx, cancel := b.context()
	defer cancel()
	rounds, err := b.APIPtr.GetBracket(ctx, cycle)
	if err != nil {
		reply(session, message, err, "mostrar las llaves")
		return
	}
	send(session, message.ChannelID, formatBracket(cycle, rounds))
}

// teamsHandler handles the $teams command with a DiscordSession interface
func (b *Bot) teamsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	var cycle shared.Cycle
	if parts := args(message.Content); len(parts) > 1 {
		parsed, err := shared.ParseCycle(parts[1])
		if err != nil {
			reply(session, message, err, "listar los equipos")
			return
		}
		cycle = parsed
	}

	ctx, cancel := b.context()
	defer cancel()
	teams, err := b.APIPtr.GetTeams(ctx, cycle)
	if err != nil {
		reply(session, message, err, "listar los equipos")
		return
	}
	if len(teams) == 0 {
		send(session, message.ChannelID, "No hay equipos inscriptos")
		return
	}

	var res strings.Builder
	res.WriteString("Equipos inscriptos:\n")
	for _, team := range teams {
		res.WriteString(fmt.Sprintf("- %s (%s, %s)\n", team.Name, team.Course, team.Cycle.Label()))
	}
	send(session, message.ChannelID, res.String())
}

// statsHandler handles the $stats command with a DiscordSession interface
func (b *Bot) statsHandler(session DiscordSession, message *discordgo.MessageCreate) {
	ctx, cancel := b.context()
	defer cancel()
	stats, err := b.APIPtr.GetStats(ctx)
	if err != nil {
		reply(session, message, err, "calcular las estadísticas")
		return
	}
	send(session, message.ChannelID, fmt.Sprintf(
		"Equipos: %d (%d básico, %d superior)\nPartidos: %d, completados: %d\n",
		stats.TotalTeams, stats.BasicoTeams, stats.SuperiorTeams, stats.TotalMatches, stats.CompletedMatches))
}

// loginHandler handles the $login command with a DiscordSession interface
func (b *Bot) loginHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.allow(message.Author.ID) {
		send(session, message.ChannelID, "Demasiados intentos, probá de nuevo en un minuto")
		return
	}
	parts := args(message.Content)
	if len(parts) < 2 {
		send(session, message.ChannelID, "Uso: `$login <contraseña>`")
		return
	}

	s, err := b.APIPtr.Login(user(message), parts[1])
	if err != nil {
		reply(session, message, err, "iniciar sesión")
		return
	}
	s.IssuedAt = b.now()
	b.storeSession(s)
	send(session, message.ChannelID, fmt.Sprintf("%s inició sesión como administrador", message.Author.Username))
}

// logoutHandler handles the $logout command with a DiscordSession interface
func (b *Bot) logoutHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.dropSession(message.Author.ID) {
		send(session, message.ChannelID, "No había una sesión abierta")
		return
	}
	send(session, message.ChannelID, fmt.Sprintf("%s cerró sesión", message.Author.Username))
}

// resultHandler handles the $result command with a DiscordSession interface
func (b *Bot) resultHandler(session DiscordSession, message *discordgo.MessageCreate) {
	if !b.allow(message.Author.ID) {
		send(session, message.ChannelID, "Demasiados resultados seguidos, probá de nuevo en un minuto")
		return
	}
	parts := args(message.Content)
	if len(parts) < 3 {
		send(session, message.ChannelID, "Uso: `$result <partido> <a-b> ...`")
		return
	}
	matchID, err := strconv.ParseInt(strings.TrimPrefix(parts[1], "#"), 10, 64)
	if err != nil || matchID <= 0 {
		send(session, message.ChannelID, fmt.Sprintf("'%s' no es un número de partido", parts[1]))
		return
	}
	sets, err := logic.ParseSetArgs(parts[2:])
	if err != nil {
		reply(session, message, err, "cargar el resultado")
		return
	}

	ctx, cancel := b.context()
	defer cancel()
	outcome, err := b.APIPtr.SubmitResult(ctx, b.session(message.Author.ID), matchID, sets)
	if outcome.Match.ID > 0 {
		b.invalidate(ctx, outcome.Match.Cycle)
	}
	if err != nil {
		reply(session, message, err, "cargar el resultado")
		return
	}

	m := outcome.Match
	var res strings.Builder
	res.WriteString(fmt.Sprintf("Partido `#%d`: %s %s %s\n", m.ID, teamLabel(m.Team1), m.Score, teamLabel(m.Team2)))
	switch outcome.Evaluation.Winner {
	case logic.SideTeam1:
		res.WriteString(fmt.Sprintf("Ganador: %s\n", teamLabel(m.Team1)))
	case logic.SideTeam2:
		res.WriteString(fmt.Sprintf("Ganador: %s\n", teamLabel(m.Team2)))
	default:
		res.WriteString("Partido sin definir, se guardó el marcador\n")
	}
	for _, step := range outcome.Steps {
		res.WriteString(formatStep(step))
	}
	send(session, message.ChannelID, res.String())
}

// formatHandler handles the $format command with a DiscordSession interface
func (b *Bot) formatHandler(session DiscordSession, message *discordgo.MessageCreate) {
	parts := args(message.Content)
	if len(parts) < 3 {
		send(session, message.ChannelID, "Uso: `$format <ciclo> <sets>`")
		return
	}
	cycle, err := shared.ParseCycle(parts[1])
	if err != nil {
		reply(session, message, err, "cambiar el formato")
		return
	}
	sets, err := strconv.Atoi(parts[2])
	if err != nil {
		send(session, message.ChannelID, fmt.Sprintf("'%s' no es una cantidad de sets", parts[2]))
		return
	}

	ctx, cancel := b.context()
	defer cancel()
	if err := b.APIPtr.SetFinalFormat(ctx, b.session(message.Author.ID), cycle, sets); err != nil {
		reply(session, message, err, "cambiar el formato")
		return
	}
	b.invalidate(ctx, cycle)
	send(session, message.ChannelID, fmt.Sprintf("La final de %s se juega al mejor de %d sets", cycle.Label(), sets))
}

// seedHandler handles the $seed command with a DiscordSession interface
func (b *Bot) seedHandler(session DiscordSession, message *discordgo.MessageCreate) {
	parts := args(message.Content)
	if len(parts) < 2 {
		send(session, message.ChannelID, "Uso: `$seed <ciclo> [force] [equipo ...]`")
		return
	}
	cycle, err := shared.ParseCycle(parts[1])
	if err != nil {
		reply(session, message, err, "armar las llaves")
		return
	}
	rest := parts[2:]
	force := len(rest) > 0 && strings.EqualFold(rest[0], "force")
	if force {
		rest = rest[1:]
	}

	ctx, cancel := b.context()
	defer cancel()
	round1, err := b.APIPtr.SeedCycleOrdered(ctx, b.session(message.Author.ID), cycle, force, rest)
	b.invalidate(ctx, cycle)
	if err != nil {
		reply(session, message, err, "armar las llaves")
		return
	}
	send(session, message.ChannelID, fmt.Sprintf("Llaves de %s armadas: %d partidos en la primera ronda", cycle.Label(), len(round1)))
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author.ID == botUserID {
		return
	}

	command := ""
	if fields := strings.Fields(message.Content); len(fields) > 0 {
		command = fields[0]
	}

	// Route to appropriate handler
	switch {
	case !startsWith(command, "$"):
		return

	case command == "$help":
		b.helpMessageHandler(session, message)

	case command == "$bracket":
		b.bracketHandler(session, message)

	case command == "$teams":
		b.teamsHandler(session, message)

	case command == "$stats":
		b.statsHandler(session, message)

	case command == "$login":
		b.loginHandler(session, message)

	case command == "$logout":
		b.logoutHandler(session, message)

	case command == "$result":
		b.resultHandler(session, message)

	case command == "$format":
		b.formatHandler(session, message)

	case command == "$seed":
		b.seedHandler(session, message)
	}
}

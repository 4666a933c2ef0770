/* handlers_test.go
 * Contains unit tests for bot command handlers using mock Discord session
 * Authors: Zachary Bower
 */

package bot

import (
	"errors"
	"io"
	"llaves-bot/api/api"
	"llaves-bot/api/shared"
	"log/slog"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "secreto"

// createTestBot creates a Bot instance with an API over an in-memory store holding four basico teams
func createTestBot(t *testing.T) (*Bot, *api.MockStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	mockStore := api.NewMockStore()
	mockStore.AddTeams(
		shared.Team{Name: "Aguilas", Course: "1ro A", Cycle: shared.CycleBasico},
		shared.Team{Name: "Buhos", Course: "1ro A", Cycle: shared.CycleBasico},
		shared.Team{Name: "Condores", Course: "1ro A", Cycle: shared.CycleBasico},
		shared.Team{Name: "Delfines", Course: "1ro A", Cycle: shared.CycleBasico},
	)

	apiPtr := api.New(mockStore, api.Options{
		AdminPasswordHash: string(hash),
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	bot, err := NewBot("test_token", apiPtr, 20)
	require.NoError(t, err)
	return bot, mockStore
}

// createMockMessage creates a mock Discord message for testing
func createMockMessage(content, userID, username, channelID string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			Content:   content,
			ChannelID: channelID,
			Author: &discordgo.User{
				ID:       userID,
				Username: username,
			},
		},
	}
}

// run routes content through newMessageHandler as user123 and returns everything the bot sent
func run(bot *Bot, content string) string {
	mockSession := NewMockDiscordSession()
	bot.newMessageHandler(mockSession, createMockMessage(content, "user123", "Profe", "channel123"), "bot999")
	return mockSession.AllContent()
}

func loginAndSeed(t *testing.T, bot *Bot) {
	t.Helper()
	require.Contains(t, run(bot, "$login "+testPassword), "inició sesión")
	require.Contains(t, run(bot, "$seed basico"), "2 partidos")
}

// region routing tests

func TestNewMessageHandler_IgnoresBot(t *testing.T) {
	bot, _ := createTestBot(t)
	mockSession := NewMockDiscordSession()

	bot.newMessageHandler(mockSession, createMockMessage("$help", "bot999", "Bot", "channel123"), "bot999")

	assert.Empty(t, mockSession.SentMessages)
}

func TestNewMessageHandler_Routing(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"help", "$help", "Llaves Bot"},
		{"bracket without cycle", "$bracket", "Uso: `$bracket"},
		{"empty bracket", "$bracket superior", "Todavía no hay llaves"},
		{"unknown cycle", "$bracket primaria", "unknown cycle"},
		{"teams", "$teams basico", "Aguilas (1ro A, Ciclo Básico)"},
		{"stats", "$stats", "Equipos: 4 (4 básico, 0 superior)"},
		{"logout without login", "$logout", "No había una sesión abierta"},
		{"result without admin", "$result 1 11-6", "admin session required"},
		{"seed without admin", "$seed basico", "admin session required"},
		{"format usage", "$format basico", "Uso: `$format"},
		{"bad match number", "$result abc 11-6", "no es un número de partido"},
		{"bad set", "$result 1 once-seis", "not a set score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, _ := createTestBot(t)

			assert.Contains(t, run(bot, tt.content), tt.expected)
		})
	}
}

func TestNewMessageHandler_UnknownCommand(t *testing.T) {
	bot, _ := createTestBot(t)

	assert.Empty(t, run(bot, "$helpme"))
	assert.Empty(t, run(bot, "hola a todos"))
}

func TestSendError_StopsAfterFailure(t *testing.T) {
	bot, _ := createTestBot(t)
	mockSession := NewMockDiscordSession()
	mockSession.ErrorToReturn = errors.New("discord down")

	bot.helpMessageHandler(mockSession, createMockMessage("$help", "user123", "Profe", "channel123"))

	assert.Empty(t, mockSession.SentMessages)
}

// endregion

// region login tests

func TestLogin(t *testing.T) {
	bot, _ := createTestBot(t)

	assert.Contains(t, run(bot, "$login otra"), "wrong password")
	assert.False(t, bot.session("user123").Admin)

	assert.Contains(t, run(bot, "$login "+testPassword), "Profe inició sesión")
	assert.True(t, bot.session("user123").Admin)

	assert.Contains(t, run(bot, "$logout"), "cerró sesión")
	assert.False(t, bot.session("user123").Admin)
}

func TestLogin_RateLimited(t *testing.T) {
	bot, _ := createTestBot(t)
	bot.ratePerMinute = 1

	run(bot, "$login otra")

	assert.Contains(t, run(bot, "$login "+testPassword), "Demasiados intentos")
}

// endregion

// region bracket flow tests

func TestSeedAndBracket(t *testing.T) {
	bot, _ := createTestBot(t)
	loginAndSeed(t, bot)

	res := run(bot, "$bracket basico")

	assert.Contains(t, res, "**Ciclo Básico**")
	assert.Contains(t, res, "__SEMIFINALES__ (al mejor de 1)")
	assert.Contains(t, res, "`#1` Aguilas (1ro A) vs Buhos (1ro A) · Pendiente")
	assert.Contains(t, res, "__FINAL__ (al mejor de 3)")
	assert.Contains(t, res, "`--` TBD vs TBD")

	assert.Contains(t, run(bot, "$seed basico"), "force")
	assert.Contains(t, run(bot, "$seed basico force Delfines Buhos"), "2 partidos")
	assert.Contains(t, run(bot, "$bracket basico"), "Delfines (1ro A) vs Buhos (1ro A) · Pendiente")
}

func TestResult_AdvancesWinner(t *testing.T) {
	bot, mockStore := createTestBot(t)
	loginAndSeed(t, bot)

	res := run(bot, "$result 1 11-6")
	assert.Contains(t, res, "Ganador: Aguilas (1ro A)")
	assert.Contains(t, res, "esperando al rival")

	res = run(bot, "$result #2 4-11")
	assert.Contains(t, res, "Ganador: Delfines (1ro A)")
	assert.Contains(t, res, "Ronda 2: partido `#3` listo para jugarse")

	res = run(bot, "$bracket basico")
	assert.Contains(t, res, "`#3` Aguilas (1ro A) vs Delfines (1ro A) · Pendiente")
	assert.Contains(t, res, "**Aguilas (1ro A)** vs Buhos (1ro A) · 11-6 · Completado")

	res = run(bot, "$result 3 11-9 8-11 11-2")
	assert.Contains(t, res, "Ganador: Aguilas (1ro A)")
	assert.Equal(t, "11-9, 8-11, 11-2", mockStore.Matches[3].Score)
}

func TestResult_Undecided(t *testing.T) {
	bot, _ := createTestBot(t)
	loginAndSeed(t, bot)

	res := run(bot, "$result 1 10-10")

	assert.Contains(t, res, "Partido sin definir")
}

func TestResult_StoreFailure(t *testing.T) {
	bot, mockStore := createTestBot(t)
	loginAndSeed(t, bot)
	mockStore.UpdateMatchResultError = shared.ErrStoreUnavailable

	res := run(bot, "$result 1 11-6")

	assert.Contains(t, res, "Ocurrió un error inesperado")
	assert.False(t, strings.Contains(res, "unavailable"))
}

func TestFormat_ChangesFinal(t *testing.T) {
	bot, _ := createTestBot(t)
	loginAndSeed(t, bot)

	assert.Contains(t, run(bot, "$format basico 5"), "al mejor de 5 sets")
	assert.Contains(t, run(bot, "$bracket basico"), "__FINAL__ (al mejor de 5)")
	assert.Contains(t, run(bot, "$format basico 4"), "odd number")
	assert.Contains(t, run(bot, "$format basico cinco"), "no es una cantidad de sets")
}

// endregion

// region format tests

func TestSplitMessage(t *testing.T) {
	line := strings.Repeat("a", 99) + "\n"
	text := strings.Repeat(line, 45)

	chunks := splitMessage(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), discordLimit)
	}
}

func TestSplitMessage_LongLine(t *testing.T) {
	text := strings.Repeat("b", discordLimit+10)

	chunks := splitMessage(text)

	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], discordLimit)
	assert.Len(t, chunks[1], 10)
}

// endregion

/* bot_command_test.go
 * Contains unit tests for bot.go
 * Authors: Zachary Bower
 */

package bot

import (
	"llaves-bot/api/api"
	"llaves-bot/api/shared"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Create a mock API for testing
func createMockAPI() *api.API {
	return api.New(api.NewMockStore(), api.Options{})
}

// region NewBot tests

func TestNewBot_Success(t *testing.T) {
	apiPtr := createMockAPI()
	bot, err := NewBot("test_token", apiPtr, 5)

	if err != nil {
		t.Errorf("Expected no error, got: %s", err.Error())
	}

	if bot.BotToken != "test_token" {
		t.Errorf("Expected bot token 'test_token', got '%s'", bot.BotToken)
	}

	if bot.APIPtr != apiPtr {
		t.Error("API pointer not set correctly")
	}
}

func TestNewBot_EmptyToken(t *testing.T) {
	_, err := NewBot("", createMockAPI(), 5)

	if err == nil {
		t.Error("Expected error for empty bot token, got nil")
	}

	if !strings.Contains(err.Error(), "botToken is required") {
		t.Errorf("Expected error about botToken, got: %s", err.Error())
	}
}

func TestNewBot_DefaultRate(t *testing.T) {
	bot, err := NewBot("test_token", createMockAPI(), 0)

	assert.NoError(t, err)
	assert.Equal(t, 20, bot.ratePerMinute)
}

// endregion

// region session tests

func TestSession_Expires(t *testing.T) {
	bot, _ := NewBot("test_token", createMockAPI(), 5)
	start := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	bot.now = func() time.Time { return start }
	bot.storeSession(shared.Session{UserID: "u1", Admin: true, IssuedAt: start})

	assert.True(t, bot.session("u1").Admin)

	bot.now = func() time.Time { return start.Add(sessionTTL + time.Minute) }
	assert.False(t, bot.session("u1").Admin)
	assert.False(t, bot.dropSession("u1"))
}

func TestAllow_LimitsPerUser(t *testing.T) {
	bot, _ := NewBot("test_token", createMockAPI(), 2)
	now := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	bot.now = func() time.Time { return now }

	assert.True(t, bot.allow("u1"))
	assert.True(t, bot.allow("u1"))
	assert.False(t, bot.allow("u1"))
	assert.True(t, bot.allow("u2"))

	now = now.Add(time.Minute)
	assert.True(t, bot.allow("u1"))
}

// endregion

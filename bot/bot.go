/* bot.go
 * Contains the Bot struct and the state it keeps between messages: admin sessions and per user rate limits.
 * Requires a discord bot token and ApiPtr, both of which are passed in from main.go
 * Authors: Zachary Bower
 */

package bot

import (
	"context"
	"fmt"
	"llaves-bot/api/api"
	"llaves-bot/api/shared"
	"llaves-bot/cache"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sessionTTL is how long a $login stays valid
const sessionTTL = 12 * time.Hour

// commandTimeout bounds every API call made while handling a message
const commandTimeout = 15 * time.Second

type Bot struct {
	BotToken string
	APIPtr   *api.API
	// Cache is invalidated whenever a command changes a bracket, may be nil
	Cache *cache.Cache

	mu            sync.Mutex
	sessions      map[string]shared.Session
	limiters      map[string]*rate.Limiter
	ratePerMinute int
	now           func() time.Time
}

// NewBot creates a bot that handles messages with apiPtr
// Preconditions: Receives the discord token, the API and how many $result or $login commands a user may send per minute
// Postconditions: Returns the bot, or an error if the token is empty
func NewBot(botToken string, apiPtr *api.API, ratePerMinute int) (*Bot, error) {
	if botToken == "" {
		return nil, fmt.Errorf("botToken is required but none was provided")
	}
	if ratePerMinute <= 0 {
		ratePerMinute = 20
	}

	return &Bot{
		BotToken:      botToken,
		APIPtr:        apiPtr,
		sessions:      make(map[string]shared.Session),
		limiters:      make(map[string]*rate.Limiter),
		ratePerMinute: ratePerMinute,
		now:           time.Now,
	}, nil
}

func (b *Bot) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

// session returns the admin session of a user, or an empty session if they are not logged in or it expired
func (b *Bot) session(userID string) shared.Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		return shared.Session{}
	}
	if b.now().Sub(s.IssuedAt) > sessionTTL {
		delete(b.sessions, userID)
		return shared.Session{}
	}
	return s
}

func (b *Bot) storeSession(s shared.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[s.UserID] = s
}

func (b *Bot) dropSession(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.sessions[userID]
	delete(b.sessions, userID)
	return ok
}

// allow reports whether a user may run another rate limited command
func (b *Bot) allow(userID string) bool {
	b.mu.Lock()
	limiter, ok := b.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(b.ratePerMinute)), b.ratePerMinute)
		b.limiters[userID] = limiter
	}
	b.mu.Unlock()
	return limiter.AllowN(b.now(), 1)
}

func (b *Bot) invalidate(ctx context.Context, cycle shared.Cycle) {
	if err := b.Cache.InvalidateBracket(ctx, cycle); err != nil {
		log.Println("failed to invalidate bracket cache:", err)
	}
}

// startsWith checks if a string starts with a substring
// Preconditions: Receives two strings
// Postconditions: Returns true if inputString begins with substring
func startsWith(inputString string, substring string) bool {
	return strings.HasPrefix(inputString, substring)
}

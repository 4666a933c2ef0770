/* config.go
 * Reads the bot configuration from the environment. main loads .env with godotenv before calling Load.
 * Authors: Zachary Bower
 */

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DiscordProdToken string
	DiscordBetaToken string

	MongoURI string
	MongoDB  string

	AdminPasswordHash string

	HTTPAddr       string
	WebTokenSecret string
	CORSOrigins    []string
	RedisURL       string
	CacheTTL       time.Duration

	// RosterSource is re-imported on RosterRefreshCron when both are set
	RosterSource      string
	RosterRefreshCron string

	FinalSetsBasico     int
	FinalSetsSuperior   int
	ResultRatePerMinute int
}

// Load builds the configuration from environment variables, using defaults for unset values
func Load() *Config {
	return &Config{
		DiscordProdToken:    getEnv("DISCORD_PROD_TOKEN", ""),
		DiscordBetaToken:    getEnv("DISCORD_BETA_TOKEN", ""),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "llaves"),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		WebTokenSecret:      getEnv("WEB_TOKEN_SECRET", ""),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"*"}),
		RosterSource:        getEnv("ROSTER_SOURCE", ""),
		RosterRefreshCron:   getEnv("ROSTER_REFRESH_CRON", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		CacheTTL:            time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,
		FinalSetsBasico:     getEnvInt("FINAL_SETS_BASICO", 3),
		FinalSetsSuperior:   getEnvInt("FINAL_SETS_SUPERIOR", 5),
		ResultRatePerMinute: getEnvInt("RESULT_RATE_PER_MINUTE", 20),
	}
}

// DiscordToken returns the beta token when beta is set, else the production token
func (c *Config) DiscordToken(beta bool) string {
	if beta {
		return c.DiscordBetaToken
	}
	return c.DiscordProdToken
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvList reads a comma separated list, ignoring blank entries
func getEnvList(key string, defaultValue []string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}

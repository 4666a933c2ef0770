/* models.go
 * Contains the web server configuration and the JSON bodies of the HTTP API
 * Authors: Zachary Bower
 */

package web

import (
	"llaves-bot/api/api"
	"llaves-bot/api/bracket"
	"llaves-bot/api/shared"
	"llaves-bot/cache"
	"llaves-bot/metrics"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the configuration for the web server
type Config struct {
	Addr    string
	API     *api.API
	Cache   *cache.Cache
	Metrics *metrics.Collectors
	// Gatherer is served on /metrics, prometheus.DefaultGatherer when nil
	Gatherer prometheus.Gatherer
	// TokenSecret signs login tokens, a random secret is used when empty
	TokenSecret string
	// AllowedOrigins are the browser origins allowed to call the API
	AllowedOrigins []string
}

// Server is the HTTP server for the bracket viewer and the admin result form
type Server struct {
	api      *api.API
	cache    *cache.Cache
	metrics  *metrics.Collectors
	gatherer prometheus.Gatherer
	origins  []string
	secret   []byte
	now      func() time.Time
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type resultRequest struct {
	Sets []shared.SetScore `json:"sets"`
}

type resultResponse struct {
	Match  shared.Match   `json:"match"`
	Winner string         `json:"winner"`
	Steps  []bracket.Step `json:"steps"`
}

type errorResponse struct {
	Error string `json:"error"`
}

/* metrics.go
 * Prometheus collectors for result submissions, bracket advancement and the bracket cache
 * Authors: Zachary Bower
 */

package metrics

import (
	"llaves-bot/api/bracket"
	"llaves-bot/api/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collectors struct {
	ResultsSubmitted *prometheus.CounterVec
	Advancements     *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		ResultsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "llaves_results_submitted_total",
			Help: "Match results written, by cycle.",
		}, []string{"cycle"}),
		Advancements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "llaves_advancements_total",
			Help: "Propagation steps, by cycle and kind (match, bye, stall, clear).",
		}, []string{"cycle", "kind"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "llaves_bracket_cache_total",
			Help: "Bracket cache lookups, by result (hit, miss).",
		}, []string{"result"}),
	}
}

// ObserveResult counts a submitted result. A nil receiver records nothing.
func (c *Collectors) ObserveResult(cycle shared.Cycle) {
	if c == nil {
		return
	}
	c.ResultsSubmitted.WithLabelValues(string(cycle)).Inc()
}

// ObserveSteps counts propagation steps
func (c *Collectors) ObserveSteps(steps []bracket.Step) {
	if c == nil {
		return
	}
	for _, s := range steps {
		c.Advancements.WithLabelValues(string(s.Cycle), string(s.Kind)).Inc()
	}
}

// ObserveCache counts a cache lookup
func (c *Collectors) ObserveCache(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorefrontCounters tracks peripheral activity counts. Prometheus counters
// are process-wide and reset on restart, which is exactly the semantics these
// analytics counters carry.
type StorefrontCounters struct {
	registrations prometheus.Counter
	searches      prometheus.Counter
}

// NewStorefrontCounters registers the storefront counters on the provided registerer.
func NewStorefrontCounters(reg prometheus.Registerer) *StorefrontCounters {
	if reg == nil {
		return &StorefrontCounters{}
	}
	registrations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_registrations_total",
		Help: "User registrations since process start.",
	})
	searches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_searches_total",
		Help: "Catalog searches since process start.",
	})
	reg.MustRegister(registrations, searches)
	return &StorefrontCounters{
		registrations: registrations,
		searches:      searches,
	}
}

// IncRegistrations increments the registration counter.
func (s *StorefrontCounters) IncRegistrations() {
	if s == nil || s.registrations == nil {
		return
	}
	s.registrations.Inc()
}

// IncSearches increments the search counter.
func (s *StorefrontCounters) IncSearches() {
	if s == nil || s.searches == nil {
		return
	}
	s.searches.Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Authentication metrics. Standalone package so resolvers, facade and HTTP
// layers can all report without import cycles.

var (
	Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcenter_resolutions_total",
		Help: "Identity resolutions by method and outcome",
	}, []string{"method", "outcome"})

	ProviderRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "authcenter_provider_request_seconds",
		Help:    "Outbound identity-provider round trips",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"provider", "call"})
)

// RegisterAuth registers the auth metrics on the given registry (or the
// default one if nil).
func RegisterAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Resolutions, ProviderRequests} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

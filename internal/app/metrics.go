package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, served from /-/metrics by the default registry.
var (
	picksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "verse",
		Name:      "picks_total",
		Help:      "Quotations picked for display.",
	})

	backdropFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "verse",
		Name:      "backdrop_failures_total",
		Help:      "Background image fetches that failed.",
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verse",
		Name:      "admin_logins_total",
		Help:      "Admin login attempts by result.",
	}, []string{"result"})

	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "verse",
		Name:      "collection_mutations_total",
		Help:      "Collection changes by operation.",
	}, []string{"operation"})

	importedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "verse",
		Name:      "imported_quotations_total",
		Help:      "Quotations appended by imports.",
	})
)

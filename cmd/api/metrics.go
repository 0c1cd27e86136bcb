package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "validation",
			Name:      "records_total",
			Help:      "Validated records by country and outcome",
		},
		[]string{"country", "outcome"},
	)

	generationRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "generation",
			Name:      "requested_total",
			Help:      "Numbers requested per country",
		},
		[]string{"country"},
	)

	generationProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "generation",
			Name:      "produced_total",
			Help:      "Numbers produced per country",
		},
		[]string{"country"},
	)

	generationShortfall = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "generation",
			Name:      "shortfall_total",
			Help:      "Requested numbers the plan could not produce, per country",
		},
		[]string{"country"},
	)

	groupsFormed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "grouping",
			Name:      "groups_total",
			Help:      "Groups formed by prefix matching",
		},
	)

	contactsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "npb",
			Subsystem: "grouping",
			Name:      "dropped_contacts_total",
			Help:      "Contacts that matched no generated number",
		},
	)
)

// promCollector feeds the provisioning service's measurements into the
// Prometheus registry.
type promCollector struct{}

func (promCollector) RecordValidation(country, outcome string) {
	validationsTotal.WithLabelValues(country, outcome).Inc()
}

func (promCollector) RecordGeneration(country string, requested, produced int) {
	generationRequested.WithLabelValues(country).Add(float64(requested))
	generationProduced.WithLabelValues(country).Add(float64(produced))
	if produced < requested {
		generationShortfall.WithLabelValues(country).Add(float64(requested - produced))
	}
}

func (promCollector) RecordGrouping(groups, dropped int) {
	groupsFormed.Add(float64(groups))
	contactsDropped.Add(float64(dropped))
}

// metricsHandler returns the Prometheus scrape handler.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}

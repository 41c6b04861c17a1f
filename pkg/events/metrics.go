package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal is the number of routed events by outcome.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketeer_events_total",
			Help: "Total number of routed events",
		},
		[]string{"event", "outcome"},
	)

	// EventDuration is the time taken to handle an event.
	EventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ticketeer_event_duration",
			Help: "Duration of the handling of an event",
		},
		[]string{"event"},
	)
)

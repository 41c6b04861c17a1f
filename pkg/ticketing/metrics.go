package ticketing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicketsCreated is the number of tickets opened.
	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_tickets_created_total",
			Help: "Total number of tickets created",
		},
	)

	// TicketsClosed is the number of tickets archived and closed.
	TicketsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_tickets_closed_total",
			Help: "Total number of tickets closed",
		},
	)

	// DuplicateTickets is the number of creations refused because the author had an open ticket.
	DuplicateTickets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_duplicate_tickets_total",
			Help: "Total number of duplicate ticket creations refused",
		},
	)

	// ChannelDeleteFailures is the number of closed tickets whose channel could not be deleted.
	ChannelDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_channel_delete_failures_total",
			Help: "Total number of ticket channels that could not be deleted",
		},
	)

	// CreationLogFailures is the number of created tickets without a stored creation log.
	CreationLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_creation_log_failures_total",
			Help: "Total number of ticket creation logs that could not be written",
		},
	)
)

package setup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConfigurationsTotal is the number of completed guild configurations.
	ConfigurationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketeer_configurations_total",
			Help: "Total number of completed guild configurations",
		},
	)

	// ProvisionedChannels is the number of channels provisioned, by how they were obtained.
	ProvisionedChannels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketeer_provisioned_channels_total",
			Help: "Total number of channels provisioned by configurations",
		},
		[]string{"outcome"},
	)
)

// Package metrics holds the bot's prometheus collectors. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cerealbot"

// Outcome labels
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeDenied   = "denied"
	OutcomeInvalid  = "invalid"
	OutcomeCooldown = "cooldown"
	OutcomePanic    = "panic"
)

type Metrics struct {
	registry *prometheus.Registry

	commands         *prometheus.CounterVec
	commandDuration  *prometheus.HistogramVec
	reminders        *prometheus.CounterVec
	reminderSweeps   prometheus.Counter
	remindersPending prometheus.Gauge
	contentFetches   *prometheus.CounterVec
	giveawaysEnded   prometheus.Counter
	gatewayEvents    *prometheus.CounterVec
	handlerPanics    prometheus.Counter
}

// New creates the collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched by name and outcome",
		}, []string{"command", "outcome"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent inside command handlers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_deliveries_total",
			Help:      "Reminder delivery attempts by outcome",
		}, []string{"outcome"}),
		reminderSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_sweeps_total",
			Help:      "Completed reminder sweeps",
		}),
		remindersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminders_pending",
			Help:      "Reminders waiting to be delivered",
		}),
		contentFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_fetch_attempts_total",
			Help:      "External content fetch attempts by kind and outcome",
		}, []string{"kind", "outcome"}),
		giveawaysEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "giveaways_ended_total",
			Help:      "Giveaways ended by command or expiry",
		}),
		gatewayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_events_total",
			Help:      "Inbound gateway events by class",
		}, []string{"class"}),
		handlerPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_panics_total",
			Help:      "Panics recovered in event handlers",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commands,
		m.commandDuration,
		m.reminders,
		m.reminderSweeps,
		m.remindersPending,
		m.contentFetches,
		m.giveawaysEnded,
		m.gatewayEvents,
		m.handlerPanics,
	)
	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveCommand(name, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name, outcome).Inc()
	if outcome == OutcomeOK || outcome == OutcomeError {
		m.commandDuration.WithLabelValues(name).Observe(took.Seconds())
	}
}

func (m *Metrics) ReminderDelivered(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reminders.WithLabelValues(OutcomeError).Inc()
		return
	}
	m.reminders.WithLabelValues(OutcomeOK).Inc()
}

func (m *Metrics) ReminderSweep(pending int) {
	if m == nil {
		return
	}
	m.reminderSweeps.Inc()
	m.remindersPending.Set(float64(pending))
}

func (m *Metrics) ContentFetch(kind string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.contentFetches.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) GiveawayEnded() {
	if m == nil {
		return
	}
	m.giveawaysEnded.Inc()
}

func (m *Metrics) GatewayEvent(class string) {
	if m == nil {
		return
	}
	m.gatewayEvents.WithLabelValues(class).Inc()
}

func (m *Metrics) HandlerPanic() {
	if m == nil {
		return
	}
	m.handlerPanics.Inc()
}

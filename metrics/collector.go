// Package metrics exports container observer events as Prometheus metrics.
//
//	col := metrics.NewCollector()
//	prometheus.MustRegister(col)
//	c := beanpod.New(col.Options()...)
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danpasecinic/beanpod"
)

const namespace = "beanpod"

type Collector struct {
	resolveDuration *prometheus.HistogramVec
	resolveErrors   *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	destroyDuration prometheus.Histogram
	startDuration   prometheus.Histogram
	provided        prometheus.Counter
}

func NewCollector() *Collector {
	return &Collector{
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "resolve_duration_seconds",
				Help:      "Time spent resolving a bean, including construction on first use.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"result"},
		),
		resolveErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolve_errors_total",
				Help:      "Failed resolutions by error code.",
			},
			[]string{"code"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_transitions_total",
				Help:      "Bean lifecycle transitions by target state.",
			},
			[]string{"state"},
		),
		destroyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "destroy_duration_seconds",
				Help:      "Time spent destroying a singleton on close.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		startDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "start_duration_seconds",
				Help:      "Time spent building an eager singleton during start.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		provided: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "beans_provided_total",
				Help:      "Bean instances that reached Ready.",
			},
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.resolveDuration.Describe(ch)
	c.resolveErrors.Describe(ch)
	c.transitions.Describe(ch)
	c.destroyDuration.Describe(ch)
	c.startDuration.Describe(ch)
	c.provided.Describe(ch)
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.resolveDuration.Collect(ch)
	c.resolveErrors.Collect(ch)
	c.transitions.Collect(ch)
	c.destroyDuration.Collect(ch)
	c.startDuration.Collect(ch)
	c.provided.Collect(ch)
}

// Options wires the collector into a container's observers.
func (c *Collector) Options() []beanpod.Option {
	return []beanpod.Option{
		beanpod.WithResolveObserver(c.observeResolve),
		beanpod.WithProvideObserver(c.observeProvide),
		beanpod.WithStartObserver(c.observeStart),
		beanpod.WithStopObserver(c.observeStop),
		beanpod.WithLifecycleObserver(c.observeTransition),
	}
}

func (c *Collector) observeResolve(_ string, d time.Duration, err error) {
	if err != nil {
		c.resolveDuration.WithLabelValues("error").Observe(d.Seconds())
		c.resolveErrors.WithLabelValues(code(err)).Inc()
		return
	}
	c.resolveDuration.WithLabelValues("ok").Observe(d.Seconds())
}

func (c *Collector) observeProvide(string) {
	c.provided.Inc()
}

func (c *Collector) observeStart(_ string, d time.Duration, _ error) {
	c.startDuration.Observe(d.Seconds())
}

func (c *Collector) observeStop(_ string, d time.Duration, _ error) {
	c.destroyDuration.Observe(d.Seconds())
}

func (c *Collector) observeTransition(_ string, state beanpod.State) {
	c.transitions.WithLabelValues(state.String()).Inc()
}

func code(err error) string {
	var e *beanpod.Error
	if errors.As(err, &e) {
		return e.Code.String()
	}
	return beanpod.ErrCodeUnknown.String()
}

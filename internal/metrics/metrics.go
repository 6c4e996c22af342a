// Package metrics defines the Prometheus collectors shared by the source
// resolver, the band sources and the product adapters.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "swath"

// Collectors groups every collector the module exports.
type Collectors struct {
	Resolutions     *prometheus.CounterVec
	Fetches         *prometheus.CounterVec
	GeoComputations *prometheus.CounterVec
	GeoShared       *prometheus.CounterVec
	LiveSources     prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg gets a
// private registry. Collectors already registered on reg are reused.
func New(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	c := &Collectors{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Source resolutions by winning candidate and outcome.",
		}, []string{"candidate", "outcome"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Band fetches by source description and outcome.",
		}, []string{"source", "outcome"}),
		GeoComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geolocation_computations_total",
			Help:      "Geolocation records computed by array adapters.",
		}, []string{"instrument"}),
		GeoShared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geolocation_shared_total",
			Help:      "Geolocation records copied onto sibling bands.",
		}, []string{"group"}),
		LiveSources: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_sources",
			Help:      "Sources currently listed in a session.",
		}),
	}
	var err error
	if c.Resolutions, err = register(reg, c.Resolutions); err != nil {
		return nil, err
	}
	if c.Fetches, err = register(reg, c.Fetches); err != nil {
		return nil, err
	}
	if c.GeoComputations, err = register(reg, c.GeoComputations); err != nil {
		return nil, err
	}
	if c.GeoShared, err = register(reg, c.GeoShared); err != nil {
		return nil, err
	}
	if c.LiveSources, err = register(reg, c.LiveSources); err != nil {
		return nil, err
	}
	return c, nil
}

// Discard returns collectors bound to a throwaway registry.
func Discard() *Collectors {
	c, _ := New(nil)
	return c
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return col, err
	}
	return col, nil
}

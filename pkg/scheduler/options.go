package scheduler

import "github.com/prometheus/client_golang/prometheus"

type options struct {
	name       string
	registerer prometheus.Registerer
}

type Option func(*options)

// WithName sets the name used in logs and as the scheduler metric label.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMetrics registers the scheduler metrics on r.
func WithMetrics(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

package beanpod

import (
	"log/slog"
	"os"
)

type Option func(*containerConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithProperties sets where Value params and `value` tags look up their keys.
func WithProperties(props PropertySource) Option {
	return func(cfg *containerConfig) {
		cfg.properties = props
	}
}

// WithShutdownSignals replaces the signals RegisterShutdownHook listens for.
func WithShutdownSignals(signals ...os.Signal) Option {
	return func(cfg *containerConfig) {
		cfg.signals = signals
	}
}

func WithResolveObserver(hook ResolveHook) Option {
	return func(cfg *containerConfig) {
		cfg.onResolve = append(cfg.onResolve, hook)
	}
}

func WithProvideObserver(hook ProvideHook) Option {
	return func(cfg *containerConfig) {
		cfg.onProvide = append(cfg.onProvide, hook)
	}
}

func WithStartObserver(hook StartHook) Option {
	return func(cfg *containerConfig) {
		cfg.onStart = append(cfg.onStart, hook)
	}
}

func WithStopObserver(hook StopHook) Option {
	return func(cfg *containerConfig) {
		cfg.onStop = append(cfg.onStop, hook)
	}
}

// WithLifecycleObserver sees every state transition of every bean, in order.
func WithLifecycleObserver(hook TransitionHook) Option {
	return func(cfg *containerConfig) {
		cfg.onTransition = append(cfg.onTransition, hook)
	}
}

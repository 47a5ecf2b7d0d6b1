package beanpod

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/danpasecinic/beanpod/internal/container"
)

// PropertySource supplies values for Value params and `value` tags. The
// property package provides map, environment, dotenv and YAML sources.
type PropertySource interface {
	Lookup(key string) (string, bool)
}

// DefinitionSource is anything that yields definitions: modules, manifests.
type DefinitionSource interface {
	Definitions() ([]*Definition, error)
}

type Container struct {
	internal *container.Container
	config   *containerConfig

	hookOnce  sync.Once
	closeOnce sync.Once
	done      chan struct{}
}

type containerConfig struct {
	logger       *slog.Logger
	properties   PropertySource
	signals      []os.Signal
	onResolve    []ResolveHook
	onProvide    []ProvideHook
	onStart      []StartHook
	onStop       []StopHook
	onTransition []TransitionHook
}

func New(opts ...Option) *Container {
	cfg := &containerConfig{
		logger:  slog.Default(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	internal := container.New(
		&container.Config{
			ID:           uuid.NewString(),
			Logger:       cfg.logger,
			Properties:   cfg.properties,
			OnResolve:    cfg.onResolve,
			OnProvide:    cfg.onProvide,
			OnStart:      cfg.onStart,
			OnStop:       cfg.onStop,
			OnTransition: cfg.onTransition,
		},
	)

	return &Container{
		internal: internal,
		config:   cfg,
		done:     make(chan struct{}),
	}
}

// Startup builds a container from defs and starts it.
func Startup(ctx context.Context, defs []*Definition, props PropertySource, opts ...Option) (*Container, error) {
	if props != nil {
		opts = append(opts, WithProperties(props))
	}

	c := New(opts...)
	if err := c.Register(defs...); err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// ID identifies this container instance in logs and metrics.
func (c *Container) ID() string {
	return c.internal.ID()
}

func (c *Container) Register(defs ...*Definition) error {
	for _, d := range defs {
		def, err := d.build()
		if err != nil {
			return err
		}
		if err := c.internal.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) Load(sources ...DefinitionSource) error {
	for _, src := range sources {
		defs, err := src.Definitions()
		if err != nil {
			return err
		}
		if err := c.Register(defs...); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) Validate() error {
	return c.internal.Validate()
}

func (c *Container) Has(id string) bool {
	return c.internal.Has(id)
}

func (c *Container) IDs() []string {
	return c.internal.IDs()
}

func (c *Container) Size() int {
	return c.internal.Size()
}

// Start closes registration and builds every eager singleton in dependency
// order. On failure the beans already built are destroyed.
func (c *Container) Start(ctx context.Context) error {
	if err := c.internal.Start(ctx); err != nil {
		return errStartupFailed(err)
	}
	return nil
}

// GetInstance returns the bean registered under key, or the single bean
// providing the capability key.
func (c *Container) GetInstance(ctx context.Context, key string) (any, error) {
	return c.internal.GetInstance(ctx, key)
}

// RegisterShutdownHook arms one goroutine that closes the container when a
// shutdown signal arrives. Calling it again has no effect.
func (c *Container) RegisterShutdownHook() {
	c.hookOnce.Do(
		func() {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, c.config.signals...)

			go func() {
				defer signal.Stop(quit)

				select {
				case sig := <-quit:
					c.config.logger.Info("shutdown signal received", "signal", sig.String(), "container", c.ID())
					_ = c.Close(context.Background())
				case <-c.done:
				}
			}()
		},
	)
}

// Done is closed once Close has run.
func (c *Container) Done() <-chan struct{} {
	return c.done
}

// Close destroys every singleton, latest created first. Only the first call
// does any work; later calls return its result.
func (c *Container) Close(ctx context.Context) error {
	err := c.internal.Close(ctx)
	c.closeOnce.Do(func() { close(c.done) })
	if err != nil {
		return errShutdownFailed(err)
	}
	return nil
}

// Run starts the container, arms the shutdown hook and closes the container
// when ctx is done or a shutdown signal arrives.
func (c *Container) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	c.RegisterShutdownHook()

	select {
	case <-ctx.Done():
	case <-c.done:
	}

	return c.Close(context.Background())
}

package container

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danpasecinic/beanpod/internal/graph"
	"github.com/danpasecinic/beanpod/internal/scope"
)

type Status int

const (
	StatusNew Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type (
	ResolveHook    func(id string, duration time.Duration, err error)
	ProvideHook    func(id string)
	StartHook      func(id string, duration time.Duration, err error)
	StopHook       func(id string, duration time.Duration, err error)
	TransitionHook func(id string, state State)
)

type Config struct {
	ID           string
	Logger       *slog.Logger
	Properties   PropertySource
	OnResolve    []ResolveHook
	OnProvide    []ProvideHook
	OnStart      []StartHook
	OnStop       []StopHook
	OnTransition []TransitionHook
}

type Container struct {
	mu       sync.RWMutex
	cfg      Config
	registry *Registry
	resolver *Resolver
	scopes   *scope.Manager[*Instance]
	graph    *graph.Graph
	logger   *slog.Logger
	status   Status

	closeOnce sync.Once
	closeErr  error
}

func New(cfg *Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := NewRegistry()
	return &Container{
		cfg:      *cfg,
		registry: registry,
		resolver: NewResolver(registry, cfg.Properties),
		scopes:   scope.NewManager[*Instance](),
		graph:    graph.New(),
		logger:   logger,
	}
}

func (c *Container) ID() string {
	return c.cfg.ID
}

func (c *Container) Register(def *Definition) error {
	if err := c.registry.Register(def); err != nil {
		return err
	}
	c.logger.Debug("bean registered", "bean", def.ID, "scope", def.Scope.String(), "lazy", def.Lazy)
	return nil
}

func (c *Container) Has(id string) bool {
	return c.registry.Has(id)
}

func (c *Container) Definition(id string) (*Definition, error) {
	return c.registry.ByID(id)
}

func (c *Container) IDs() []string {
	return c.registry.IDs()
}

func (c *Container) Size() int {
	return c.registry.Size()
}

func (c *Container) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

func (c *Container) Instantiated(id string) bool {
	return c.scopes.Has(id)
}

func (c *Container) Property(key string) (string, bool) {
	return c.resolver.Property(key)
}

// GetInstance resolves key as a definition id first and as a capability key
// otherwise.
func (c *Container) GetInstance(ctx context.Context, key string) (any, error) {
	if c.Status() == StatusStopped {
		return nil, errContainerClosed
	}

	def, err := c.lookup(key)
	if err != nil {
		c.callResolveHooks(key, 0, err)
		return nil, err
	}
	return c.resolve(ctx, def)
}

// GetByCapability resolves the one definition providing cap.
func (c *Container) GetByCapability(ctx context.Context, cap Capability) (any, error) {
	if c.Status() == StatusStopped {
		return nil, errContainerClosed
	}

	def, err := c.registry.Unique(cap)
	if err != nil {
		c.callResolveHooks(cap.Key, 0, err)
		return nil, err
	}
	return c.resolve(ctx, def)
}

func (c *Container) lookup(key string) (*Definition, error) {
	if def, err := c.registry.ByID(key); err == nil {
		return def, nil
	}
	def, err := c.registry.Unique(Capability{Key: key})
	if err != nil && HasCode(err, ErrCodeBeanNotFound) {
		return nil, errBeanNotFound(key)
	}
	return def, err
}

func (c *Container) resolve(ctx context.Context, def *Definition) (any, error) {
	start := time.Now()
	v, err := c.instance(ctx, def)
	c.callResolveHooks(def.ID, time.Since(start), err)
	return v, err
}

func (c *Container) instance(ctx context.Context, def *Definition) (any, error) {
	ch := chainFrom(ctx)
	if ch.constructing(def.ID) {
		if ref, ok := ch.early[def.ID]; ok {
			ref.used = true
			return ref.value, nil
		}
		return nil, errCircular(ch.cycle(def.ID))
	}

	if def.Singleton() {
		if inst, ok := c.scopes.Get(def.ID); ok {
			return inst.Value, nil
		}
	}

	if err := c.resolver.Plan(def.ID); err != nil {
		return nil, err
	}

	if !def.Singleton() {
		inst, err := c.scopes.Prototype(
			func() (*Instance, error) {
				nctx, next := ch.enter(ctx, def.ID, false)
				return c.build(nctx, next, def)
			},
		)
		if err != nil {
			return nil, err
		}
		return inst.Value, nil
	}

	inst, err := c.scopes.Singleton(
		def.ID, ch.locked, func() (*Instance, uint64, error) {
			if c.Status() >= StatusStopping {
				return nil, 0, errCreateWhileStopping(def.ID)
			}
			nctx, next := ch.enter(ctx, def.ID, true)
			inst, err := c.build(nctx, next, def)
			if err != nil {
				return nil, 0, err
			}
			return inst, inst.Sequence, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return inst.Value, nil
}

// Validate plans every definition without constructing anything.
func (c *Container) Validate() error {
	_, errs := c.resolver.PlanAll()
	return errors.Join(errs...)
}

// Start closes registration, plans every definition and constructs the eager
// singletons in dependency order, registration order breaking ties.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusNew {
		status := c.status
		c.mu.Unlock()
		return NewError(ErrCodeStartupFailed, fmt.Sprintf("container is %s", status), nil)
	}
	c.status = StatusStarting
	c.mu.Unlock()

	c.registry.Close()
	start := time.Now()

	order, err := c.startupOrder()
	if err != nil {
		return c.abortStartup(ctx, err)
	}

	eager := 0
	for _, id := range order {
		def, err := c.registry.ByID(id)
		if err != nil {
			return c.abortStartup(ctx, err)
		}
		if !def.Eager() {
			continue
		}

		began := time.Now()
		_, err = c.resolve(ctx, def)
		for _, hook := range c.cfg.OnStart {
			hook(id, time.Since(began), err)
		}
		if err != nil {
			return c.abortStartup(ctx, err)
		}
		eager++
	}

	c.mu.Lock()
	c.status = StatusRunning
	c.mu.Unlock()

	c.logger.Info(
		"container started",
		"container", c.cfg.ID,
		"beans", c.registry.Size(),
		"eager", eager,
		"duration", time.Since(start),
	)
	return nil
}

func (c *Container) startupOrder() ([]string, error) {
	edges, errs := c.resolver.PlanAll()

	for _, err := range errs {
		if HasCode(err, ErrCodeCircularDependency) {
			return nil, err
		}
	}
	for _, def := range c.registry.Definitions() {
		if _, ok := edges[def.ID]; !ok && def.Eager() {
			if err := c.resolver.Plan(def.ID); err != nil {
				return nil, err
			}
		}
	}

	g := graph.New()
	for _, id := range c.registry.IDs() {
		g.AddNode(id, edges[id])
	}

	c.mu.Lock()
	c.graph = g
	c.mu.Unlock()

	return g.StartupOrder()
}

func (c *Container) abortStartup(ctx context.Context, cause error) error {
	c.logger.Error("container startup failed", "container", c.cfg.ID, "error", cause)

	c.mu.Lock()
	c.status = StatusStopping
	c.mu.Unlock()

	if err := c.teardown(ctx); err != nil {
		cause = errors.Join(cause, err)
	}

	c.mu.Lock()
	c.status = StatusStopped
	c.mu.Unlock()

	return cause
}

// Close destroys every tracked singleton exactly once. Later calls return
// the first call's result.
func (c *Container) Close(ctx context.Context) error {
	c.closeOnce.Do(
		func() {
			c.mu.Lock()
			c.status = StatusStopping
			c.mu.Unlock()

			c.registry.Close()
			c.closeErr = c.teardown(ctx)

			c.mu.Lock()
			c.status = StatusStopped
			c.mu.Unlock()

			c.logger.Info("container closed", "container", c.cfg.ID)
		},
	)
	return c.closeErr
}

// Graph returns the constructor dependency graph. Before startup it is
// planned on demand.
func (c *Container) Graph() *graph.Graph {
	c.mu.RLock()
	if c.graph.Size() > 0 {
		defer c.mu.RUnlock()
		return c.graph.Clone()
	}
	c.mu.RUnlock()

	edges, _ := c.resolver.PlanAll()
	g := graph.New()
	for _, id := range c.registry.IDs() {
		g.AddNode(id, edges[id])
	}
	return g
}

func (c *Container) callResolveHooks(id string, duration time.Duration, err error) {
	for _, hook := range c.cfg.OnResolve {
		hook(id, duration, err)
	}
}

// chain is the resolution path carried through the context while beans are
// under construction. locked is set once a singleton construction on the
// path holds the scope manager's creation lock.
type chain struct {
	locked bool
	path   []string
	early  map[string]*earlyRef
}

// earlyRef is a singleton's raw value, visible to its own construction chain
// before it is Ready.
type earlyRef struct {
	value any
	used  bool
}

type chainKey struct{}

func chainFrom(ctx context.Context) *chain {
	if ch, ok := ctx.Value(chainKey{}).(*chain); ok {
		return ch
	}
	return &chain{early: make(map[string]*earlyRef)}
}

func (ch *chain) enter(ctx context.Context, id string, locked bool) (context.Context, *chain) {
	next := &chain{
		locked: ch.locked || locked,
		path:   append(slices.Clone(ch.path), id),
		early:  ch.early,
	}
	return context.WithValue(ctx, chainKey{}, next), next
}

func (ch *chain) constructing(id string) bool {
	return slices.Contains(ch.path, id)
}

func (ch *chain) cycle(id string) []string {
	i := slices.Index(ch.path, id)
	return append(slices.Clone(ch.path[i:]), id)
}

// Factory is the read-only view of the container handed to factory
// callbacks. It cannot register definitions.
type Factory interface {
	ID() string
	GetInstance(ctx context.Context, key string) (any, error)
	Contains(id string) bool
	IsSingleton(id string) (bool, error)
	IsPrototype(id string) (bool, error)
	Property(key string) (string, bool)
	DefinitionIDs() []string
}

type factoryView struct {
	c        *Container
	ctx      context.Context
	building atomic.Bool
}

func newFactoryView(ctx context.Context, c *Container) *factoryView {
	f := &factoryView{c: c, ctx: ctx}
	f.building.Store(true)
	return f
}

func (f *factoryView) ID() string {
	return f.c.ID()
}

// GetInstance continues the resolution chain of the bean being built when
// ctx does not carry one, so lookups from inside a callback see early
// references instead of waiting on the creation lock. Once that bean is
// built, lookups start a fresh chain.
func (f *factoryView) GetInstance(ctx context.Context, key string) (any, error) {
	if !f.building.Load() {
		if ctx == nil {
			ctx = context.Background()
		}
		return f.c.GetInstance(ctx, key)
	}
	if ctx == nil {
		ctx = f.ctx
	} else if _, ok := ctx.Value(chainKey{}).(*chain); !ok {
		ctx = context.WithValue(ctx, chainKey{}, chainFrom(f.ctx))
	}
	return f.c.GetInstance(ctx, key)
}

func (f *factoryView) Contains(id string) bool {
	return f.c.Has(id)
}

func (f *factoryView) IsSingleton(id string) (bool, error) {
	def, err := f.c.registry.ByID(id)
	if err != nil {
		return false, err
	}
	return def.Scope == scope.Singleton, nil
}

func (f *factoryView) IsPrototype(id string) (bool, error) {
	def, err := f.c.registry.ByID(id)
	if err != nil {
		return false, err
	}
	return def.Scope == scope.Prototype, nil
}

func (f *factoryView) Property(key string) (string, bool) {
	return f.c.Property(key)
}

func (f *factoryView) DefinitionIDs() []string {
	return f.c.IDs()
}

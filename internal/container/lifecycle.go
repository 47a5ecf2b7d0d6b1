package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danpasecinic/beanpod/internal/reflect"
)

// State is a bean instance's lifecycle phase. Instances only ever move to
// the next state.
type State int

const (
	StatePending State = iota
	StateCreated
	StateNameBound
	StateFactoryBound
	StatePropertiesSet
	StateInitialized
	StateReady
	StateDestroying
	StateDestroyed
)

var stateNames = [...]string{
	StatePending:       "Pending",
	StateCreated:       "Created",
	StateNameBound:     "NameBound",
	StateFactoryBound:  "FactoryBound",
	StatePropertiesSet: "PropertiesSet",
	StateInitialized:   "Initialized",
	StateReady:         "Ready",
	StateDestroying:    "Destroying",
	StateDestroyed:     "Destroyed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Instance struct {
	ID       string
	Value    any
	State    State
	Sequence uint64
	def      *Definition
	view     *factoryView
}

// release detaches a retained factory view from the build that created it.
func (inst *Instance) release() {
	if inst.view != nil {
		inst.view.building.Store(false)
	}
}

func (c *Container) advance(inst *Instance, to State) error {
	if to != inst.State+1 {
		return errInvalidTransition(inst.ID, inst.State, to)
	}
	inst.State = to

	c.logger.Debug("bean transition", "bean", inst.ID, "state", to.String(), "seq", inst.Sequence)
	for _, hook := range c.cfg.OnTransition {
		hook(inst.ID, to)
	}
	return nil
}

// build runs a definition through Created up to Ready. The context must
// already carry the chain entry for def.
func (c *Container) build(ctx context.Context, ch *chain, def *Definition) (*Instance, error) {
	producer, _, err := c.resolver.SelectProducer(def)
	if err != nil {
		return nil, err
	}

	raw, err := c.produce(ctx, def, producer)
	if err != nil {
		return nil, err
	}

	inst := &Instance{ID: def.ID, Value: raw, def: def, Sequence: c.scopes.NextSequence()}
	defer inst.release()
	if err := c.advance(inst, StateCreated); err != nil {
		return nil, err
	}

	var early *earlyRef
	if def.Singleton() {
		early = &earlyRef{value: raw}
		ch.early[def.ID] = early
		defer delete(ch.early, def.ID)
	}

	phases := []struct {
		state State
		run   func() error
	}{
		{StateNameBound, func() error { return c.bindName(inst) }},
		{StateFactoryBound, func() error { return c.bindFactory(ctx, inst) }},
		{StatePropertiesSet, func() error { return c.injectProperties(ctx, inst) }},
		{StateInitialized, func() error { return c.initialize(ctx, inst) }},
		{StateReady, func() error { return c.postProcess(ctx, inst, early) }},
	}

	for _, phase := range phases {
		if err := phase.run(); err != nil {
			return nil, err
		}
		if err := c.advance(inst, phase.state); err != nil {
			return nil, err
		}
	}

	for _, hook := range c.cfg.OnProvide {
		hook(def.ID)
	}
	return inst, nil
}

func (c *Container) produce(ctx context.Context, def *Definition, p *Producer) (any, error) {
	if p.HasInstance {
		return p.Instance, nil
	}

	args, err := c.resolveArgs(ctx, def, p)
	if err != nil {
		return nil, err
	}

	v, err := p.Func.Call(args)
	if err != nil {
		return nil, errProducer(def.ID, err)
	}
	if reflect.IsNil(v) {
		return nil, errProducer(def.ID, errors.New("producer returned nil"))
	}
	return v, nil
}

func (c *Container) bindName(inst *Instance) error {
	cb := inst.def.Callbacks.BeanName
	if cb == nil {
		return nil
	}
	c.logger.Debug("running bean name callback", "bean", inst.ID)
	return guard(inst.ID, StateNameBound, func() error { return cb(inst.Value, inst.ID) })
}

func (c *Container) bindFactory(ctx context.Context, inst *Instance) error {
	cb := inst.def.Callbacks.Factory
	if cb == nil {
		return nil
	}
	c.logger.Debug("running factory callback", "bean", inst.ID)
	inst.view = newFactoryView(ctx, c)
	view := inst.view
	return guard(inst.ID, StateFactoryBound, func() error { return cb(inst.Value, view) })
}

func (c *Container) injectProperties(ctx context.Context, inst *Instance) error {
	for _, prop := range inst.def.Properties {
		if prop.Field != nil {
			v, err := c.resolveParam(ctx, inst.ID, fieldParam(*prop.Field))
			if err != nil {
				return err
			}
			if err := reflect.SetField(inst.Value, *prop.Field, v); err != nil {
				return errUnresolved(inst.ID, "field "+prop.Name, err)
			}
			continue
		}

		args := []any{inst.Value}
		for _, param := range prop.Params {
			v, err := c.resolveParam(ctx, inst.ID, param)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
		if err := guard(inst.ID, StatePropertiesSet, func() error {
			_, err := prop.Setter.Call(args)
			return err
		}); err != nil {
			return err
		}
	}
	return nil
}

func fieldParam(f reflect.Field) Param {
	switch {
	case f.Kind == reflect.FieldValue:
		return Param{
			Kind: ParamValue, Type: f.Type, Key: f.Key,
			Default: f.Default, HasDefault: f.HasDef, Optional: f.Optional,
		}
	case f.Named != "":
		return Param{Kind: ParamQualifier, Type: f.Type, Qualifier: f.Named, Optional: f.Optional}
	default:
		return Param{Kind: ParamAuto, Type: f.Type, Optional: f.Optional}
	}
}

func (c *Container) initialize(ctx context.Context, inst *Instance) error {
	cb := inst.def.Callbacks.Init
	if cb == nil {
		return nil
	}
	c.logger.Debug("running init callback", "bean", inst.ID)
	return guard(inst.ID, StateInitialized, func() error { return cb(ctx, inst.Value) })
}

// postProcess applies the post-processors in order. A bean whose raw value
// was already injected into a circular reference must not be replaced.
func (c *Container) postProcess(ctx context.Context, inst *Instance, early *earlyRef) error {
	raw := inst.Value
	for _, pp := range inst.def.PostProcessors {
		var next any
		err := guard(inst.ID, StateReady, func() error {
			v, err := pp(ctx, inst.ID, inst.Value)
			next = v
			return err
		})
		if err != nil {
			return err
		}
		if next != nil {
			inst.Value = next
		}
	}

	if early != nil && early.used && !reflect.Same(raw, inst.Value) {
		return errCallback(
			inst.ID, StateReady,
			errors.New("post-processor replaced a bean already injected raw into a circular reference"),
		)
	}
	return nil
}

// guard runs a user callback, turning both returned errors and panics into
// lifecycle callback failures.
func guard(id string, state State, fn func() (err error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errCallback(id, state, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(); err != nil {
		return errCallback(id, state, err)
	}
	return nil
}

// teardown destroys every tracked singleton, latest creation first. A failing
// destroy callback is recorded and the remaining instances are still
// destroyed. The status must already be StatusStopping, so no singleton can
// be created after the snapshot is taken.
func (c *Container) teardown(ctx context.Context) error {
	var errs []error
	c.scopes.Drain()
	tracked := c.scopes.Tracked()

	for _, entry := range tracked {
		if err := c.destroy(ctx, entry.Value); err != nil {
			errs = append(errs, err)
		}
	}
	c.scopes.Clear()

	c.logger.Info("beans destroyed", "count", len(tracked), "failures", len(errs))
	return errors.Join(errs...)
}

func (c *Container) destroy(ctx context.Context, inst *Instance) error {
	start := time.Now()

	if err := c.advance(inst, StateDestroying); err != nil {
		return err
	}

	var destroyErr error
	if cb := inst.def.Callbacks.Destroy; cb != nil {
		c.logger.Debug("running destroy callback", "bean", inst.ID)
		destroyErr = guard(inst.ID, StateDestroying, func() error { return cb(ctx, inst.Value) })
		if destroyErr != nil {
			c.logger.Warn("destroy callback failed", "bean", inst.ID, "error", destroyErr)
		}
	}

	if err := c.advance(inst, StateDestroyed); err != nil && destroyErr == nil {
		destroyErr = err
	}

	for _, hook := range c.cfg.OnStop {
		hook(inst.ID, time.Since(start), destroyErr)
	}
	return destroyErr
}

package beanpod

import (
	"errors"
	"fmt"
	goreflect "reflect"

	"github.com/danpasecinic/beanpod/internal/container"
	"github.com/danpasecinic/beanpod/internal/reflect"
	"github.com/danpasecinic/beanpod/internal/scope"
)

// Definition describes one bean. Build it with Define and register it with
// Container.Register or through a Module.
type Definition struct {
	id             string
	producer       Producer
	scope          Scope
	lazy           bool
	capabilities   []container.Capability
	setters        []setter
	callbacks      container.Callbacks
	postProcessors []container.PostProcessor
}

type DefinitionOption func(*Definition)

type setter struct {
	fn     any
	params []Param
}

func Define(id string, producer Producer, opts ...DefinitionOption) *Definition {
	d := &Definition{
		id:       id,
		producer: producer,
		scope:    scope.Singleton,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Definition) ID() string {
	return d.id
}

func (d *Definition) Scope() Scope {
	return d.scope
}

func WithScope(s Scope) DefinitionOption {
	return func(d *Definition) {
		d.scope = s
	}
}

// WithLazy defers a singleton's construction until it is first requested.
func WithLazy() DefinitionOption {
	return func(d *Definition) {
		d.lazy = true
	}
}

// As declares that the bean also satisfies T, so it can be injected and
// looked up by T.
func As[T any]() DefinitionOption {
	return func(d *Definition) {
		t := reflect.TypeOf[T]()
		d.capabilities = append(d.capabilities, container.Capability{Key: reflect.KeyOf(t), Type: t})
	}
}

// WithCapabilities adds free-form capability keys for lookups that are not
// tied to a Go type.
func WithCapabilities(keys ...string) DefinitionOption {
	return func(d *Definition) {
		for _, key := range keys {
			d.capabilities = append(d.capabilities, container.Capability{Key: key})
		}
	}
}

// WithSetter injects a property after construction. fn receives the bean
// first, then one argument per param; missing params are Auto.
func WithSetter(fn any, params ...Param) DefinitionOption {
	return func(d *Definition) {
		d.setters = append(d.setters, setter{fn: fn, params: params})
	}
}

func (d *Definition) build() (*container.Definition, error) {
	if d.producer == nil {
		return nil, errInvalidDefinition(d.id, errors.New("no producer"))
	}

	producers, err := d.producer.producers()
	if err != nil {
		return nil, errInvalidDefinition(d.id, err)
	}

	var t goreflect.Type
	if first := producers[0]; first.HasInstance {
		t = goreflect.TypeOf(first.Instance)
	} else {
		t = first.Func.Out
	}

	def := &container.Definition{
		ID:             d.id,
		Type:           t,
		Capabilities:   append([]container.Capability{container.CapabilityOf(t)}, d.capabilities...),
		Scope:          d.scope,
		Lazy:           d.lazy,
		Producers:      producers,
		Callbacks:      d.callbacks,
		PostProcessors: d.postProcessors,
	}

	fields, err := reflect.TaggedFields(t)
	if err != nil {
		return nil, errInvalidDefinition(d.id, err)
	}
	for _, f := range fields {
		def.Properties = append(def.Properties, container.Property{Name: f.Name, Field: &f})
	}

	for i, s := range d.setters {
		fn, err := reflect.FuncOf(s.fn)
		if err != nil {
			return nil, errInvalidDefinition(d.id, fmt.Errorf("setter %d: %w", i, err))
		}
		if len(fn.In) == 0 {
			return nil, errInvalidDefinition(d.id, fmt.Errorf("setter %d takes no bean", i))
		}
		params, err := bindParams(fn.In[1:], s.params)
		if err != nil {
			return nil, errInvalidDefinition(d.id, fmt.Errorf("setter %d: %w", i, err))
		}
		def.Properties = append(
			def.Properties, container.Property{Name: fmt.Sprintf("setter#%d", i), Setter: fn, Params: params},
		)
	}

	return def, nil
}

// Producer builds a definition's raw instance.
type Producer interface {
	producers() ([]*container.Producer, error)
}

// Ctor is a constructor or factory method producer.
type Ctor struct {
	fn        any
	params    []Param
	factoryID string
	optional  bool
}

// Constructor calls fn with one resolved argument per parameter. fn returns
// the bean, optionally followed by an error. Params bind positionally;
// parameters without one are Auto.
func Constructor(fn any, params ...Param) *Ctor {
	return &Ctor{fn: fn, params: params}
}

// FactoryMethod calls fn with the bean of definition factoryID as its first
// argument, followed by the resolved params. A singleton factory bean makes
// every call see the same factory instance.
func FactoryMethod(factoryID string, fn any, params ...Param) *Ctor {
	return &Ctor{fn: fn, params: params, factoryID: factoryID}
}

// Optional marks the constructor as an opt-in candidate. Among optional
// candidates the resolvable one with the most parameters wins.
func (c *Ctor) Optional() *Ctor {
	c.optional = true
	return c
}

func (c *Ctor) producers() ([]*container.Producer, error) {
	p, err := c.producer()
	if err != nil {
		return nil, err
	}
	return []*container.Producer{p}, nil
}

func (c *Ctor) producer() (*container.Producer, error) {
	fn, err := reflect.FuncOf(c.fn)
	if err != nil {
		return nil, err
	}
	if fn.Out == nil {
		return nil, fmt.Errorf("%s produces no value", fn)
	}

	in := fn.In
	if c.factoryID != "" {
		if len(in) == 0 {
			return nil, fmt.Errorf("factory method %s must accept the factory bean", fn)
		}
		in = in[1:]
	}

	params, err := bindParams(in, c.params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	return &container.Producer{
		Func:      fn,
		Params:    params,
		FactoryID: c.factoryID,
		Optional:  c.optional,
	}, nil
}

type candidates []*Ctor

// Candidates offers several constructors. Exactly one may be required; if
// all are Optional the resolvable one with the most parameters is used,
// earlier candidates winning ties.
func Candidates(ctors ...*Ctor) Producer {
	return candidates(ctors)
}

func (cs candidates) producers() ([]*container.Producer, error) {
	if len(cs) == 0 {
		return nil, errors.New("no constructor candidates")
	}

	out := make([]*container.Producer, len(cs))
	for i, c := range cs {
		p, err := c.producer()
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

type instance struct {
	v any
}

// Instance registers an already built value. It still runs through every
// lifecycle phase.
func Instance(v any) Producer {
	return instance{v: v}
}

func (i instance) producers() ([]*container.Producer, error) {
	if reflect.IsNil(i.v) {
		return nil, errors.New("instance is nil")
	}
	return []*container.Producer{{Instance: i.v, HasInstance: true}}, nil
}

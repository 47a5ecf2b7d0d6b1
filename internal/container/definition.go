package container

import (
	"context"
	"fmt"
	goreflect "reflect"
	"slices"

	"github.com/danpasecinic/beanpod/internal/reflect"
	"github.com/danpasecinic/beanpod/internal/scope"
)

type ParamKind int

const (
	// ParamAuto injects by the capability of the parameter's own type.
	ParamAuto ParamKind = iota
	ParamCapability
	ParamQualifier
	ParamValue
	ParamLiteral
)

func (k ParamKind) String() string {
	switch k {
	case ParamAuto:
		return "auto"
	case ParamCapability:
		return "capability"
	case ParamQualifier:
		return "qualifier"
	case ParamValue:
		return "value"
	case ParamLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

type Capability struct {
	Key  string
	Type goreflect.Type
}

func CapabilityOf(t goreflect.Type) Capability {
	return Capability{Key: reflect.KeyOf(t), Type: t}
}

// Param is one injection point. Type is the Go type the resolved value must
// be assignable or convertible to.
type Param struct {
	Kind       ParamKind
	Type       goreflect.Type
	Capability Capability
	Qualifier  string
	Key        string
	Default    string
	HasDefault bool
	Optional   bool
}

func (p Param) target() Capability {
	if p.Kind == ParamCapability && p.Capability.Key != "" {
		return p.Capability
	}
	return CapabilityOf(p.Type)
}

func (p Param) String() string {
	switch p.Kind {
	case ParamQualifier:
		return fmt.Sprintf("qualifier(%s)", p.Qualifier)
	case ParamValue:
		return fmt.Sprintf("value(%s)", p.Key)
	case ParamLiteral:
		return fmt.Sprintf("literal(%q)", p.Default)
	default:
		return p.target().Key
	}
}

// Producer builds the raw instance. Exactly one of Func or Instance is used.
type Producer struct {
	Func        *reflect.Func
	Params      []Param
	FactoryID   string
	Instance    any
	HasInstance bool
	Optional    bool
}

func (p *Producer) Arity() int {
	return len(p.Params)
}

func (p *Producer) out() goreflect.Type {
	if p.HasInstance {
		return goreflect.TypeOf(p.Instance)
	}
	return p.Func.Out
}

// Property is a post-construction injection point: a setter called with the
// bean followed by resolved params, or a tagged struct field.
type Property struct {
	Name   string
	Setter *reflect.Func
	Params []Param
	Field  *reflect.Field
}

type Callbacks struct {
	BeanName func(v any, id string) error
	Factory  func(v any, f Factory) error
	Init     func(ctx context.Context, v any) error
	Destroy  func(ctx context.Context, v any) error
}

type PostProcessor func(ctx context.Context, id string, v any) (any, error)

// Definition describes how to build and manage one bean. It must not be
// changed after registration.
type Definition struct {
	ID             string
	Type           goreflect.Type
	Capabilities   []Capability
	Scope          scope.Scope
	Lazy           bool
	Producers      []*Producer
	Properties     []Property
	Callbacks      Callbacks
	PostProcessors []PostProcessor
}

func (d *Definition) Provides(key string) bool {
	return slices.ContainsFunc(d.Capabilities, func(c Capability) bool { return c.Key == key })
}

func (d *Definition) Singleton() bool {
	return d.Scope == scope.Singleton
}

// Eager reports whether startup constructs this definition.
func (d *Definition) Eager() bool {
	return d.Singleton() && !d.Lazy
}

func (d *Definition) Validate() error {
	if d.ID == "" {
		return errInvalidDefinition(d.ID, "definition id is empty")
	}
	if d.Type == nil {
		return errInvalidDefinition(d.ID, "definition has no produced type")
	}
	if len(d.Producers) == 0 {
		return errInvalidDefinition(d.ID, "definition has no producer")
	}

	for i, p := range d.Producers {
		if err := d.validateProducer(i, p); err != nil {
			return err
		}
	}

	for _, prop := range d.Properties {
		if prop.Setter == nil && prop.Field == nil {
			return errInvalidDefinition(d.ID, fmt.Sprintf("property %s has neither setter nor field", prop.Name))
		}
		if prop.Setter != nil {
			in := prop.Setter.In
			if len(in) != len(prop.Params)+1 || !reflect.Assignable(d.Type, in[0]) {
				return errInvalidDefinition(
					d.ID, fmt.Sprintf("setter %s must accept %s followed by %d params", prop.Name, d.Type, len(prop.Params)),
				)
			}
		}
	}

	for _, c := range d.Capabilities {
		if c.Type != nil && !reflect.Assignable(d.Type, c.Type) {
			return errInvalidDefinition(d.ID, fmt.Sprintf("%s does not satisfy capability %s", d.Type, c.Key))
		}
	}

	return nil
}

func (d *Definition) validateProducer(i int, p *Producer) error {
	if p.HasInstance {
		if p.Instance == nil {
			return errInvalidDefinition(d.ID, "instance producer holds nil")
		}
		return nil
	}
	if p.Func == nil {
		return errInvalidDefinition(d.ID, fmt.Sprintf("producer %d has no function", i))
	}

	in := p.Func.In
	if p.FactoryID != "" {
		if len(in) == 0 {
			return errInvalidDefinition(d.ID, "factory method must take the factory bean as first parameter")
		}
		in = in[1:]
	}
	if len(in) != len(p.Params) {
		return errInvalidDefinition(
			d.ID, fmt.Sprintf("producer %d declares %d params for %d arguments", i, len(p.Params), len(in)),
		)
	}
	if !reflect.Assignable(p.Func.Out, d.Type) {
		return errInvalidDefinition(d.ID, fmt.Sprintf("producer %d returns %s, not %s", i, p.Func.Out, d.Type))
	}
	return nil
}

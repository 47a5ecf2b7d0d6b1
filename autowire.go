package beanpod

import (
	"fmt"
	goreflect "reflect"

	"github.com/danpasecinic/beanpod/internal/container"
	"github.com/danpasecinic/beanpod/internal/reflect"
)

// Struct tags read from a bean's fields after construction:
//
//	type Service struct {
//	    Repo    *Repo         `inject:""`               // by type
//	    Primary *sql.DB       `inject:"primaryDB"`      // by definition id
//	    Cache   Cache         `inject:",optional"`      // zero when missing
//	    Retries int           `value:"retries:1"`       // property with default
//	    Timeout time.Duration `value:"timeout,optional"`
//	}
const (
	InjectTag = reflect.InjectTag
	ValueTag  = reflect.ValueTag
)

// Param is an injection point for one constructor, factory method or setter
// argument.
type Param struct {
	p container.Param
}

// Auto injects the single bean providing the argument's own type.
func Auto() Param {
	return Param{p: container.Param{Kind: container.ParamAuto}}
}

// ByCapability injects the single bean providing T.
func ByCapability[T any]() Param {
	t := reflect.TypeOf[T]()
	return Param{
		p: container.Param{
			Kind:       container.ParamCapability,
			Capability: container.Capability{Key: reflect.KeyOf(t), Type: t},
		},
	}
}

// ByKey injects the single bean registered with a free-form capability key.
func ByKey(key string) Param {
	return Param{
		p: container.Param{
			Kind:       container.ParamCapability,
			Capability: container.Capability{Key: key},
		},
	}
}

// Qualifier injects the bean registered under id.
func Qualifier(id string) Param {
	return Param{p: container.Param{Kind: container.ParamQualifier, Qualifier: id}}
}

// Value injects the property key, converted to the argument type.
func Value(key string) Param {
	return Param{p: container.Param{Kind: container.ParamValue, Key: key}}
}

// Literal injects a fixed value, converted to the argument type.
func Literal(s string) Param {
	return Param{p: container.Param{Kind: container.ParamLiteral, Default: s, HasDefault: true}}
}

// Default is used when the property source has no value for the key.
func (p Param) Default(s string) Param {
	p.p.Default = s
	p.p.HasDefault = true
	return p
}

// Optional resolves to the zero value instead of failing when nothing
// matches.
func (p Param) Optional() Param {
	p.p.Optional = true
	return p
}

func (p Param) String() string {
	return p.p.String()
}

func bindParams(in []goreflect.Type, params []Param) ([]container.Param, error) {
	if len(params) > len(in) {
		return nil, fmt.Errorf("%d params given for %d arguments", len(params), len(in))
	}

	out := make([]container.Param, len(in))
	for i, t := range in {
		if i < len(params) {
			out[i] = params[i].p
		}
		out[i].Type = t

		if out[i].Kind == container.ParamCapability && out[i].Capability.Type != nil &&
			!reflect.Assignable(out[i].Capability.Type, t) {
			return nil, fmt.Errorf("argument %d is %s, capability %s does not fit", i, t, out[i].Capability.Key)
		}
	}
	return out, nil
}

package beanpod

import (
	"context"
	"fmt"

	"github.com/danpasecinic/beanpod/internal/container"
	"github.com/danpasecinic/beanpod/internal/reflect"
)

// Get returns the single bean providing T. Interface types also match beans
// that implement T without declaring it.
func Get[T any](ctx context.Context, c *Container) (T, error) {
	var zero T

	instance, err := c.internal.GetByCapability(ctx, container.CapabilityOf(reflect.TypeOf[T]()))
	if err != nil {
		return zero, err
	}
	return typed[T](reflect.TypeName[T](), instance)
}

// GetNamed returns the bean registered under id as a T.
func GetNamed[T any](ctx context.Context, c *Container, id string) (T, error) {
	var zero T

	instance, err := c.internal.GetInstance(ctx, id)
	if err != nil {
		return zero, err
	}
	return typed[T](id, instance)
}

func typed[T any](what string, instance any) (T, error) {
	v, ok := instance.(T)
	if !ok {
		var zero T
		return zero, newError(
			ErrCodeUnresolvedDependency,
			fmt.Sprintf("%s resolved to %T, not %s", what, instance, reflect.TypeName[T]()),
			nil,
		)
	}
	return v, nil
}

func MustGet[T any](ctx context.Context, c *Container) T {
	v, err := Get[T](ctx, c)
	if err != nil {
		panic(err)
	}
	return v
}

func MustGetNamed[T any](ctx context.Context, c *Container, id string) T {
	v, err := GetNamed[T](ctx, c, id)
	if err != nil {
		panic(err)
	}
	return v
}

func TryGet[T any](ctx context.Context, c *Container) (T, bool) {
	v, err := Get[T](ctx, c)
	return v, err == nil
}

type Optional[T any] struct {
	value   T
	present bool
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Optional[T]) Value() T {
	return o.value
}

func (o Optional[T]) Present() bool {
	return o.present
}

func (o Optional[T]) OrElse(defaultValue T) T {
	if o.present {
		return o.value
	}
	return defaultValue
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// GetOptional resolves T when exactly one bean provides it. Any failure,
// including ambiguity, yields None.
func GetOptional[T any](ctx context.Context, c *Container) Optional[T] {
	v, err := Get[T](ctx, c)
	if err != nil {
		return None[T]()
	}
	return Some(v)
}

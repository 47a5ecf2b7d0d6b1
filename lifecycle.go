package beanpod

import (
	"context"
	"fmt"

	"github.com/danpasecinic/beanpod/internal/container"
	"github.com/danpasecinic/beanpod/internal/reflect"
)

type State = container.State

const (
	StateCreated       = container.StateCreated
	StateNameBound     = container.StateNameBound
	StateFactoryBound  = container.StateFactoryBound
	StatePropertiesSet = container.StatePropertiesSet
	StateInitialized   = container.StateInitialized
	StateReady         = container.StateReady
	StateDestroying    = container.StateDestroying
	StateDestroyed     = container.StateDestroyed
)

// Factory is the read-only container view passed to OnFactory callbacks.
type Factory = container.Factory

// OnBeanName runs once the bean exists, with the id it was registered under.
func OnBeanName[T any](fn func(bean T, id string)) DefinitionOption {
	return func(d *Definition) {
		d.callbacks.BeanName = func(v any, id string) error {
			bean, err := as[T](v)
			if err != nil {
				return err
			}
			fn(bean, id)
			return nil
		}
	}
}

// OnFactory hands the bean a read-only view of its container.
func OnFactory[T any](fn func(bean T, f Factory) error) DefinitionOption {
	return func(d *Definition) {
		d.callbacks.Factory = func(v any, f container.Factory) error {
			bean, err := as[T](v)
			if err != nil {
				return err
			}
			return fn(bean, f)
		}
	}
}

// OnInit runs after properties are injected. A failure leaves the bean
// uncached and fails the request that built it.
func OnInit[T any](fn func(ctx context.Context, bean T) error) DefinitionOption {
	return func(d *Definition) {
		d.callbacks.Init = func(ctx context.Context, v any) error {
			bean, err := as[T](v)
			if err != nil {
				return err
			}
			return fn(ctx, bean)
		}
	}
}

// OnDestroy runs on Close for singletons. It never runs for prototypes.
func OnDestroy[T any](fn func(ctx context.Context, bean T) error) DefinitionOption {
	return func(d *Definition) {
		d.callbacks.Destroy = func(ctx context.Context, v any) error {
			bean, err := as[T](v)
			if err != nil {
				return err
			}
			return fn(ctx, bean)
		}
	}
}

// WithPostProcessor wraps or replaces the bean after OnInit and before it is
// handed out. Post-processors run in the order they were added. A singleton
// whose raw value was already injected into a property cycle cannot be
// replaced; the build fails with a LifecycleCallbackFailure instead.
func WithPostProcessor[T any](fn func(ctx context.Context, bean T) (T, error)) DefinitionOption {
	return func(d *Definition) {
		d.postProcessors = append(
			d.postProcessors, func(ctx context.Context, id string, v any) (any, error) {
				bean, err := as[T](v)
				if err != nil {
					return nil, err
				}
				return fn(ctx, bean)
			},
		)
	}
}

func as[T any](v any) (T, error) {
	bean, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("callback expects %s, bean is %T", reflect.TypeName[T](), v)
	}
	return bean, nil
}

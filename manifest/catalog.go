package manifest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/danpasecinic/beanpod"
)

// Callback is an init or destroy callback that accepts any bean.
type Callback func(ctx context.Context, bean any) error

// Catalog maps the names used in a manifest to Go code.
type Catalog struct {
	mu        sync.RWMutex
	producers map[string]any
	callbacks map[string]Callback
	types     map[string]typeEntry
}

type typeEntry struct {
	as beanpod.DefinitionOption
	by beanpod.Param
}

func NewCatalog() *Catalog {
	return &Catalog{
		producers: make(map[string]any),
		callbacks: make(map[string]Callback),
		types:     make(map[string]typeEntry),
	}
}

// Producer registers a constructor or factory method under name. A value
// that is not a function is registered as a prebuilt instance.
func (c *Catalog) Producer(name string, fn any) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.producers[name] = fn
	return c
}

func (c *Catalog) Callback(name string, fn Callback) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks[name] = fn
	return c
}

// Type lets manifests name T in capabilities lists and capability args.
// Names not registered here are free-form capability keys.
func Type[T any](c *Catalog, name string) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types[name] = typeEntry{as: beanpod.As[T](), by: beanpod.ByCapability[T]()}
	return c
}

func (c *Catalog) producer(name, factory string, params []beanpod.Param) (beanpod.Producer, error) {
	c.mu.RLock()
	fn, ok := c.producers[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProducer, name)
	}

	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		if factory != "" || len(params) > 0 {
			return nil, fmt.Errorf("%w: producer %q is an instance and takes no factory or args", ErrInvalidBean, name)
		}
		return beanpod.Instance(fn), nil
	}

	if factory != "" {
		return beanpod.FactoryMethod(factory, fn, params...), nil
	}
	return beanpod.Constructor(fn, params...), nil
}

func (c *Catalog) callback(name string) (func(context.Context, any) error, error) {
	c.mu.RLock()
	fn, ok := c.callbacks[name]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCallback, name)
	}
	return fn, nil
}

func (c *Catalog) capabilities(names []string) []beanpod.DefinitionOption {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var opts []beanpod.DefinitionOption
	var keys []string
	for _, name := range names {
		if t, ok := c.types[name]; ok {
			opts = append(opts, t.as)
			continue
		}
		keys = append(keys, name)
	}
	if len(keys) > 0 {
		opts = append(opts, beanpod.WithCapabilities(keys...))
	}
	return opts
}

func (c *Catalog) capabilityParam(name string) beanpod.Param {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if t, ok := c.types[name]; ok {
		return t.by
	}
	return beanpod.ByKey(name)
}

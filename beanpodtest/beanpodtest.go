// Package beanpodtest has helpers for tests that wire beans through a
// container.
package beanpodtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/danpasecinic/beanpod"
	"github.com/danpasecinic/beanpod/internal/reflect"
)

type TB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Cleanup(f func())
}

type TestContainer struct {
	*beanpod.Container
	tb TB
}

// New returns a container that is closed when the test ends.
func New(tb TB, opts ...beanpod.Option) *TestContainer {
	tb.Helper()

	c := beanpod.New(opts...)
	tc := &TestContainer{
		Container: c,
		tb:        tb,
	}

	tb.Cleanup(func() {
		if err := c.Close(context.Background()); err != nil {
			tb.Fatalf("failed to close container: %v", err)
		}
	})

	return tc
}

func (tc *TestContainer) MustRegister(defs ...*beanpod.Definition) {
	tc.tb.Helper()

	if err := tc.Register(defs...); err != nil {
		tc.tb.Fatalf("failed to register: %v", err)
	}
}

func (tc *TestContainer) RequireStart(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Start(ctx); err != nil {
		tc.tb.Fatalf("failed to start container: %v", err)
	}
}

func (tc *TestContainer) RequireClose(ctx context.Context) {
	tc.tb.Helper()

	if err := tc.Close(ctx); err != nil {
		tc.tb.Fatalf("failed to close container: %v", err)
	}
}

func (tc *TestContainer) RequireValidate() {
	tc.tb.Helper()

	if err := tc.Validate(); err != nil {
		tc.tb.Fatalf("container validation failed: %v", err)
	}
}

// Replace swaps a registered definition. Call it before RequireStart.
func Replace(tc *TestContainer, def *beanpod.Definition) {
	tc.tb.Helper()

	if err := tc.Container.Replace(def); err != nil {
		tc.tb.Fatalf("failed to replace %s: %v", def.ID(), err)
	}
}

func ReplaceValue[T any](tc *TestContainer, id string, value T) {
	tc.tb.Helper()

	if err := beanpod.ReplaceValue(tc.Container, id, value); err != nil {
		tc.tb.Fatalf("failed to replace %s: %v", id, err)
	}
}

func AssertHas(tc *TestContainer, id string) {
	tc.tb.Helper()

	if !tc.Has(id) {
		tc.tb.Fatalf("expected container to have %s", id)
	}
}

func AssertNotHas(tc *TestContainer, id string) {
	tc.tb.Helper()

	if tc.Has(id) {
		tc.tb.Fatalf("expected container to not have %s", id)
	}
}

func MustGet[T any](tc *TestContainer) T {
	tc.tb.Helper()

	v, err := beanpod.Get[T](context.Background(), tc.Container)
	if err != nil {
		tc.tb.Fatalf("failed to get %s: %v", reflect.TypeName[T](), err)
	}
	return v
}

func MustGetNamed[T any](tc *TestContainer, id string) T {
	tc.tb.Helper()

	v, err := beanpod.GetNamed[T](context.Background(), tc.Container, id)
	if err != nil {
		tc.tb.Fatalf("failed to get %s: %v", id, err)
	}
	return v
}

// Recorder collects lifecycle transitions.
type Recorder struct {
	mu     sync.Mutex
	events []event
}

type event struct {
	id    string
	state beanpod.State
}

func (r *Recorder) Option() beanpod.Option {
	return beanpod.WithLifecycleObserver(
		func(id string, state beanpod.State) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, event{id: id, state: state})
		},
	)
}

// Events returns every transition seen so far as "id:State".
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = fmt.Sprintf("%s:%s", e.id, e.state)
	}
	return out
}

// For returns the states bean id went through, in order.
func (r *Recorder) For(id string) []beanpod.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []beanpod.State
	for _, e := range r.events {
		if e.id == id {
			out = append(out, e.state)
		}
	}
	return out
}

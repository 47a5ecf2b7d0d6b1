package beanpod_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danpasecinic/beanpod"
)

func TestResolveObserver(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	var lastID string
	var lastErr error

	c := beanpod.New(
		beanpod.WithResolveObserver(
			func(id string, duration time.Duration, err error) {
				callCount.Add(1)
				lastID = id
				lastErr = err
			},
		),
	)
	mustRegister(t, c, beanpod.Define("config", beanpod.Instance(&Config{Port: 8080})))

	if _, err := beanpod.Get[*Config](context.Background(), c); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if callCount.Load() != 1 {
		t.Errorf("expected 1 resolve hook call, got %d", callCount.Load())
	}
	if lastID != "config" {
		t.Errorf("expected id config, got %q", lastID)
	}
	if lastErr != nil {
		t.Errorf("expected no error, got %v", lastErr)
	}
}

func TestResolveObserverOnError(t *testing.T) {
	t.Parallel()

	var lastErr error

	c := beanpod.New(
		beanpod.WithResolveObserver(
			func(id string, duration time.Duration, err error) {
				lastErr = err
			},
		),
	)

	_, _ = beanpod.Get[*Config](context.Background(), c)

	if !beanpod.IsBeanNotFound(lastErr) {
		t.Errorf("expected BeanNotFound passed to hook, got %v", lastErr)
	}
}

func TestProvideObserver(t *testing.T) {
	t.Parallel()

	var ids []string

	c := beanpod.New(
		beanpod.WithProvideObserver(
			func(id string) {
				ids = append(ids, id)
			},
		),
	)
	mustRegister(
		t, c,
		beanpod.Define("config", beanpod.Instance(&Config{Port: 8080})),
		beanpod.Define("db", beanpod.Constructor(NewDatabase), beanpod.WithScope(beanpod.Prototype)),
	)

	if len(ids) != 0 {
		t.Errorf("expected no provide calls before resolution, got %v", ids)
	}

	ctx := context.Background()
	_ = beanpod.MustGet[*Database](ctx, c)
	_ = beanpod.MustGet[*Database](ctx, c)

	want := []string{"config", "db", "db"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected ids[%d] = %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestStartObserver(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32

	c := beanpod.New(
		beanpod.WithStartObserver(
			func(id string, duration time.Duration, err error) {
				callCount.Add(1)
			},
		),
	)
	mustRegister(
		t, c,
		beanpod.Define("config", beanpod.Instance(&Config{Port: 8080})),
		beanpod.Define("db", beanpod.Constructor(NewDatabase), beanpod.WithLazy()),
	)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = c.Close(ctx) }()

	if callCount.Load() != 1 {
		t.Errorf("expected 1 start hook call, got %d", callCount.Load())
	}
}

func TestStopObserver(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	var failed error

	c := beanpod.New(
		beanpod.WithStopObserver(
			func(id string, duration time.Duration, err error) {
				callCount.Add(1)
				if err != nil {
					failed = err
				}
			},
		),
	)
	mustRegister(
		t, c,
		beanpod.Define("config", beanpod.Instance(&Config{})),
		beanpod.Define(
			"server", beanpod.Constructor(func() *Server { return &Server{} }),
			beanpod.OnDestroy(func(context.Context, *Server) error { return errors.New("still serving") }),
		),
	)

	ctx := context.Background()
	_ = c.Start(ctx)
	_ = c.Close(ctx)

	if callCount.Load() != 2 {
		t.Errorf("expected 2 stop hook calls, got %d", callCount.Load())
	}
	if !beanpod.IsLifecycleCallbackFailure(failed) {
		t.Errorf("expected the destroy failure passed to the hook, got %v", failed)
	}
}

func TestLifecycleObserver(t *testing.T) {
	t.Parallel()

	var states []beanpod.State

	c := beanpod.New(
		beanpod.WithLifecycleObserver(
			func(id string, state beanpod.State) {
				states = append(states, state)
			},
		),
	)
	mustRegister(t, c, beanpod.Define("config", beanpod.Instance(&Config{})))

	ctx := context.Background()
	_ = c.Start(ctx)
	_ = c.Close(ctx)

	if len(states) != 8 {
		t.Fatalf("expected 8 transitions, got %v", states)
	}
	for i := 1; i < len(states); i++ {
		if states[i] != states[i-1]+1 {
			t.Errorf("expected consecutive states, got %s after %s", states[i], states[i-1])
		}
	}
}

func TestMultipleObservers(t *testing.T) {
	t.Parallel()

	var count1, count2 atomic.Int32

	c := beanpod.New(
		beanpod.WithResolveObserver(
			func(id string, duration time.Duration, err error) {
				count1.Add(1)
			},
		),
		beanpod.WithResolveObserver(
			func(id string, duration time.Duration, err error) {
				count2.Add(1)
			},
		),
	)
	mustRegister(t, c, beanpod.Define("config", beanpod.Instance(&Config{Port: 8080})))

	_, _ = beanpod.Get[*Config](context.Background(), c)

	if count1.Load() != 1 || count2.Load() != 1 {
		t.Errorf("expected both observers to be called, got %d and %d", count1.Load(), count2.Load())
	}
}

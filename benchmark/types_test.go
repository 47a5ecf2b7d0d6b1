package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"

	"github.com/danpasecinic/beanpod"
)

// The chain fixture: Settings and Clock are leaves, API sits four levels up.
type Settings struct {
	DSN   string
	Shard int
}

type Clock struct {
	Zone string
}

type Store struct {
	Settings *Settings
	Clock    *Clock
}

type Index struct {
	Clock *Clock
}

type Catalog struct {
	Store *Store
	Index *Index
}

type API struct {
	Catalog *Catalog
	Clock   *Clock
}

func NewSettings() *Settings { return &Settings{DSN: "mem://bench"} }

func NewClock() *Clock { return &Clock{Zone: "UTC"} }

func NewStore(s *Settings, clk *Clock) *Store { return &Store{Settings: s, Clock: clk} }

func NewIndex(clk *Clock) *Index { return &Index{Clock: clk} }

func NewCatalog(s *Store, idx *Index) *Catalog { return &Catalog{Store: s, Index: idx} }

func NewAPI(cat *Catalog, clk *Clock) *API { return &API{Catalog: cat, Clock: clk} }

func shard(n int) func() *Settings {
	return func() *Settings { return &Settings{Shard: n} }
}

func shardName(n int) string { return fmt.Sprintf("shard_%d", n) }

func quiet() beanpod.Option {
	return beanpod.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func beanpodChain() []*beanpod.Definition {
	return []*beanpod.Definition{
		beanpod.Define("settings", beanpod.Instance(NewSettings())),
		beanpod.Define("clock", beanpod.Instance(NewClock())),
		beanpod.Define("store", beanpod.Constructor(NewStore)),
		beanpod.Define("index", beanpod.Constructor(NewIndex)),
		beanpod.Define("catalog", beanpod.Constructor(NewCatalog)),
		beanpod.Define("api", beanpod.Constructor(NewAPI)),
	}
}

// beanpodShards registers count eager singletons. A positive work adds init
// and destroy callbacks that sleep for that long.
func beanpodShards(count int, work time.Duration) *beanpod.Container {
	c := beanpod.New(quiet())
	for n := range count {
		var opts []beanpod.DefinitionOption
		if work > 0 {
			pause := func(context.Context, *Settings) error {
				time.Sleep(work)
				return nil
			}
			opts = append(opts, beanpod.OnInit(pause), beanpod.OnDestroy(pause))
		}
		_ = c.Register(beanpod.Define(shardName(n), beanpod.Constructor(shard(n)), opts...))
	}
	return c
}

func doLift1[A, T any](fn func(A) T) do.Provider[T] {
	return func(i do.Injector) (T, error) {
		return fn(do.MustInvoke[A](i)), nil
	}
}

func doLift2[A, B, T any](fn func(A, B) T) do.Provider[T] {
	return func(i do.Injector) (T, error) {
		return fn(do.MustInvoke[A](i), do.MustInvoke[B](i)), nil
	}
}

func doChain() do.Injector {
	injector := do.New()
	do.ProvideValue(injector, NewSettings())
	do.ProvideValue(injector, NewClock())
	do.Provide(injector, doLift2(NewStore))
	do.Provide(injector, doLift1(NewIndex))
	do.Provide(injector, doLift2(NewCatalog))
	do.Provide(injector, doLift2(NewAPI))
	return injector
}

var chainConstructors = []any{NewSettings, NewClock, NewStore, NewIndex, NewCatalog, NewAPI}

func digChain() *dig.Container {
	c := dig.New()
	for _, ctor := range chainConstructors {
		_ = c.Provide(ctor)
	}
	return c
}

func fxChain() *fx.App {
	return fx.New(fx.NopLogger, fx.Provide(chainConstructors...))
}

// fxShards mirrors beanpodShards with named results, plus invokers so that
// every shard is built on start.
func fxShards(count int, work time.Duration) *fx.App {
	opts := []fx.Option{fx.NopLogger}
	invokers := make([]any, 0, count)
	for n := range count {
		tag := fmt.Sprintf(`name:%q`, shardName(n))
		build := shard(n)
		ctor := func(lc fx.Lifecycle) *Settings {
			if work > 0 {
				pause := func(context.Context) error {
					time.Sleep(work)
					return nil
				}
				lc.Append(fx.Hook{OnStart: pause, OnStop: pause})
			}
			return build()
		}
		opts = append(opts, fx.Provide(fx.Annotate(ctor, fx.ResultTags(tag))))
		invokers = append(invokers, fx.Annotate(func(*Settings) {}, fx.ParamTags(tag)))
	}
	return fx.New(append(opts, fx.Invoke(invokers...))...)
}

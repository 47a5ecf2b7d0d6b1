package benchmark

import (
	"context"
	"testing"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"

	"github.com/danpasecinic/beanpod"
)

// Every lookup benchmark warms its container first so only cached access is
// measured. Fx has no lookup API; its variants read the populated value.

func benchBeanpodGet[T any](b *testing.B, defs ...*beanpod.Definition) {
	ctx := context.Background()
	c := beanpod.New(quiet())
	_ = c.Register(defs...)
	_ = c.Start(ctx)
	b.Cleanup(func() { _ = c.Close(ctx) })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = beanpod.Get[T](ctx, c)
	}
}

func benchDoInvoke[T any](b *testing.B, injector do.Injector) {
	_ = do.MustInvoke[T](injector)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[T](injector)
	}
}

func benchDigInvoke[T any](b *testing.B, c *dig.Container) {
	use := func(T) {}
	_ = c.Invoke(use)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(use)
	}
}

func benchFxPopulate[T any](b *testing.B, provide fx.Option) {
	var target T
	ctx := context.Background()
	app := fx.New(fx.NopLogger, provide, fx.Populate(&target))
	_ = app.Start(ctx)
	b.Cleanup(func() { _ = app.Stop(ctx) })

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = target
	}
}

func BenchmarkInvoke_Singleton_Beanpod(b *testing.B) {
	benchBeanpodGet[*Settings](b, beanpod.Define("settings", beanpod.Instance(NewSettings())))
}

func BenchmarkInvoke_Singleton_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, NewSettings())
	benchDoInvoke[*Settings](b, injector)
}

func BenchmarkInvoke_Singleton_Dig(b *testing.B) {
	c := dig.New()
	_ = c.Provide(NewSettings)
	benchDigInvoke[*Settings](b, c)
}

func BenchmarkInvoke_Singleton_Fx(b *testing.B) {
	benchFxPopulate[*Settings](b, fx.Provide(NewSettings))
}

func BenchmarkInvoke_Chain_Beanpod(b *testing.B) {
	benchBeanpodGet[*API](b, beanpodChain()...)
}

func BenchmarkInvoke_Chain_Do(b *testing.B) {
	benchDoInvoke[*API](b, doChain())
}

func BenchmarkInvoke_Chain_Dig(b *testing.B) {
	benchDigInvoke[*API](b, digChain())
}

func BenchmarkInvoke_Chain_Fx(b *testing.B) {
	benchFxPopulate[*API](b, fx.Provide(chainConstructors...))
}

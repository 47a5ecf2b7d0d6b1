package beanpod_test

import (
	"context"
	"errors"
	"testing"

	"github.com/danpasecinic/beanpod"
)

type Repository interface {
	Find(id int) string
}

type sqlRepository struct{}

func (sqlRepository) Find(int) string { return "sql" }

type fakeRepository struct{}

func (fakeRepository) Find(int) string { return "fake" }

type UserService struct {
	Repo Repository
}

func TestReplace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := beanpod.New()
	mustRegister(
		t, c,
		beanpod.Define("repo", beanpod.Instance(sqlRepository{}), beanpod.As[Repository]()),
		beanpod.Define("users", beanpod.Constructor(func(r Repository) *UserService { return &UserService{Repo: r} })),
	)

	err := c.Replace(beanpod.Define("repo", beanpod.Instance(fakeRepository{}), beanpod.As[Repository]()))
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	users := beanpod.MustGet[*UserService](ctx, c)
	if got := users.Repo.Find(1); got != "fake" {
		t.Errorf("expected fake, got %s", got)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestReplace_Adds(t *testing.T) {
	t.Parallel()

	c := beanpod.New()

	if err := c.Replace(beanpod.Define("config", beanpod.Instance(&Config{}))); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if !c.Has("config") {
		t.Error("expected Replace to add a missing definition")
	}
}

func TestReplaceValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := beanpod.New()
	mustRegister(t, c, beanpod.Define("config", beanpod.Constructor(NewConfig)))

	if err := beanpod.ReplaceValue(c, "config", &Config{Port: 9999}); err != nil {
		t.Fatalf("ReplaceValue failed: %v", err)
	}

	cfg := beanpod.MustGet[*Config](ctx, c)
	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
}

func TestReplaceValue_Interface(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := beanpod.New()
	mustRegister(
		t, c,
		beanpod.Define("repo", beanpod.Instance(sqlRepository{}), beanpod.As[Repository]()),
	)

	if err := beanpod.ReplaceValue[Repository](c, "repo", fakeRepository{}); err != nil {
		t.Fatalf("ReplaceValue failed: %v", err)
	}

	repo := beanpod.MustGet[Repository](ctx, c)
	if got := repo.Find(1); got != "fake" {
		t.Errorf("expected fake, got %s", got)
	}
}

func TestReplace_AfterStart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := beanpod.New()
	mustRegister(t, c, beanpod.Define("config", beanpod.Constructor(NewConfig)))

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer func() { _ = c.Close(ctx) }()

	err := c.Replace(beanpod.Define("config", beanpod.Instance(&Config{})))
	if !errors.Is(err, beanpod.ErrRegistrationClosed) {
		t.Errorf("expected RegistrationClosed, got %v", err)
	}
}

func TestReplace_RejectsCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := beanpod.New()
	mustRegister(
		t, c,
		beanpod.Define("config", beanpod.Constructor(NewConfig)),
		beanpod.Define("db", beanpod.Constructor(NewDatabase)),
	)

	err := c.Replace(
		beanpod.Define("config", beanpod.Constructor(func(*Database) *Config { return &Config{} })),
	)
	if !beanpod.IsCircularDependency(err) {
		t.Fatalf("expected CircularDependency, got %v", err)
	}

	db := beanpod.MustGet[*Database](ctx, c)
	if db.Config.Port != 8080 {
		t.Errorf("expected the original config restored, got %+v", db.Config)
	}
}

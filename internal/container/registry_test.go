package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/beanpod/internal/reflect"
)

type speaker interface{ speak() string }

type loud struct{}

func (loud) speak() string { return "HI" }

type quiet struct{}

func (quiet) speak() string { return "hi" }

func TestRegistry_RegisterOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(define(t, "b", func() *gamma { return &gamma{} })))
	require.NoError(t, r.Register(define(t, "a", func() *missing { return &missing{} })))

	err := r.Register(define(t, "a", func() *gamma { return &gamma{} }))
	assert.True(t, HasCode(err, ErrCodeDuplicateBeanID))
	assert.Equal(t, []string{"b", "a"}, r.IDs())
	assert.Equal(t, 2, r.Size())

	r.Close()
	err = r.Register(define(t, "c", func() *gamma { return &gamma{} }))
	assert.True(t, HasCode(err, ErrCodeRegistrationClosed))
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	def := define(t, "", func() *gamma { return &gamma{} })

	err := r.Register(def)
	assert.True(t, HasCode(err, ErrCodeInvalidDefinition))
	assert.Zero(t, r.Size())
}

func TestRegistry_UniqueAndFallback(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(define(t, "loud", func() loud { return loud{} })))
	require.NoError(t, r.Register(define(t, "quiet", func() quiet { return quiet{} })))

	speakerType := reflect.TypeOf[speaker]()

	_, err := r.Unique(CapabilityOf(speakerType))
	require.True(t, HasCode(err, ErrCodeAmbiguousDependency), "got %v", err)
	assert.Contains(t, err.Error(), "[loud, quiet]")

	declared := define(t, "declared", func() quiet { return quiet{} })
	declared.Capabilities = append(declared.Capabilities, CapabilityOf(speakerType))
	require.NoError(t, r.Register(declared))

	def, err := r.Unique(CapabilityOf(speakerType))
	require.NoError(t, err)
	assert.Equal(t, "declared", def.ID)

	_, err = r.Unique(Capability{Key: "nothing"})
	assert.True(t, HasCode(err, ErrCodeBeanNotFound))
}

func TestRegistry_ReplaceAndRemove(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register(define(t, "x", func() *gamma { return &gamma{} })))
	require.NoError(t, r.Register(define(t, "y", func() *missing { return &missing{} })))

	require.NoError(t, r.Replace(define(t, "x", func() *missing { return &missing{} })))
	assert.Len(t, r.ByCapability(CapabilityOf(reflect.TypeOf[*gamma]())), 0)
	assert.Len(t, r.ByCapability(CapabilityOf(reflect.TypeOf[*missing]())), 2)
	assert.Equal(t, []string{"x", "y"}, r.IDs())

	r.Remove("x")
	assert.False(t, r.Has("x"))
	assert.Equal(t, []string{"y"}, r.IDs())
	assert.Len(t, r.ByCapability(CapabilityOf(reflect.TypeOf[*missing]())), 1)

	r.Remove("nope")
	assert.Equal(t, 1, r.Size())
}

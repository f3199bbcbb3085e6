package faucet_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/getoutreach/faucet"
	"gotest.tools/v3/assert"
)

func TestBindingsResolveTyped(t *testing.T) {
	b := faucet.NewBindings()

	assert.NilError(t, faucet.Bind(b, "dsn", func() (string, error) {
		return "postgres://localhost/app", nil
	}))
	assert.NilError(t, faucet.BindValue(b, "pool-size", 5))

	dsn, err := faucet.Resolve[string](b, "dsn")
	assert.NilError(t, err)
	assert.Equal(t, dsn, "postgres://localhost/app")

	size, err := faucet.Resolve[int](b, "pool-size")
	assert.NilError(t, err)
	assert.Equal(t, size, 5)

	assert.Assert(t, b.Has("dsn"))
	assert.DeepEqual(t, b.Names(), []string{"dsn", "pool-size"})
}

func TestBindingsConstructorRunsOnce(t *testing.T) {
	b := faucet.NewBindings()
	builds := 0
	assert.NilError(t, faucet.Bind(b, "dsn", func() (string, error) {
		builds++
		return "postgres://localhost/app", nil
	}))

	for i := 0; i < 3; i++ {
		_, err := faucet.Resolve[string](b, "dsn")
		assert.NilError(t, err)
	}
	assert.Equal(t, builds, 1)
}

func TestBindingsConstructorErrorIsMemoized(t *testing.T) {
	b := faucet.NewBindings()
	boom := errors.New("no such table")
	builds := 0
	assert.NilError(t, faucet.Bind(b, "repo", func() (string, error) {
		builds++
		return "", boom
	}))

	for i := 0; i < 2; i++ {
		_, err := faucet.Resolve[string](b, "repo")
		assert.Assert(t, errors.Is(err, boom))
	}
	assert.Equal(t, builds, 1)
}

func TestBindingsResolveReportsCycle(t *testing.T) {
	b := faucet.NewBindings()
	assert.NilError(t, faucet.Bind(b, "service", func() (string, error) {
		return faucet.Resolve[string](b, "store")
	}))
	assert.NilError(t, faucet.Bind(b, "store", func() (string, error) {
		return faucet.Resolve[string](b, "service")
	}))

	_, err := faucet.Resolve[string](b, "service")
	assert.Assert(t, errors.Is(err, faucet.ErrCircularBinding))
	assert.ErrorContains(t, err, `binding "store"`)
	assert.ErrorContains(t, err, `binding "service"`)

	// the failed resolution is memoized like any other constructor error
	_, err = faucet.Resolve[string](b, "store")
	assert.Assert(t, errors.Is(err, faucet.ErrCircularBinding))
}

func TestBindingsRejectsDuplicates(t *testing.T) {
	b := faucet.NewBindings()
	assert.NilError(t, faucet.BindValue(b, "dsn", "a"))
	err := faucet.BindValue(b, "dsn", "b")
	assert.Assert(t, errors.Is(err, faucet.ErrDuplicateBinding))
}

func TestBindingsUnknownName(t *testing.T) {
	b := faucet.NewBindings()
	_, err := faucet.Resolve[string](b, "nope")
	assert.Assert(t, errors.Is(err, faucet.ErrUnknownBinding))
}

func TestBindingsTypeMismatch(t *testing.T) {
	b := faucet.NewBindings()
	assert.NilError(t, faucet.BindValue(b, "dsn", "postgres://localhost/app"))

	_, err := faucet.Resolve[int](b, "dsn")
	assert.ErrorContains(t, err, `binding "dsn" holds string, not int`)
}

func TestMustResolvePanicsOnUnknownName(t *testing.T) {
	b := faucet.NewBindings()
	defer func() {
		assert.Assert(t, recover() != nil, "MustResolve should panic")
	}()
	faucet.MustResolve[string](b, "nope")
}

// ExampleBindings demonstrates composition time wiring
func ExampleBindings() {
	b := faucet.NewBindings()
	_ = faucet.BindValue(b, "greeting", "hello")
	_ = faucet.Bind(b, "audience", func() (string, error) {
		return "gophers", nil
	})
	fmt.Println(faucet.MustResolve[string](b, "greeting"), faucet.MustResolve[string](b, "audience"))
	// Output:
	// hello gophers
}

// Copyright 2024 Outreach Corporation. All Rights Reserved.

// Description: This file contains the typed binding table used at composition time

package faucet

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Bindings is a typed lookup table built at composition time.
// Values are bound by name together with a constructor and resolved
// lazily, the constructor runs at most once and both its value and its
// error are memoized. Which binding satisfies which consumer is
// decided where the application is wired up, not at call time.
type Bindings struct {
	mu      sync.RWMutex
	entries map[string]*binding
}

type binding struct {
	mu        sync.Mutex
	resolving bool
	resolved  bool
	build     func() (any, error)
	value     any
	err       error
}

// resolve runs the constructor on first use and memoizes the outcome.
// A constructor that resolves a name whose resolution is already in
// flight forms a cycle and fails with ErrCircularBinding.
func (e *binding) resolve() (any, error) {
	e.mu.Lock()
	if e.resolved {
		defer e.mu.Unlock()
		return e.value, e.err
	}
	if e.resolving {
		e.mu.Unlock()
		return nil, ErrCircularBinding
	}
	e.resolving = true
	e.mu.Unlock()

	value, err := e.build()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.value, e.err = value, err
	e.resolving = false
	e.resolved = true
	return value, err
}

// NewBindings returns an empty binding table
func NewBindings() *Bindings {
	return &Bindings{
		entries: map[string]*binding{},
	}
}

// Has reports whether a value is bound under the given name
func (b *Bindings) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.entries[name]
	return ok
}

// Names returns the sorted names of all bindings
func (b *Bindings) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := lo.Keys(b.entries)
	sort.Strings(names)
	return names
}

// Bind registers a constructor under the given name.
// The constructor is deferred until the first Resolve of that name.
func Bind[T any](b *Bindings, name string, build func() (T, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.entries[name]; ok {
		return fmt.Errorf("binding %q: %w", name, ErrDuplicateBinding)
	}
	b.entries[name] = &binding{
		build: func() (any, error) { return build() },
	}
	return nil
}

// BindValue registers an already constructed value under the given name
func BindValue[T any](b *Bindings, name string, v T) error {
	return Bind(b, name, func() (T, error) {
		return v, nil
	})
}

// Resolve returns the value bound under the given name, running its
// constructor on first use. Constructors may resolve other bindings, a
// cycle among them fails with ErrCircularBinding. Resolving a name
// bound to a different type fails with a descriptive error.
func Resolve[T any](b *Bindings, name string) (T, error) {
	var zero T
	b.mu.RLock()
	entry, ok := b.entries[name]
	b.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("binding %q: %w", name, ErrUnknownBinding)
	}
	value, err := entry.resolve()
	if err != nil {
		return zero, fmt.Errorf("resolving binding %q: %w", name, err)
	}
	v, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("binding %q holds %T, not %s", name, value, typeName[T]())
	}
	return v, nil
}

// MustResolve returns the bound value or panics in case of the error
func MustResolve[T any](b *Bindings, name string) T {
	v, err := Resolve[T](b, name)
	if err != nil {
		panic(err)
	}
	return v
}

// typeName returns the name of the underlaying type
func typeName[T any]() string {
	var v T
	return reflect.TypeOf(&v).Elem().String()
}

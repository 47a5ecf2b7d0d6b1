package beanpod

import "github.com/danpasecinic/beanpod/internal/scope"

type Scope = scope.Scope

const (
	// Singleton definitions are built once, cached and destroyed on Close.
	Singleton = scope.Singleton
	// Prototype definitions are built on every request and never tracked;
	// their destroy callbacks never run.
	Prototype = scope.Prototype
)

// ParseScope accepts "singleton", "prototype" or "" (singleton).
func ParseScope(name string) (Scope, error) {
	return scope.Parse(name)
}

// Package property provides the key-value sources the container reads
// Value params and `value` tags from. Keys are dotted paths such as
// "db.url".
package property

import "errors"

var ErrNoSource = errors.New("property: no readable source")

type Source interface {
	Lookup(key string) (string, bool)
}

type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Func adapts a lookup function.
type Func func(key string) (string, bool)

func (f Func) Lookup(key string) (string, bool) {
	return f(key)
}

type chain []Source

// Chain asks each source in turn; the first hit wins. Nil sources are
// skipped.
func Chain(sources ...Source) Source {
	var c chain
	for _, s := range sources {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}

func (c chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

package scope

import "fmt"

type Scope int

const (
	Singleton Scope = iota
	Prototype
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Prototype:
		return "prototype"
	default:
		return "unknown"
	}
}

func Parse(name string) (Scope, error) {
	switch name {
	case "", "singleton":
		return Singleton, nil
	case "prototype":
		return Prototype, nil
	default:
		return Singleton, fmt.Errorf("unknown scope %q", name)
	}
}

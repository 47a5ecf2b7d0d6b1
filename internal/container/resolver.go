package container

import (
	"context"
	"fmt"
	goreflect "reflect"
	"slices"

	"github.com/danpasecinic/beanpod/internal/reflect"
)

var contextType = reflect.TypeOf[context.Context]()

// PropertySource supplies literal values by key.
type PropertySource interface {
	Lookup(key string) (string, bool)
}

// Resolver plans constructions against the registry. It never mutates the
// registry and never constructs anything.
type Resolver struct {
	registry *Registry
	props    PropertySource
}

func NewResolver(registry *Registry, props PropertySource) *Resolver {
	return &Resolver{registry: registry, props: props}
}

// SelectProducer picks the producer used for def and returns the ids it
// depends on at construction time.
func (r *Resolver) SelectProducer(def *Definition) (*Producer, []string, error) {
	if len(def.Producers) == 1 {
		p := def.Producers[0]
		deps, err := r.dependencies(def, p)
		return p, deps, err
	}

	var required []*Producer
	for _, p := range def.Producers {
		if !p.Optional {
			required = append(required, p)
		}
	}

	switch len(required) {
	case 0:
	case 1:
		deps, err := r.dependencies(def, required[0])
		return required[0], deps, err
	default:
		return nil, nil, errUnresolved(
			def.ID, fmt.Sprintf("%d constructors are required, at most one may be", len(required)), nil,
		)
	}

	var (
		best     *Producer
		bestDeps []string
		lastErr  error
	)
	for _, p := range def.Producers {
		deps, err := r.dependencies(def, p)
		if err != nil {
			lastErr = err
			continue
		}
		if best == nil || p.Arity() > best.Arity() {
			best, bestDeps = p, deps
		}
	}
	if best == nil {
		return nil, nil, errUnresolved(def.ID, "no constructor candidate is resolvable", lastErr)
	}
	return best, bestDeps, nil
}

func (r *Resolver) dependencies(def *Definition, p *Producer) ([]string, error) {
	var deps []string

	if p.FactoryID != "" {
		if !r.registry.Has(p.FactoryID) {
			return nil, errBeanNotFound(p.FactoryID)
		}
		deps = append(deps, p.FactoryID)
	}

	for _, param := range p.Params {
		id, err := r.target(def.ID, param)
		if err != nil {
			return nil, err
		}
		if id != "" && !slices.Contains(deps, id) {
			deps = append(deps, id)
		}
	}

	return deps, nil
}

// target returns the definition id a param points at, or "" when it needs
// no bean (literal values, context, a missing optional dependency).
func (r *Resolver) target(owner string, p Param) (string, error) {
	switch p.Kind {
	case ParamQualifier:
		def, err := r.registry.ByID(p.Qualifier)
		if err != nil {
			if p.Optional {
				return "", nil
			}
			return "", err
		}
		if !reflect.Assignable(def.Type, p.Type) {
			return "", errUnresolved(
				owner, fmt.Sprintf("bean %q produces %s, not %s", def.ID, def.Type, p.Type), nil,
			)
		}
		return def.ID, nil

	case ParamValue, ParamLiteral:
		_, err := r.Literal(owner, p)
		return "", err

	default:
		if p.Type == contextType {
			return "", nil
		}
		def, err := r.registry.Unique(p.target())
		if err != nil {
			if p.Optional && HasCode(err, ErrCodeBeanNotFound) {
				return "", nil
			}
			return "", err
		}
		return def.ID, nil
	}
}

// Literal resolves a value param: property source first, then the default,
// then the zero value when optional.
func (r *Resolver) Literal(owner string, p Param) (any, error) {
	var (
		raw   string
		found bool
	)
	if p.Kind == ParamValue && r.props != nil {
		raw, found = r.props.Lookup(p.Key)
	}
	if !found && p.HasDefault {
		raw, found = p.Default, true
	}
	if !found {
		if p.Optional {
			return reflect.Zero(p.Type), nil
		}
		return nil, errUnresolved(owner, fmt.Sprintf("no value for property %q", p.Key), nil)
	}

	v, err := reflect.Convert(raw, p.Type)
	if err != nil {
		return nil, errUnresolved(owner, fmt.Sprintf("property %q", p.Key), err)
	}
	return v, nil
}

func (r *Resolver) Property(key string) (string, bool) {
	if r.props == nil {
		return "", false
	}
	return r.props.Lookup(key)
}

// Plan walks constructor-time edges depth-first from id and fails with the
// full cycle path on the first definition revisited while on the active path.
func (r *Resolver) Plan(id string) error {
	return r.plan(id, make(map[string]bool), nil)
}

// PlanAll plans every registered definition and returns the constructor
// edges of those that planned cleanly, keyed by id.
func (r *Resolver) PlanAll() (map[string][]string, []error) {
	visited := make(map[string]bool)
	edges := make(map[string][]string)
	var errs []error

	for _, def := range r.registry.Definitions() {
		if err := r.plan(def.ID, visited, nil); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, deps, err := r.SelectProducer(def); err == nil {
			edges[def.ID] = deps
		}
	}

	return edges, errs
}

func (r *Resolver) plan(id string, visited map[string]bool, path []string) error {
	if i := slices.Index(path, id); i >= 0 {
		cycle := append(slices.Clone(path[i:]), id)
		return errCircular(cycle)
	}
	if visited[id] {
		return nil
	}

	def, err := r.registry.ByID(id)
	if err != nil {
		return err
	}
	_, deps, err := r.SelectProducer(def)
	if err != nil {
		return err
	}

	path = append(path, id)
	for _, dep := range deps {
		if err := r.plan(dep, visited, path); err != nil {
			return err
		}
	}

	visited[id] = true
	return nil
}

func (c *Container) resolveArgs(ctx context.Context, def *Definition, p *Producer) ([]any, error) {
	args := make([]any, 0, len(p.Params)+1)

	if p.FactoryID != "" {
		factory, err := c.resolveID(ctx, p.FactoryID)
		if err != nil {
			return nil, err
		}
		args = append(args, factory)
	}

	for _, param := range p.Params {
		v, err := c.resolveParam(ctx, def.ID, param)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	return args, nil
}

func (c *Container) resolveParam(ctx context.Context, owner string, p Param) (any, error) {
	switch p.Kind {
	case ParamValue, ParamLiteral:
		return c.resolver.Literal(owner, p)

	case ParamQualifier:
		def, err := c.registry.ByID(p.Qualifier)
		if err != nil {
			if p.Optional {
				return reflect.Zero(p.Type), nil
			}
			return nil, err
		}
		v, err := c.resolve(ctx, def)
		if err != nil {
			return nil, err
		}
		return checked(owner, def.ID, v, p.Type)

	default:
		if p.Type == contextType {
			return ctx, nil
		}
		def, err := c.registry.Unique(p.target())
		if err != nil {
			if p.Optional && HasCode(err, ErrCodeBeanNotFound) {
				return reflect.Zero(p.Type), nil
			}
			return nil, err
		}
		v, err := c.resolve(ctx, def)
		if err != nil {
			return nil, err
		}
		return checked(owner, def.ID, v, p.Type)
	}
}

func (c *Container) resolveID(ctx context.Context, id string) (any, error) {
	def, err := c.registry.ByID(id)
	if err != nil {
		return nil, err
	}
	return c.resolve(ctx, def)
}

func checked(owner, id string, v any, want goreflect.Type) (any, error) {
	if v == nil || want == nil || reflect.Assignable(goreflect.TypeOf(v), want) {
		return v, nil
	}
	return nil, errUnresolved(owner, fmt.Sprintf("bean %q is %T, not %s", id, v, want), nil)
}

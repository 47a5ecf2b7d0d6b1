// Package manifest declares beans in YAML. Producers and callbacks are Go
// functions looked up by name in a Catalog:
//
//	beans:
//	  - id: db
//	    producer: newDB
//	    args:
//	      - value: db.url
//	      - value: db.pool.max
//	        default: 10
//	    destroy: closeDB
//	  - id: repo
//	    producer: newRepo
//	    capabilities: [store]
//	    args:
//	      - qualifier: db
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/danpasecinic/beanpod"
)

var (
	ErrUnknownProducer = errors.New("manifest: unknown producer")
	ErrUnknownCallback = errors.New("manifest: unknown callback")
	ErrInvalidBean     = errors.New("manifest: invalid bean")
)

type Manifest struct {
	Beans []Bean `yaml:"beans"`

	catalog *Catalog
}

type Bean struct {
	ID           string   `yaml:"id"`
	Producer     string   `yaml:"producer"`
	Factory      string   `yaml:"factory"`
	Scope        string   `yaml:"scope"`
	Lazy         bool     `yaml:"lazy"`
	Capabilities []string `yaml:"capabilities"`
	Args         []Arg    `yaml:"args"`
	Init         string   `yaml:"init"`
	Destroy      string   `yaml:"destroy"`
}

// Arg is one producer argument. At most one of Qualifier, Capability, Value
// and Literal is set; none means the argument is injected by type.
type Arg struct {
	Qualifier  string `yaml:"qualifier"`
	Capability string `yaml:"capability"`
	Value      string `yaml:"value"`
	Default    any    `yaml:"default"`
	Literal    any    `yaml:"literal"`
	Optional   bool   `yaml:"optional"`
}

func Parse(data []byte, catalog *Catalog) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse: %w", err)
	}
	m.catalog = catalog
	return &m, nil
}

// ReadFile parses the manifest at path.
func ReadFile(path string, catalog *Catalog) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	m, err := Parse(data, catalog)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return m, nil
}

// Definitions turns every bean into a definition, in document order.
func (m *Manifest) Definitions() ([]*beanpod.Definition, error) {
	if m.catalog == nil {
		return nil, errors.New("manifest: no catalog")
	}

	defs := make([]*beanpod.Definition, 0, len(m.Beans))
	for i, b := range m.Beans {
		def, err := m.definition(b)
		if err != nil {
			if b.ID == "" {
				return nil, fmt.Errorf("beans[%d]: %w", i, err)
			}
			return nil, fmt.Errorf("bean %q: %w", b.ID, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (m *Manifest) definition(b Bean) (*beanpod.Definition, error) {
	if b.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidBean)
	}
	if b.Producer == "" {
		return nil, fmt.Errorf("%w: missing producer", ErrInvalidBean)
	}

	s, err := beanpod.ParseScope(b.Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBean, err)
	}

	params := make([]beanpod.Param, len(b.Args))
	for i, a := range b.Args {
		p, err := m.param(a)
		if err != nil {
			return nil, fmt.Errorf("args[%d]: %w", i, err)
		}
		params[i] = p
	}

	producer, err := m.catalog.producer(b.Producer, b.Factory, params)
	if err != nil {
		return nil, err
	}

	opts := []beanpod.DefinitionOption{beanpod.WithScope(s)}
	if b.Lazy {
		opts = append(opts, beanpod.WithLazy())
	}
	opts = append(opts, m.catalog.capabilities(b.Capabilities)...)

	if b.Init != "" {
		fn, err := m.catalog.callback(b.Init)
		if err != nil {
			return nil, err
		}
		opts = append(opts, beanpod.OnInit[any](fn))
	}
	if b.Destroy != "" {
		fn, err := m.catalog.callback(b.Destroy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, beanpod.OnDestroy[any](fn))
	}

	return beanpod.Define(b.ID, producer, opts...), nil
}

func (m *Manifest) param(a Arg) (beanpod.Param, error) {
	set := 0
	for _, ok := range []bool{a.Qualifier != "", a.Capability != "", a.Value != "", a.Literal != nil} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return beanpod.Param{}, fmt.Errorf("%w: arg sets more than one source", ErrInvalidBean)
	}

	var p beanpod.Param
	switch {
	case a.Qualifier != "":
		p = beanpod.Qualifier(a.Qualifier)
	case a.Capability != "":
		p = m.catalog.capabilityParam(a.Capability)
	case a.Value != "":
		p = beanpod.Value(a.Value)
		if a.Default != nil {
			p = p.Default(fmt.Sprint(a.Default))
		}
	case a.Literal != nil:
		p = beanpod.Literal(fmt.Sprint(a.Literal))
	default:
		p = beanpod.Auto()
	}

	if a.Optional {
		p = p.Optional()
	}
	return p, nil
}

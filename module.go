package beanpod

// Module groups definitions. Included modules contribute their definitions
// before the including module's own, and a module included more than once
// contributes only once.
type Module struct {
	name       string
	defs       []*Definition
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Add(defs ...*Definition) *Module {
	m.defs = append(m.defs, defs...)
	return m
}

func (m *Module) Include(submodules ...*Module) *Module {
	m.submodules = append(m.submodules, submodules...)
	return m
}

func (m *Module) Definitions() ([]*Definition, error) {
	var defs []*Definition
	m.collect(make(map[*Module]bool), &defs)
	return defs, nil
}

func (m *Module) collect(seen map[*Module]bool, defs *[]*Definition) {
	if seen[m] {
		return
	}
	seen[m] = true

	for _, sub := range m.submodules {
		sub.collect(seen, defs)
	}
	*defs = append(*defs, m.defs...)
}

// Apply registers the definitions of every module.
func (c *Container) Apply(modules ...*Module) error {
	for _, m := range modules {
		if err := c.Load(m); err != nil {
			return err
		}
	}
	return nil
}

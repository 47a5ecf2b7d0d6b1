package beanpod

// Replace swaps the definition registered under def's id, or adds it. It
// only works before Start and is meant for tests.
func (c *Container) Replace(def *Definition) error {
	built, err := def.build()
	if err != nil {
		return err
	}
	return c.internal.Replace(built)
}

// ReplaceValue registers value under id in place of whatever was there. The
// bean also provides T.
func ReplaceValue[T any](c *Container, id string, value T, opts ...DefinitionOption) error {
	opts = append([]DefinitionOption{As[T]()}, opts...)
	return c.Replace(Define(id, Instance(value), opts...))
}

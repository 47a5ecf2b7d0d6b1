package container

// Replace swaps a definition before startup, typically to stub a
// collaborator in tests. The replacement is planned immediately so a cycle it
// introduces is reported here.
func (c *Container) Replace(def *Definition) error {
	if c.Status() != StatusNew {
		return errRegistrationClosed
	}

	previous, _ := c.registry.ByID(def.ID)
	if err := c.registry.Replace(def); err != nil {
		return err
	}

	if err := c.resolver.Plan(def.ID); err != nil && HasCode(err, ErrCodeCircularDependency) {
		if previous != nil {
			_ = c.registry.Replace(previous)
		} else {
			c.registry.Remove(def.ID)
		}
		return err
	}

	c.logger.Debug("bean replaced", "bean", def.ID)
	return nil
}

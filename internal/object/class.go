package object

// Class is a Lox class: a name, its methods, and an optional single
// superclass (spec's single-inheritance object model).
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (*Class) loxValue() {}

// String implements spec §4.4's display form: a class prints as its
// bare name, not "<class NAME>".
func (c *Class) String() string {
	return c.Name
}

// FindMethod looks up name on this class, then walks the superclass
// chain (subclass-first method resolution order).
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

// Arity is the constructor's arity: the init method's, or 0 if the
// class (or its ancestors) defines none.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

package object

import "fmt"

// Instance is a live Lox object: a class pointer and a mutable field map.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, Fields: make(map[string]Value, 4)}
}

func (*Instance) loxValue() {}

// String implements spec §4.4's display form: "NAME instance".
func (i *Instance) String() string {
	return fmt.Sprintf("%s instance", i.Class.Name)
}

// Get implements property access (spec §4.4): fields take precedence
// over methods; a found method is returned bound to this instance.
func (i *Instance) Get(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	if m := i.Class.FindMethod(name); m != nil {
		return m.Bind(i), true
	}
	return nil, false
}

// Set assigns a field, creating it if it doesn't already exist. There
// are no setter methods in this object model.
func (i *Instance) Set(name string, v Value) {
	i.Fields[name] = v
}

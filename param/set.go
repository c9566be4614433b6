package param

import (
	"fmt"

	"git.disy.net/goetz/moomoot/pbus"
)

// ErrNoSuchParam is returned when assigning a parameter a unit does not
// declare.
type ErrNoSuchParam struct {
	Name string
}

func (e ErrNoSuchParam) Error() string {
	return fmt.Sprintf("param: no such parameter %q", e.Name)
}

// Slot names one mutable parameter of a unit.
type Slot struct {
	Name  string
	Value *Value
}

// Set lists the parameters of a unit in declaration order.
type Set []Slot

// Parametrized is implemented by every synth and effect.
type Parametrized interface {
	Params() Set
}

// NoParams can be embedded by units without parameters.
type NoParams struct{}

// Params returns an empty set.
func (NoParams) Params() Set { return nil }

// Assignment overrides one named parameter.
type Assignment struct {
	Name  string
	Value Value
}

// Lookup returns the slot value named name.
func (s Set) Lookup(name string) (*Value, bool) {
	for _, slot := range s {
		if slot.Name == name {
			return slot.Value, true
		}
	}
	return nil, false
}

// Check verifies every assignment names a slot of s.
func (s Set) Check(assignments []Assignment) error {
	for _, a := range assignments {
		if _, ok := s.Lookup(a.Name); !ok {
			return ErrNoSuchParam{Name: a.Name}
		}
	}
	return nil
}

// Assign applies assignments in order. Nothing is applied if one of them
// names an unknown slot.
func (s Set) Assign(assignments []Assignment) error {
	if err := s.Check(assignments); err != nil {
		return err
	}
	for _, a := range assignments {
		v, _ := s.Lookup(a.Name)
		*v = a.Value
	}
	return nil
}

// Connect connects every slot of s to buses.
func (s Set) Connect(buses *pbus.System) {
	for _, slot := range s {
		slot.Value.Connect(buses)
	}
}

// Names returns the slot names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, slot := range s {
		names[i] = slot.Name
	}
	return names
}

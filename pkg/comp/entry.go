// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package comp

import "fmt"

// Descriptor is a not-yet-instantiated component: a type name plus attribute values
type Descriptor struct {
	Type  string         `json:"type" yaml:"type"`
	Attrs map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Owner Component      `json:"-" yaml:"-"`
}

// Entry is one slot of a facet: exactly one of Desc or Comp is set
type Entry struct {
	Desc *Descriptor
	Comp Component
}

func Ref(c Component) Entry {
	return Entry{Comp: c}
}

func Desc(d Descriptor) Entry {
	return Entry{Desc: &d}
}

func Refs(comps ...Component) []Entry {
	rtn := make([]Entry, 0, len(comps))
	for _, c := range comps {
		rtn = append(rtn, Entry{Comp: c})
	}
	return rtn
}

func (e Entry) IsEmpty() bool {
	return e.Comp == nil && e.Desc == nil
}

func (e Entry) String() string {
	if e.Comp != nil {
		return Describe(e.Comp)
	}
	if e.Desc != nil {
		return fmt.Sprintf("descriptor(%s)", e.Desc.Type)
	}
	return "<empty>"
}

type Factory interface {
	Create(desc Descriptor) (Component, error)
}

type FactoryFunc func(desc Descriptor) (Component, error)

func (f FactoryFunc) Create(desc Descriptor) (Component, error) {
	return f(desc)
}

// Resolve returns the entry's component, instantiating a descriptor through factory.
// It returns nil (and no error) for an empty entry.
func (e Entry) Resolve(factory Factory) (Component, error) {
	if e.Comp != nil {
		return e.Comp, nil
	}
	if e.Desc == nil {
		return nil, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("no component factory to instantiate %q", e.Desc.Type)
	}
	c, err := factory.Create(*e.Desc)
	if err != nil {
		return nil, fmt.Errorf("instantiating %q: %w", e.Desc.Type, err)
	}
	return c, nil
}

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package comp

import (
	"fmt"
	"sort"
)

// Lookup resolves a component id to the live component (nil if unknown)
type Lookup interface {
	Get(id string) Component
}

type Registry struct {
	compMap map[string]Component
}

func MakeRegistry() *Registry {
	return &Registry{compMap: make(map[string]Component)}
}

func (r *Registry) Register(c Component) error {
	if c == nil {
		return fmt.Errorf("cannot register nil component")
	}
	id := c.GetId()
	if id == "" {
		return fmt.Errorf("cannot register component %q with empty id", c.GetType())
	}
	if existing, ok := r.compMap[id]; ok && existing != c {
		return fmt.Errorf("component id %s already registered (%s)", id, existing.GetType())
	}
	r.compMap[id] = c
	return nil
}

func (r *Registry) Unregister(id string) {
	delete(r.compMap, id)
}

func (r *Registry) Get(id string) Component {
	return r.compMap[id]
}

func (r *Registry) Len() int {
	return len(r.compMap)
}

// All returns the registered components sorted by id
func (r *Registry) All() []Component {
	rtn := make([]Component, 0, len(r.compMap))
	for _, c := range r.compMap {
		rtn = append(rtn, c)
	}
	sort.Slice(rtn, func(i, j int) bool { return rtn[i].GetId() < rtn[j].GetId() })
	return rtn
}

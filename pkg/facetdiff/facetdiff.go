// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// identity based reconciliation of facets (ordered child component lists)
package facetdiff

import (
	"fmt"
	"strings"

	"github.com/wavetermdev/facetengine/pkg/comp"
)

type ActionKind int

const (
	ActionRender ActionKind = iota
	ActionRerender
	ActionUnrender
)

func (k ActionKind) String() string {
	switch k {
	case ActionRender:
		return "render"
	case ActionRerender:
		return "rerender"
	case ActionUnrender:
		return "unrender"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one reconciliation step. OldIndex is -1 for renders, NewIndex is -1 for unrenders.
type Action struct {
	Kind     ActionKind
	Comp     comp.Component
	OldIndex int
	NewIndex int
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s [%d->%d]", a.Kind, comp.Describe(a.Comp), a.OldIndex, a.NewIndex)
}

type Result struct {
	Steps        []Action // render/rerender, in new facet order
	Unrendered   []Action // unrender, in reverse old index order
	Facet        []comp.Component
	UseFragment  bool
	FullUnrender bool
	HasNewMarker bool
}

// Actions returns every action in execution order (unrenders first)
func (r *Result) Actions() []Action {
	rtn := make([]Action, 0, len(r.Unrendered)+len(r.Steps))
	rtn = append(rtn, r.Unrendered...)
	rtn = append(rtn, r.Steps...)
	return rtn
}

func (r *Result) Count(kind ActionKind) int {
	var count int
	for _, a := range r.Actions() {
		if a.Kind == kind {
			count++
		}
	}
	return count
}

func (r *Result) String() string {
	var parts []string
	for _, a := range r.Actions() {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("fragment=%v full=%v newmarker=%v [%s]", r.UseFragment, r.FullUnrender, r.HasNewMarker, strings.Join(parts, ", "))
}

// Reconcile diffs prev against next by component identity.
//
// A child that is matched at a previous index lower than the greatest previous index matched so
// far, and whose slot moved, forces UseFragment: inserting the batch one child at a time
// would scatter its nodes. prev == nil (never rendered) makes every entry a render.
// next must not contain nil entries.
func Reconcile(prev []comp.Component, next []comp.Component) *Result {
	rtn := &Result{Facet: make([]comp.Component, 0, len(next))}
	consumed := make([]bool, len(prev))
	jmax := -1
	renderCount := 0
	for i, child := range next {
		found := false
		for j, old := range prev {
			if consumed[j] || old != child {
				continue
			}
			rtn.Steps = append(rtn.Steps, Action{Kind: ActionRerender, Comp: child, OldIndex: j, NewIndex: i})
			if j != i-renderCount && j < jmax {
				rtn.UseFragment = true
			}
			if j > jmax {
				jmax = j
			}
			consumed[j] = true
			found = true
			break
		}
		if !found {
			rtn.Steps = append(rtn.Steps, Action{Kind: ActionRender, Comp: child, OldIndex: -1, NewIndex: i})
			if i == 0 {
				rtn.HasNewMarker = true
			}
			renderCount++
		}
		rtn.Facet = append(rtn.Facet, child)
	}
	if len(rtn.Steps) == 0 {
		rtn.FullUnrender = true
	}
	for j := len(prev) - 1; j >= 0; j-- {
		if consumed[j] || prev[j] == nil {
			continue
		}
		rtn.Unrendered = append(rtn.Unrendered, Action{Kind: ActionUnrender, Comp: prev[j], OldIndex: j, NewIndex: -1})
	}
	return rtn
}

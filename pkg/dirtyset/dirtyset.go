// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// dirty component tracking and the rerender fixpoint loop
package dirtyset

import (
	"log"
	"strings"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"github.com/wavetermdev/facetengine/pkg/wps"
	"golang.org/x/net/html"
)

const DefaultMaxIterations = 1000

type Rerenderer interface {
	Rerender(cmps []comp.Component) ([]*html.Node, error)
}

type Tracker struct {
	lookup        comp.Lookup
	publisher     wps.Publisher
	maxIterations int
	dirty         map[string]map[string]bool
	queue         *utilds.OrderedSet
	needsCleaning bool
	draining      bool
}

// MakeTracker creates a tracker that resolves queued ids through lookup.
// publisher may be nil.
func MakeTracker(lookup comp.Lookup, publisher wps.Publisher, maxIterations int) *Tracker {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Tracker{
		lookup:        lookup,
		publisher:     publisher,
		maxIterations: maxIterations,
		dirty:         make(map[string]map[string]bool),
		queue:         utilds.MakeOrderedSet(),
	}
}

// expressionPaths returns expr and each of its dotted prefixes, longest first
func expressionPaths(expr string) []string {
	if expr == "" {
		return nil
	}
	rtn := []string{expr}
	for {
		idx := strings.LastIndex(expr, ".")
		if idx <= 0 {
			break
		}
		expr = expr[:idx]
		rtn = append(rtn, expr)
	}
	return rtn
}

// Mark records expr (and its prefixes) as dirty on c. Components that are not valid and
// rendered are ignored. A component is queued once, when its first dirty value is recorded.
func (t *Tracker) Mark(expr string, c comp.Component) {
	t.needsCleaning = true
	if c == nil || !c.IsValid() || !c.IsRendered() {
		return
	}
	id := c.GetId()
	vals := t.dirty[id]
	if vals == nil {
		vals = make(map[string]bool)
		t.dirty[id] = vals
		t.queue.Add(id)
	}
	for _, path := range expressionPaths(expr) {
		vals[path] = true
	}
}

func (t *Tracker) IsDirty(c comp.Component) bool {
	if c == nil {
		return false
	}
	_, ok := t.dirty[c.GetId()]
	return ok
}

func (t *Tracker) IsDirtyValue(expr string, c comp.Component) bool {
	if c == nil || !c.IsValid() {
		return false
	}
	return t.dirty[c.GetId()][expr]
}

// Unmark removes a single dirty value; the component is dequeued once it has none left
func (t *Tracker) Unmark(expr string, c comp.Component) {
	if c == nil || !c.IsValid() {
		return
	}
	id := c.GetId()
	vals := t.dirty[id]
	if vals == nil {
		return
	}
	delete(vals, expr)
	if len(vals) == 0 {
		t.Clean(id)
	}
}

// Clean drops every dirty value for id and removes it from the queue
func (t *Tracker) Clean(id string) {
	delete(t.dirty, id)
	t.queue.Remove(id)
}

// DirtyValues returns the recorded paths for id (unordered)
func (t *Tracker) DirtyValues(id string) []string {
	var rtn []string
	for path := range t.dirty[id] {
		rtn = append(rtn, path)
	}
	return rtn
}

// Queued returns the ids waiting to be drained, oldest first
func (t *Tracker) Queued() []string {
	return t.queue.Values()
}

func (t *Tracker) Len() int {
	return len(t.dirty)
}

// Drain rerenders dirty components until no new dirty values appear.
// Each pass pops the whole queue in FIFO order and rerenders the valid, rendered survivors as
// one batch. Exceeding the iteration ceiling means components keep dirtying each other and
// is returned as a maxiterations error. One doneRendering event is published per drain that
// had work.
func (t *Tracker) Drain(r Rerenderer) error {
	if !t.needsCleaning {
		return nil
	}
	if t.draining {
		return utilds.Errorf(utilds.ErrCode_Precondition, "dirty tracker drain is not re-entrant")
	}
	t.draining = true
	defer func() {
		t.draining = false
	}()
	var iterations, rerendered int
	for t.needsCleaning {
		if iterations >= t.maxIterations {
			return utilds.Errorf(utilds.ErrCode_MaxIterations, "rerender loop exceeded %d iterations (queued: %s)", t.maxIterations, strings.Join(t.queue.Values(), ","))
		}
		iterations++
		t.needsCleaning = false
		var batch []comp.Component
		for {
			id, ok := t.queue.PopFirst()
			if !ok {
				break
			}
			var c comp.Component
			if t.lookup != nil {
				c = t.lookup.Get(id)
			}
			if c == nil || !c.IsValid() || !c.IsRendered() {
				delete(t.dirty, id)
				continue
			}
			if c.IsUnrendering() {
				log.Printf("[dirtyset] skipping rerender of %s while it is unrendering\n", comp.Describe(c))
				delete(t.dirty, id)
				continue
			}
			batch = append(batch, c)
		}
		if len(batch) == 0 {
			continue
		}
		rerendered += len(batch)
		if _, err := r.Rerender(batch); err != nil {
			return err
		}
	}
	if t.publisher != nil {
		t.publisher.Publish(wps.WaveEvent{
			Event: wps.Event_DoneRendering,
			Data:  wps.DoneRenderingEventData{Iterations: iterations, Rerendered: rerendered},
		})
	}
	return nil
}

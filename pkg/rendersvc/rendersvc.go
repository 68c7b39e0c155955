// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// component rendering pipeline: render, rerender, unrender and facet reconciliation
package rendersvc

import (
	"log"
	"slices"

	"github.com/wavetermdev/facetengine/pkg/accessctx"
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/dirtyset"
	"github.com/wavetermdev/facetengine/pkg/fconfig"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"github.com/wavetermdev/facetengine/pkg/markerreg"
	"github.com/wavetermdev/facetengine/pkg/wps"
	"golang.org/x/net/html"
)

// Deps are the collaborators of a Service. nil fields get defaults built from Options.
type Deps struct {
	Options   *fconfig.Options
	Tree      hosttree.Adapter
	Registry  *comp.Registry
	Markers   *markerreg.Registry
	Dirty     *dirtyset.Tracker
	Access    *accessctx.Stack
	Factory   comp.Factory
	Publisher wps.Publisher
}

type Stats struct {
	Render      int `json:"render"`
	Rerender    int `json:"rerender"`
	Unrender    int `json:"unrender"`
	AfterRender int `json:"afterrender"`
	Reconcile   int `json:"reconcile"`
}

// Service is single threaded: every call runs to completion on the calling goroutine.
// Re-entrant calls from component callbacks are expected.
type Service struct {
	opts      *fconfig.Options
	tree      hosttree.Adapter
	registry  *comp.Registry
	markers   *markerreg.Registry
	dirty     *dirtyset.Tracker
	access    *accessctx.Stack
	factory   comp.Factory
	publisher wps.Publisher

	visited          map[string]bool // non-nil only inside a top-level Rerender
	afterRenderStack []comp.Component
	facetTopVisit    bool
	stats            Stats
}

func MakeService(deps Deps) *Service {
	opts := deps.Options
	if opts == nil {
		opts = fconfig.DefaultOptions()
	}
	tree := deps.Tree
	if tree == nil {
		tree = hosttree.MakeHTMLTree(opts.PlaceholderAttr)
	}
	registry := deps.Registry
	if registry == nil {
		registry = comp.MakeRegistry()
	}
	markers := deps.Markers
	if markers == nil {
		markers = markerreg.MakeRegistry(tree, opts.UidAttr)
	}
	dirty := deps.Dirty
	if dirty == nil {
		dirty = dirtyset.MakeTracker(registry, deps.Publisher, opts.MaxRerenderIterations)
	}
	access := deps.Access
	if access == nil {
		access = accessctx.MakeStack()
	}
	return &Service{
		opts:          opts,
		tree:          tree,
		registry:      registry,
		markers:       markers,
		dirty:         dirty,
		access:        access,
		factory:       deps.Factory,
		publisher:     deps.Publisher,
		facetTopVisit: true,
	}
}

// SetFactory sets the factory used to instantiate descriptors (components built by the
// factory usually need the service themselves)
func (s *Service) SetFactory(factory comp.Factory) {
	s.factory = factory
}

func (s *Service) Options() *fconfig.Options {
	return s.opts
}

func (s *Service) Tree() hosttree.Adapter {
	return s.tree
}

func (s *Service) Registry() *comp.Registry {
	return s.registry
}

func (s *Service) Markers() *markerreg.Registry {
	return s.markers
}

func (s *Service) Dirty() *dirtyset.Tracker {
	return s.dirty
}

func (s *Service) Access() *accessctx.Stack {
	return s.access
}

func (s *Service) Stats() Stats {
	return s.stats
}

// EngineAttrs are the bookkeeping attributes the engine writes onto host nodes
func (s *Service) EngineAttrs() []string {
	return []string{s.opts.UidAttr, s.opts.RenderedByAttr, s.opts.StyleClassAttr}
}

func (s *Service) publish(event wps.WaveEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

func (s *Service) publishRender(c comp.Component) {
	s.publish(wps.WaveEvent{
		Event:  wps.Event_Render,
		Scopes: []string{c.GetId()},
		Data:   wps.RenderEventData{ComponentId: c.GetId(), ComponentType: c.GetType()},
	})
}

// instantiate resolves an entry and registers the component. nil (no error) means the
// entry was empty and has been skipped.
func (s *Service) instantiate(entry comp.Entry, where string, idx int) (comp.Component, error) {
	if entry.IsEmpty() {
		log.Printf("[rendersvc] %s: entry %d was not a valid component\n", where, idx)
		return nil, nil
	}
	c, err := entry.Resolve(s.factory)
	if err != nil {
		return nil, err
	}
	if err := s.registry.Register(c); err != nil {
		return nil, preconditionErr("%s: %v", where, err)
	}
	return c, nil
}

// Render renders entries (instantiating descriptors), associates the produced nodes with
// their components and appends them to parent when it is non-nil.
func (s *Service) Render(entries []comp.Entry, parent *html.Node) ([]*html.Node, error) {
	cmps := make([]comp.Component, 0, len(entries))
	for idx, entry := range entries {
		c, err := s.instantiate(entry, "render", idx)
		if err != nil {
			return nil, err
		}
		if c != nil {
			cmps = append(cmps, c)
		}
	}
	return s.renderComponents(cmps, parent)
}

// Mount renders entries into parent and then runs their after-render callbacks
func (s *Service) Mount(entries []comp.Entry, parent *html.Node) ([]comp.Component, error) {
	cmps := make([]comp.Component, 0, len(entries))
	for idx, entry := range entries {
		c, err := s.instantiate(entry, "mount", idx)
		if err != nil {
			return nil, err
		}
		if c != nil {
			cmps = append(cmps, c)
		}
	}
	if _, err := s.renderComponents(cmps, parent); err != nil {
		return nil, err
	}
	if err := s.AfterRender(cmps); err != nil {
		return nil, err
	}
	return cmps, nil
}

func (s *Service) renderComponents(cmps []comp.Component, parent *html.Node) ([]*html.Node, error) {
	var elements []*html.Node
	for _, c := range cmps {
		if c == nil || !c.IsValid() {
			continue
		}
		if err := s.registry.Register(c); err != nil {
			return nil, preconditionErr("render: %v", err)
		}
		nodes, err := s.renderOne(c)
		if err != nil {
			return nil, err
		}
		elements = append(elements, nodes...)
	}
	if parent != nil && len(elements) > 0 {
		s.tree.Insert(elements, parent, hosttree.AsLastChild)
	}
	return elements, nil
}

func (s *Service) renderOne(c comp.Component) (rtn []*html.Node, rtnErr error) {
	s.access.Push(c)
	defer s.access.Release()
	defer recoverCallback(Op_Render, c, &rtnErr)
	s.stats.Render++
	result, err := c.Render()
	if err != nil {
		return nil, wrapCallbackErr(Op_Render, c, err)
	}
	nodes, err := s.normalizeNodes(result)
	if err != nil {
		return nil, wrapCallbackErr(Op_Render, c, err)
	}
	return s.finishRender(c, nodes), nil
}

// finishRender associates nodes with c and makes sure c has a marker; a component that
// rendered nothing gets a placeholder, which is returned so it is inserted with the rest.
func (s *Service) finishRender(c comp.Component, nodes []*html.Node) []*html.Node {
	st := c.State()
	s.disassociateElements(c)
	s.associateElements(c, nodes)
	if st.Marker == nil {
		if len(nodes) == 0 {
			ph := s.createPlaceholder(nil, "render: "+c.GetId())
			nodes = []*html.Node{ph}
			s.associateElements(c, nodes)
		}
		s.SetMarker(c, st.AllElements[0])
	}
	st.Rendered = true
	s.dirty.Clean(c.GetId())
	return nodes
}

// Rerender reruns the rerender callback of each component at most once per top-level call.
// A nil callback result means nothing changed and the previous real nodes are returned.
// When the top-level call finishes, queued after-render callbacks run and a render event is
// published for each component.
func (s *Service) Rerender(cmps []comp.Component) ([]*html.Node, error) {
	return s.rerenderComponents(cmps, false)
}

func (s *Service) rerenderComponents(cmps []comp.Component, keepMarkers bool) (rtn []*html.Node, rtnErr error) {
	topVisit := false
	if s.visited == nil {
		s.visited = make(map[string]bool)
		topVisit = true
		defer func() {
			s.visited = nil
			s.afterRenderStack = nil
		}()
	}
	var elements []*html.Node
	for _, c := range cmps {
		if c == nil {
			continue
		}
		id := c.GetId()
		if !c.IsValid() {
			s.dirty.Clean(id)
			continue
		}
		var result []*html.Node
		if !s.visited[id] {
			if !c.IsRendered() {
				return nil, preconditionErr("rerender: attempt to rerender component %s that has not been rendered", comp.Describe(c))
			}
			nodes, err := s.rerenderOne(c)
			if err != nil {
				return nil, err
			}
			result = nodes
		}
		switch {
		case result != nil:
			elements = append(elements, result...)
		case keepMarkers:
			elements = append(elements, c.State().AllElements...)
		default:
			elements = append(elements, c.State().Elements...)
		}
	}
	if topVisit {
		s.visited = nil
		afterRender := s.afterRenderStack
		s.afterRenderStack = nil
		if err := s.AfterRender(afterRender); err != nil {
			return nil, err
		}
		for _, c := range cmps {
			if c != nil && c.IsValid() {
				s.publishRender(c)
			}
		}
	}
	return elements, nil
}

// rerenderOne returns nil nodes when the callback reported no change
func (s *Service) rerenderOne(c comp.Component) (rtn []*html.Node, rtnErr error) {
	id := c.GetId()
	s.access.Push(c)
	defer func() {
		s.dirty.Clean(id)
		if s.visited != nil {
			s.visited[id] = true
		}
		s.access.Release()
	}()
	defer recoverCallback(Op_Rerender, c, &rtnErr)
	s.stats.Rerender++
	result, err := c.Rerender()
	if err != nil {
		return nil, wrapCallbackErr(Op_Rerender, c, err)
	}
	if result == nil {
		return nil, nil
	}
	nodes, err := s.normalizeNodes(result)
	if err != nil {
		return nil, wrapCallbackErr(Op_Rerender, c, err)
	}
	if nodes == nil {
		nodes = []*html.Node{}
	}
	return nodes, nil
}

// AfterRender runs the after-render callback of each valid component and publishes its
// render event
func (s *Service) AfterRender(cmps []comp.Component) error {
	for _, c := range cmps {
		if c == nil {
			log.Printf("[rendersvc] afterRender: nil component\n")
			continue
		}
		if !c.IsValid() {
			continue
		}
		if err := s.afterRenderOne(c); err != nil {
			return err
		}
		s.publishRender(c)
	}
	return nil
}

func (s *Service) afterRenderOne(c comp.Component) error {
	return accessctx.With(s.access, c, func() (rtnErr error) {
		defer recoverCallback(Op_AfterRender, c, &rtnErr)
		s.stats.AfterRender++
		return wrapCallbackErr(Op_AfterRender, c, c.AfterRender())
	})
}

// Unrender runs the unrender callback of each rendered component. The nodes of a component
// whose parent is not itself unrendering are removed from the host tree afterwards.
func (s *Service) Unrender(cmps []comp.Component) error {
	for _, c := range cmps {
		if c == nil || c.State().Destroyed == comp.Destroyed || !c.IsRendered() {
			continue
		}
		if err := s.unrenderOne(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) unrenderOne(c comp.Component) (rtnErr error) {
	st := c.State()
	st.Unrendering = true
	s.access.Push(c)
	container := comp.ParentOf(c)
	var beforeUnrender []*html.Node
	if container == nil || !container.IsUnrendering() {
		// top of the unrendering subtree (or a mounted root), nobody above will remove these nodes
		beforeUnrender = slices.Clone(st.AllElements)
	}
	defer func() {
		s.access.Release()
		oldContainerMarker := s.GetMarker(container)
		marker := st.Marker
		s.SetMarker(c, nil)
		s.removeElement(marker, container)
		for _, node := range beforeUnrender {
			s.detachNode(node)
		}
		// the container may have been moved onto a placeholder, keep its chain in step
		if newContainerMarker := s.GetMarker(container); oldContainerMarker != newContainerMarker {
			s.moveContainerReferencesToMarker(container, oldContainerMarker, newContainerMarker)
		}
		if st.Destroyed != comp.Destroyed {
			st.Rendered = false
			st.Unrendering = false
			st.Elements = nil
			st.AllElements = nil
			if s.visited != nil {
				s.visited[c.GetId()] = true
			}
			s.dirty.Clean(c.GetId())
		}
	}()
	defer recoverCallback(Op_Unrender, c, &rtnErr)
	s.stats.Unrender++
	return wrapCallbackErr(Op_Unrender, c, c.Unrender())
}

// Destroy unrenders c and removes every trace of it from the engine: marker references,
// dirty values and its registry entry. Destroying an already destroyed component is a no-op.
func (s *Service) Destroy(c comp.Component) error {
	if c == nil {
		return nil
	}
	st := c.State()
	if st.Destroyed != comp.Alive {
		return nil
	}
	st.Destroyed = comp.Destroying
	unrenderErr := s.Unrender([]comp.Component{c})
	if st.Marker != nil {
		marker := st.Marker
		s.SetMarker(c, nil)
		s.removeElement(marker, c.GetContainer())
	}
	st.Elements = nil
	st.AllElements = nil
	st.Facet = nil
	st.Rendered = false
	st.Unrendering = false
	st.Destroyed = comp.Destroyed
	id := c.GetId()
	s.markers.Forget(id)
	s.dirty.Clean(id)
	s.registry.Unregister(id)
	if super := c.GetSuper(); super != nil {
		if err := s.Destroy(super); err != nil && unrenderErr == nil {
			unrenderErr = err
		}
	}
	return unrenderErr
}

// MarkDirty records a stale expression on c, see dirtyset.Tracker.Mark
func (s *Service) MarkDirty(expr string, c comp.Component) {
	s.dirty.Mark(expr, c)
}

// RerenderDirty drains the dirty set to a fixpoint
func (s *Service) RerenderDirty() error {
	return s.dirty.Drain(s)
}

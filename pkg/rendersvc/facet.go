// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package rendersvc

import (
	"log"
	"slices"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/facetdiff"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"golang.org/x/net/html"
)

// getFacetInfo instantiates the facet entries and makes c their container
func (s *Service) getFacetInfo(c comp.Component, facet []comp.Entry) ([]comp.Component, error) {
	if c == nil {
		return nil, preconditionErr("facet owner must be a component")
	}
	rtn := make([]comp.Component, 0, len(facet))
	for idx, entry := range facet {
		fc, err := s.instantiate(entry, "getFacetInfo "+comp.Describe(c), idx)
		if err != nil {
			return nil, err
		}
		if fc == nil {
			continue
		}
		// components created dynamically use their creator as container until rendered here
		fc.SetContainer(c)
		rtn = append(rtn, fc)
	}
	return rtn, nil
}

// RenderFacet renders facet on behalf of c and stores it as c's current facet. With a parent
// the nodes are appended to it and parent becomes c's marker, otherwise c's marker is the
// first rendered node (a new placeholder when the facet renders nothing).
func (s *Service) RenderFacet(c comp.Component, facet []comp.Entry, parent *html.Node) ([]*html.Node, error) {
	cmps, err := s.getFacetInfo(c, facet)
	if err != nil {
		return nil, err
	}
	c.State().Facet = slices.Clone(cmps)
	nodes, err := s.renderComponents(cmps, parent)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		s.SetMarker(c, parent)
		return nodes, nil
	}
	if len(nodes) == 0 {
		nodes = []*html.Node{s.createPlaceholder(nil, "render facet: "+c.GetId())}
	}
	s.SetMarker(c, nodes[0])
	return nodes, nil
}

func childAt(tree hosttree.Adapter, parent *html.Node, idx int) *html.Node {
	if parent == nil || idx < 0 {
		return nil
	}
	for i, child := range tree.ChildrenOf(parent) {
		if i == idx {
			return child
		}
	}
	return nil
}

// insertElements inserts nodes into target before next (appending when next is nil)
func (s *Service) insertElements(nodes []*html.Node, target *html.Node, next *html.Node) {
	if len(nodes) == 0 {
		return
	}
	if next != nil {
		s.tree.Insert(nodes, next, hosttree.Before)
		return
	}
	s.tree.Insert(nodes, target, hosttree.AsLastChild)
}

func (s *Service) countAttached(nodes []*html.Node, target *html.Node) int {
	var count int
	for _, n := range nodes {
		if target != nil && s.tree.ParentOf(n) == target {
			count++
		}
	}
	return count
}

// RerenderFacet reconciles c's stored facet against facet and updates the host tree:
// dropped children are unrendered (or destroyed), new children rendered and inserted, kept
// children rerendered when dirty. referenceNode is the node the children live in (nil means
// the parent of c's marker). Returns c's new top-level nodes.
func (s *Service) RerenderFacet(c comp.Component, facet []comp.Entry, referenceNode *html.Node) ([]*html.Node, error) {
	if c == nil {
		return nil, preconditionErr("rerenderFacet: facet owner must be a component")
	}
	cmps := make([]comp.Component, 0, len(facet))
	for idx, entry := range facet {
		fc, err := s.instantiate(entry, "rerenderFacet "+comp.Describe(c), idx)
		if err != nil {
			return nil, err
		}
		if fc != nil {
			cmps = append(cmps, fc)
		}
	}
	st := c.State()
	marker := s.GetMarker(c)
	if marker == nil {
		return nil, preconditionErr("rerenderFacet: %s has no marker, it must be rendered first", comp.Describe(c))
	}
	result := facetdiff.Reconcile(st.Facet, cmps)
	s.stats.Reconcile++
	if s.opts.LogReconcile {
		log.Printf("[rendersvc] reconcile %s: %s\n", comp.Describe(c), result)
	}
	target := referenceNode
	if target == nil {
		target = s.tree.ParentOf(marker)
	}
	topVisit := s.facetTopVisit
	var beforeRerender []*html.Node
	if topVisit {
		// the container chain is patched once, against the elements before this call
		s.facetTopVisit = false
		defer func() {
			s.facetTopVisit = true
		}()
		beforeRerender = slices.Clone(st.AllElements)
	}
	calculatedPosition := 0
	if marker != target {
		calculatedPosition += s.getInsertPosition(c, target)
	}

	for _, action := range result.Unrendered {
		uc := action.Comp
		if !uc.IsValid() {
			continue
		}
		// the first child is going away, move the marker off its nodes
		if action.OldIndex == 0 && !comp.IsHostElement(c) {
			marker = s.GetMarker(c)
			ucElements := uc.State().AllElements
			if len(ucElements) > 0 && marker == ucElements[0] {
				var newMarker *html.Node
				if result.HasNewMarker || s.tree.NextSiblingOf(marker) == nil || result.FullUnrender {
					// the new first child gets inserted after this placeholder
					newMarker = s.createPlaceholder(marker, "unrender facet: "+c.GetId())
					calculatedPosition++
				} else {
					// first node past the ones owned by the child being unrendered
					next := s.tree.NextSiblingOf(marker)
					for count := len(ucElements) - 1; count > 0 && s.tree.NextSiblingOf(next) != nil; count-- {
						next = s.tree.NextSiblingOf(next)
					}
					newMarker = next
				}
				s.SetMarker(c, newMarker)
				s.moveContainerReferencesToMarker(c, marker, newMarker)
			}
		}
		if comp.IsAutoDestroy(uc) {
			s.dirty.Clean(uc.GetId())
			if err := s.Destroy(uc); err != nil {
				return nil, err
			}
		} else {
			if err := s.Unrender([]comp.Component{uc}); err != nil {
				return nil, err
			}
			s.disassociateElements(uc)
			s.dirty.Clean(uc.GetId())
		}
	}

	var ret []*html.Node
	var renderedCmps []comp.Component
	for _, step := range result.Steps {
		fc := step.Comp
		if !fc.IsValid() {
			continue
		}
		switch step.Kind {
		case facetdiff.ActionRender:
			fc.SetContainer(c)
			rendered, err := s.renderComponents([]comp.Component{fc}, nil)
			if err != nil {
				return nil, err
			}
			ret = append(ret, rendered...)
			if !result.UseFragment && len(rendered) > 0 {
				if target == nil {
					log.Printf("[rendersvc] rendering error: the node for %s was removed from the host tree outside of the engine lifecycle, further updates to it and its children cannot be rendered (access: %s)\n", comp.Describe(c), s.access.Hierarchy())
				} else {
					s.insertElements(rendered, target, childAt(s.tree, target, calculatedPosition))
					calculatedPosition += len(rendered)
				}
			}
			renderedCmps = append(renderedCmps, fc)
		case facetdiff.ActionRerender:
			var rendered []*html.Node
			if s.dirty.IsDirty(fc) {
				nodes, err := s.rerenderComponents([]comp.Component{fc}, true)
				if err != nil {
					return nil, err
				}
				rendered = nodes
			} else {
				rendered = slices.Clone(fc.State().AllElements)
			}
			s.disassociateElements(fc)
			s.associateElements(fc, rendered)
			ret = append(ret, rendered...)
			if result.UseFragment {
				// only nodes still in place count towards the fragment's anchor
				calculatedPosition += s.countAttached(rendered, target)
			} else {
				calculatedPosition += len(rendered)
			}
		}
	}
	st.Facet = result.Facet
	if result.UseFragment && target != nil {
		s.insertElements(ret, target, childAt(s.tree, target, calculatedPosition))
	}

	if !comp.IsHostElement(c) {
		marker = s.GetMarker(c)
		if len(ret) > 0 && marker != ret[0] {
			s.SetMarker(c, ret[0])
			s.moveContainerReferencesToMarker(c, marker, ret[0])
			if s.tree.IsPlaceholder(marker) && !slices.Contains(ret, marker) {
				s.removeElement(marker, nil)
			}
		} else if len(ret) == 0 && marker != nil {
			ret = append(ret, marker)
		}
		s.disassociateElements(c)
		s.associateElements(c, ret)
		if topVisit {
			s.updateElementsOnContainers(c, beforeRerender)
		}
	}
	// inside a rerender the after-render callbacks run when the top-level call finishes
	if s.visited != nil {
		s.afterRenderStack = append(s.afterRenderStack, renderedCmps...)
	} else if err := s.AfterRender(renderedCmps); err != nil {
		return nil, err
	}
	return ret, nil
}

// getInsertPosition returns the index in target's children where c's nodes start, counting
// nodes that are in the host tree but unknown to c
func (s *Service) getInsertPosition(c comp.Component, target *html.Node) int {
	marker := s.GetMarker(c)
	elements := c.State().AllElements
	length := len(elements)
	totalPreSiblings := 0
	for current := marker; current != nil && s.tree.PreviousSiblingOf(current) != nil; current = s.tree.PreviousSiblingOf(current) {
		totalPreSiblings++
	}
	var current *html.Node
	if target == nil {
		if length > 0 {
			current = elements[length-1]
		}
	} else {
		// element order may differ from host order, find the real last one
		current = s.getLastSharedElementInCollection(elements, s.tree.ChildrenOf(target))
	}
	totalElements := 0
	for current != nil {
		totalElements++
		if current == marker {
			break
		}
		current = s.tree.PreviousSiblingOf(current)
	}
	return totalPreSiblings + totalElements - length
}

// getLastSharedElementInCollection returns the element of cmpElements that comes last in hostNodes
func (s *Service) getLastSharedElementInCollection(cmpElements []*html.Node, hostNodes []*html.Node) *html.Node {
	if len(cmpElements) == 0 || len(hostNodes) == 0 {
		return nil
	}
	var lastElement *html.Node
	largestIndex := -1
	for _, element := range cmpElements {
		if idx := slices.Index(hostNodes, element); idx > largestIndex {
			largestIndex = idx
			lastElement = element
		}
	}
	return lastElement
}

// updateElementsOnContainers splices c's new element range over oldElements in every
// container up the chain, starting where the old range begins
func (s *Service) updateElementsOnContainers(c comp.Component, oldElements []*html.Node) {
	container := c.GetContainer()
	if container == nil {
		return
	}
	updatedElements := c.State().AllElements
	if slices.Equal(updatedElements, oldElements) {
		return
	}
	visited := map[string]bool{c.GetId(): true}
	marker := s.GetMarker(c)
	for container != nil {
		id := container.GetId()
		if comp.IsHostElement(container) || !container.IsRendered() || visited[id] {
			break
		}
		containerElements := slices.Clone(container.State().AllElements)
		// the old range starts at oldElements[0] unless a marker move already replaced it
		idx := -1
		if len(oldElements) > 0 {
			idx = slices.Index(containerElements, oldElements[0])
		}
		if idx < 0 {
			idx = slices.Index(containerElements, marker)
		}
		if idx < 0 {
			log.Printf("[rendersvc] container %s is missing the marker of %s\n", comp.Describe(container), comp.Describe(c))
		} else {
			end := min(idx+len(oldElements), len(containerElements))
			containerElements = slices.Replace(containerElements, idx, end, updatedElements...)
			s.disassociateElements(container)
			s.associateElements(container, containerElements)
		}
		visited[id] = true
		container = container.GetContainer()
	}
}

// UnrenderFacet unrenders c's stored facet (destroying auto-destroy children when c itself is
// being destroyed) plus the extra components in facet, then lets go of c's nodes
func (s *Service) UnrenderFacet(c comp.Component, facet []comp.Component) error {
	st := c.State()
	if st.Facet != nil {
		var facetInfo []comp.Component
		if st.Destroyed == comp.Destroying && !comp.BorrowsFacet(c) {
			for _, fc := range st.Facet {
				if comp.IsAutoDestroy(fc) {
					if err := s.Destroy(fc); err != nil {
						return err
					}
				} else {
					facetInfo = append(facetInfo, fc)
				}
			}
		} else {
			facetInfo = st.Facet
		}
		st.Facet = nil
		if err := s.Unrender(facetInfo); err != nil {
			return err
		}
	}
	if len(facet) > 0 {
		if err := s.Unrender(facet); err != nil {
			return err
		}
	}
	elements := st.AllElements
	id := c.GetId()
	for i := len(elements) - 1; i >= 0; i-- {
		if elements[i] == st.Marker {
			s.SetMarker(c, nil)
		} else {
			s.markers.RemoveReference(elements[i], id)
		}
		s.removeElement(elements[i], c)
	}
	s.disassociateElements(c)
	return nil
}

// ReplaceElements swaps c's nodes for nodes in place (used by components whose rerender
// produces new nodes instead of a facet). Markers and container element lists follow.
func (s *Service) ReplaceElements(c comp.Component, nodes []*html.Node) []*html.Node {
	st := c.State()
	oldElements := slices.Clone(st.AllElements)
	oldMarker := s.GetMarker(c)
	if len(nodes) == 0 {
		nodes = []*html.Node{s.createPlaceholder(nil, "replace: "+c.GetId())}
	}
	var anchor *html.Node
	for _, n := range oldElements {
		if s.tree.ParentOf(n) != nil {
			anchor = n
			break
		}
	}
	if anchor == nil && oldMarker != nil && s.tree.ParentOf(oldMarker) != nil {
		anchor = oldMarker
	}
	if anchor != nil {
		s.tree.Insert(nodes, anchor, hosttree.Before)
	} else {
		log.Printf("[rendersvc] replaceElements: %s has no node in the host tree\n", comp.Describe(c))
	}
	s.disassociateElements(c)
	s.associateElements(c, nodes)
	if oldMarker != nodes[0] {
		s.SetMarker(c, nodes[0])
		s.moveContainerReferencesToMarker(c, oldMarker, nodes[0])
	}
	for _, n := range oldElements {
		if !slices.Contains(nodes, n) {
			s.detachNode(n)
		}
	}
	s.updateElementsOnContainers(c, oldElements)
	return nodes
}

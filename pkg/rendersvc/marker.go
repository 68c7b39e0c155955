// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package rendersvc

import (
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"golang.org/x/net/html"
)

func (s *Service) GetMarker(c comp.Component) *html.Node {
	if c == nil || c.State().Destroyed == comp.Destroyed {
		return nil
	}
	return c.State().Marker
}

// SetMarker moves c's marker reference to newMarker (nil clears it)
func (s *Service) SetMarker(c comp.Component, newMarker *html.Node) {
	if c == nil {
		return
	}
	st := c.State()
	oldMarker := st.Marker
	if oldMarker == newMarker {
		return
	}
	id := c.GetId()
	if newMarker != nil {
		s.markers.AddReference(newMarker, id)
	}
	if oldMarker != nil {
		s.markers.RemoveReference(oldMarker, id)
	}
	st.Marker = newMarker
}

// createPlaceholder makes a placeholder node, inserted before target when target is non-nil
func (s *Service) createPlaceholder(target *html.Node, label string) *html.Node {
	ph := s.tree.CreatePlaceholder(label)
	if target != nil {
		s.tree.Insert([]*html.Node{ph}, target, hosttree.Before)
	}
	return ph
}

// removeElement removes a node that was a marker, honoring the references left on it.
// Nothing is removed while container is unrendering (the container removes its own nodes).
// A placeholder that is still referenced stays. A real node that is still referenced has its
// references migrated to a new placeholder first. Real nodes of a destroying container are
// left for the container to remove.
func (s *Service) removeElement(node *html.Node, container comp.Component) {
	if node == nil {
		return
	}
	if container != nil && container.IsUnrendering() {
		return
	}
	if s.markers.Referenced(node) {
		if s.tree.IsPlaceholder(node) {
			return
		}
		s.moveReferencesToPlaceholder(node)
	} else if container != nil && container.State().Destroyed == comp.Destroying && !s.tree.IsPlaceholder(node) {
		return
	}
	s.tree.Remove(node)
}

// detachNode removes an owned node at the top of an unrendering subtree
func (s *Service) detachNode(node *html.Node) {
	if node == nil {
		return
	}
	if s.markers.Referenced(node) {
		if s.tree.IsPlaceholder(node) {
			return
		}
		s.moveReferencesToPlaceholder(node)
	}
	s.tree.Remove(node)
}

func placeholderLabel(node *html.Node) string {
	switch node.Type {
	case html.ElementNode:
		return "<" + node.Data + ">"
	case html.TextNode:
		data := strings.TrimSpace(node.Data)
		if len(data) > 20 {
			data = data[:20]
		}
		return fmt.Sprintf("%q", data)
	}
	return node.Data
}

// moveReferencesToPlaceholder repoints every component using node as marker to a new
// placeholder inserted right before node
func (s *Service) moveReferencesToPlaceholder(node *html.Node) {
	ph := s.createPlaceholder(nil, "unrender marker: "+placeholderLabel(node))
	ids, err := s.markers.MigrateReferences(node, ph)
	if err != nil {
		log.Printf("[rendersvc] cannot move marker references: %v\n", err)
		return
	}
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		c := s.registry.Get(id)
		if c == nil || c.State().Destroyed != comp.Alive {
			s.markers.RemoveReference(ph, id)
			continue
		}
		c.State().Marker = ph
		s.replaceMarkerElement(c, node, ph)
	}
	if s.markers.Referenced(ph) {
		s.tree.Insert([]*html.Node{ph}, node, hosttree.Before)
	}
}

// moveContainerReferencesToMarker walks up c's containers replacing oldMarker with newMarker,
// both as the container's marker and inside its element lists
func (s *Service) moveContainerReferencesToMarker(c comp.Component, oldMarker *html.Node, newMarker *html.Node) {
	if c == nil {
		return
	}
	visited := map[string]bool{c.GetId(): true}
	for container := c.GetContainer(); container != nil; container = container.GetContainer() {
		id := container.GetId()
		if comp.IsHostElement(container) || !container.IsRendered() || visited[id] {
			break
		}
		visited[id] = true
		if s.GetMarker(container) == oldMarker {
			s.SetMarker(container, newMarker)
		}
		s.replaceMarkerElement(container, oldMarker, newMarker)
	}
}

func (s *Service) replaceMarkerElement(c comp.Component, oldMarker *html.Node, newMarker *html.Node) {
	st := c.State()
	if len(st.AllElements) == 0 {
		st.AllElements = []*html.Node{newMarker}
		st.Elements = nil
		if !s.tree.IsPlaceholder(newMarker) {
			st.Elements = []*html.Node{newMarker}
		}
		return
	}
	if slices.Contains(st.AllElements, newMarker) {
		return
	}
	pos := slices.Index(st.AllElements, oldMarker)
	if pos == -1 {
		log.Printf("[rendersvc] replaceMarkerElement: missing marker on component %s\n", comp.Describe(c))
		st.AllElements = append(st.AllElements, newMarker)
	} else {
		st.AllElements[pos] = newMarker
	}
	st.Elements = s.realNodes(st.AllElements)
}

// CheckMarkers verifies the marker invariants over every registered component: a rendered
// component has a marker that is one of its nodes or a placeholder, and each node's
// reference count equals the number of live components using it.
func (s *Service) CheckMarkers() error {
	var problems []string
	counts := make(map[string]int)
	for _, c := range s.registry.All() {
		st := c.State()
		if !c.IsValid() {
			continue
		}
		if st.Marker == nil {
			if c.IsRendered() {
				problems = append(problems, fmt.Sprintf("%s is rendered without a marker", comp.Describe(c)))
			}
			continue
		}
		if !s.markers.HasReference(st.Marker, c.GetId()) {
			problems = append(problems, fmt.Sprintf("%s marker has no reference entry", comp.Describe(c)))
		}
		counts[s.markers.Uid(st.Marker)]++
		if !s.tree.IsPlaceholder(st.Marker) && !slices.Contains(st.AllElements, st.Marker) && !comp.IsHostElement(c) {
			problems = append(problems, fmt.Sprintf("%s marker is neither owned nor a placeholder", comp.Describe(c)))
		}
		if c.IsRendered() && s.tree.ParentOf(st.Marker) == nil {
			problems = append(problems, fmt.Sprintf("%s marker is detached", comp.Describe(c)))
		}
	}
	for uid, ids := range s.markers.Snapshot() {
		if counts[uid] != len(ids) {
			problems = append(problems, fmt.Sprintf("marker %s has %d references, %d components use it (%s)", uid, len(ids), counts[uid], strings.Join(ids, ",")))
		}
	}
	if len(problems) > 0 {
		slices.Sort(problems)
		return preconditionErr("marker check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

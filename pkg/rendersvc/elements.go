// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package rendersvc

import (
	"strings"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"golang.org/x/net/html"
)

// normalizeNodes accepts nil, *html.Node, []*html.Node or a markup string
func (s *Service) normalizeNodes(result any) ([]*html.Node, error) {
	switch rv := result.(type) {
	case nil:
		return nil, nil
	case *html.Node:
		if rv == nil {
			return nil, nil
		}
		return []*html.Node{rv}, nil
	case []*html.Node:
		rtn := make([]*html.Node, 0, len(rv))
		for _, n := range rv {
			if n != nil {
				rtn = append(rtn, n)
			}
		}
		return rtn, nil
	case string:
		return s.tree.ParseFragment(rv)
	}
	return nil, preconditionErr("unsupported render result type %T", result)
}

func (s *Service) realNodes(nodes []*html.Node) []*html.Node {
	var rtn []*html.Node
	for _, n := range nodes {
		if !s.tree.IsPlaceholder(n) {
			rtn = append(rtn, n)
		}
	}
	return rtn
}

// flavorClass returns the style class of c followed by one "base--flavor" class per
// comma separated flavor, or "" when c has no style class
func flavorClass(c comp.Component) string {
	styled, ok := c.(comp.Styled)
	if !ok {
		return ""
	}
	base := strings.TrimSpace(styled.StyleClassName())
	if base == "" {
		return ""
	}
	classes := []string{base}
	for _, flavor := range strings.Split(styled.Flavor(), ",") {
		flavor = strings.TrimSpace(flavor)
		if flavor == "" {
			continue
		}
		classes = append(classes, base+"--"+flavor)
	}
	return strings.Join(classes, " ")
}

func (s *Service) addStyleClass(c comp.Component, node *html.Node) {
	className := flavorClass(c)
	if className == "" || node.Type != html.ElementNode {
		return
	}
	for _, class := range strings.Fields(className) {
		s.tree.AddClass(node, class)
	}
	oldVal, _ := s.tree.GetAttr(node, s.opts.StyleClassAttr)
	newVal := oldVal
	for _, class := range strings.Fields(className) {
		newVal = hosttree.BuildClass(newVal, class)
	}
	if newVal != oldVal {
		s.tree.SetAttr(node, s.opts.StyleClassAttr, newVal)
	}
}

// associateElements appends nodes to c's element lists; real nodes get the style class and
// (the first time) the rendered-by attribute
func (s *Service) associateElements(c comp.Component, nodes []*html.Node) {
	st := c.State()
	for _, node := range nodes {
		if node == nil {
			continue
		}
		st.AllElements = append(st.AllElements, node)
		if s.tree.IsPlaceholder(node) {
			continue
		}
		s.addStyleClass(c, node)
		st.Elements = append(st.Elements, node)
		if node.Type == html.ElementNode {
			if _, ok := s.tree.GetAttr(node, s.opts.RenderedByAttr); !ok {
				s.tree.SetAttr(node, s.opts.RenderedByAttr, c.GetId())
			}
		}
	}
}

func (s *Service) disassociateElements(c comp.Component) {
	st := c.State()
	st.Elements = nil
	st.AllElements = nil
}

// RenderedBy returns the id of the component that first rendered node
func (s *Service) RenderedBy(node *html.Node) string {
	id, _ := s.tree.GetAttr(node, s.opts.RenderedByAttr)
	return id
}

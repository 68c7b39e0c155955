// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"sort"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
	"golang.org/x/net/html"
)

// Html owns exactly one element; its body facet renders inside that element
type Html struct {
	Common
	Tag     string
	Attrs   map[string]string
	Body    []comp.Entry
	element *html.Node
}

func MakeHtml(svc *rendersvc.Service, owner comp.Component, tag string, attrs map[string]string, body ...comp.Entry) *Html {
	return &Html{
		Common: makeCommon(svc, Type_Html, owner),
		Tag:    tag,
		Attrs:  attrs,
		Body:   body,
	}
}

func (h *Html) IsHostElement() bool {
	return true
}

func (h *Html) applyAttrs() {
	keys := make([]string, 0, len(h.Attrs))
	for k := range h.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tree := h.Svc.Tree()
	for _, k := range keys {
		tree.SetAttr(h.element, k, h.Attrs[k])
	}
}

func (h *Html) Render() (any, error) {
	h.element = h.Svc.Tree().CreateNode(html.ElementNode, h.Tag)
	h.applyAttrs()
	if _, err := h.Svc.RenderFacet(h, h.Body, h.element); err != nil {
		return nil, err
	}
	return h.element, nil
}

// Rerender updates attributes and reconciles the body in place, the element itself never changes
func (h *Html) Rerender() (any, error) {
	h.applyAttrs()
	if _, err := h.Svc.RerenderFacet(h, h.Body, h.element); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *Html) Unrender() error {
	return h.Svc.UnrenderFacet(h, nil)
}

func (h *Html) AfterRender() error {
	return h.afterRenderFacet()
}

func (h *Html) SetBody(body ...comp.Entry) {
	h.Body = body
	h.markDirty(h, "v.body")
}

func (h *Html) SetAttr(key string, val string) {
	if h.Attrs == nil {
		h.Attrs = make(map[string]string)
	}
	h.Attrs[key] = val
	h.markDirty(h, "v.attrs."+key)
}

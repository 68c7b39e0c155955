// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
	"golang.org/x/net/html"
)

// Text owns one text node, updated in place
type Text struct {
	Common
	Value string
	node  *html.Node
}

func MakeText(svc *rendersvc.Service, owner comp.Component, value string) *Text {
	return &Text{Common: makeCommon(svc, Type_Text, owner), Value: value}
}

func (t *Text) IsHostElement() bool {
	return true
}

func (t *Text) Render() (any, error) {
	t.node = t.Svc.Tree().CreateNode(html.TextNode, t.Value)
	return t.node, nil
}

func (t *Text) Rerender() (any, error) {
	if t.node != nil && t.node.Data != t.Value {
		t.node.Data = t.Value
	}
	return nil, nil
}

func (t *Text) Unrender() error {
	return nil
}

func (t *Text) AfterRender() error {
	return nil
}

func (t *Text) SetValue(value string) {
	if value == t.Value {
		return
	}
	t.Value = value
	t.markDirty(t, "v.value")
}

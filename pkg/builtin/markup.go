// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
)

// Markup renders a raw markup string
type Markup struct {
	Common
	Value    string
	rendered string
}

func MakeMarkup(svc *rendersvc.Service, owner comp.Component, value string) *Markup {
	return &Markup{Common: makeCommon(svc, Type_Markup, owner), Value: value}
}

func (m *Markup) Render() (any, error) {
	m.rendered = m.Value
	return m.Value, nil
}

func (m *Markup) Rerender() (any, error) {
	if m.rendered == m.Value {
		return nil, nil
	}
	nodes, err := m.Svc.Tree().ParseFragment(m.Value)
	if err != nil {
		return nil, err
	}
	m.rendered = m.Value
	return m.Svc.ReplaceElements(m, nodes), nil
}

func (m *Markup) Unrender() error {
	return nil
}

func (m *Markup) AfterRender() error {
	return nil
}

func (m *Markup) SetValue(value string) {
	m.Value = value
	m.markDirty(m, "v.value")
}

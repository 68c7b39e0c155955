// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
)

// Expression renders a facet of components without an element of its own. Its marker is
// the first node of its value, or a placeholder while the value is empty.
type Expression struct {
	Common
	Value []comp.Entry
}

func MakeExpression(svc *rendersvc.Service, owner comp.Component, value ...comp.Entry) *Expression {
	return &Expression{Common: makeCommon(svc, Type_Expression, owner), Value: value}
}

// the values belong to whoever set them
func (e *Expression) BorrowsFacet() bool {
	return true
}

func (e *Expression) Render() (any, error) {
	return e.Svc.RenderFacet(e, e.Value, nil)
}

func (e *Expression) Rerender() (any, error) {
	return e.Svc.RerenderFacet(e, e.Value, nil)
}

func (e *Expression) Unrender() error {
	return e.Svc.UnrenderFacet(e, nil)
}

func (e *Expression) AfterRender() error {
	return e.afterRenderFacet()
}

func (e *Expression) SetValue(value ...comp.Entry) {
	e.Value = value
	e.markDirty(e, "v.value")
}

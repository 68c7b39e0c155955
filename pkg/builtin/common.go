// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// built-in component kinds: html elements, text, expressions, iterations and raw markup
package builtin

import (
	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
)

const (
	Type_Html       = "html"
	Type_Text       = "text"
	Type_Expression = "expr"
	Type_Iteration  = "iteration"
	Type_Markup     = "markup"
)

// Common holds the service handle and the optional styling / lifecycle flags every
// built-in supports
type Common struct {
	comp.Base
	Svc        *rendersvc.Service
	StyleClass string
	FlavorName string
	Auto       bool
}

func makeCommon(svc *rendersvc.Service, compType string, owner comp.Component) Common {
	return Common{Base: comp.MakeBase(compType, owner), Svc: svc}
}

func (c *Common) StyleClassName() string {
	return c.StyleClass
}

func (c *Common) Flavor() string {
	return c.FlavorName
}

func (c *Common) AutoDestroy() bool {
	return c.Auto
}

// markDirty flags expr on self (the concrete component, not the embedded Common)
func (c *Common) markDirty(self comp.Component, expr string) {
	c.Svc.MarkDirty(expr, self)
}

func (c *Common) afterRenderFacet() error {
	return c.Svc.AfterRender(c.State().Facet)
}

func (c *Common) SetAutoDestroy(auto bool) {
	c.Auto = auto
}

type autoDestroySetter interface {
	SetAutoDestroy(auto bool)
}

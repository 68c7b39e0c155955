// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// component model consumed by the rendering engine
package comp

import (
	"golang.org/x/net/html"
)

type DestroyState int

const (
	Alive      DestroyState = 0
	Destroying DestroyState = -1
	Destroyed  DestroyState = 1
)

// State is the render bookkeeping the engine keeps on every component.
// Elements holds real nodes only, AllElements also holds placeholder markers.
type State struct {
	Elements    []*html.Node
	AllElements []*html.Node
	Marker      *html.Node
	Facet       []Component // last reconciled facet, nil if no facet was ever stored
	Rendered    bool
	Unrendering bool
	Destroyed   DestroyState
}

// Component is a stateful node of the component tree.
//
// Render returns the produced nodes as []*html.Node, *html.Node, a markup string or nil.
// Rerender returns nil when nothing changed (the previous nodes are reused), otherwise the
// replacement nodes in one of the Render forms.
type Component interface {
	GetId() string
	GetType() string
	GetSuper() Component
	GetOwner() Component
	GetContainer() Component
	SetContainer(container Component)
	IsValid() bool
	IsRendered() bool
	IsUnrendering() bool
	State() *State

	Render() (any, error)
	Rerender() (any, error)
	Unrender() error
	AfterRender() error
}

// HostElement is implemented by components that own exactly one host node (an element or
// a text node) and always use it as their marker. Container element tracking stops at them.
type HostElement interface {
	IsHostElement() bool
}

// Styled components get their style class (plus flavor classes) added to every real node
// they render.
type Styled interface {
	StyleClassName() string
	Flavor() string
}

type AutoDestroyer interface {
	AutoDestroy() bool
}

// FacetBorrower components render facet values owned by another component, so their facet
// children are never destroyed along with them.
type FacetBorrower interface {
	BorrowsFacet() bool
}

func IsHostElement(c Component) bool {
	if c == nil {
		return false
	}
	he, ok := c.(HostElement)
	return ok && he.IsHostElement()
}

func IsAutoDestroy(c Component) bool {
	if c == nil {
		return false
	}
	ad, ok := c.(AutoDestroyer)
	return ok && ad.AutoDestroy()
}

func BorrowsFacet(c Component) bool {
	if c == nil {
		return false
	}
	fb, ok := c.(FacetBorrower)
	return ok && fb.BorrowsFacet()
}

// ParentOf returns the nearest structural ancestor, the container if set, else the owner
func ParentOf(c Component) Component {
	if c == nil {
		return nil
	}
	if container := c.GetContainer(); container != nil {
		return container
	}
	return c.GetOwner()
}

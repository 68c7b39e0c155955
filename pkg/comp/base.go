// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package comp

import (
	"fmt"

	"github.com/google/uuid"
)

// Base implements the bookkeeping half of Component. Concrete components embed it and
// supply the lifecycle callbacks.
type Base struct {
	Id        string
	Type      string
	Super     Component
	Owner     Component
	Container Component
	st        State
}

func MakeBase(compType string, owner Component) Base {
	return Base{Id: uuid.New().String(), Type: compType, Owner: owner}
}

func (b *Base) GetId() string {
	return b.Id
}

func (b *Base) GetType() string {
	return b.Type
}

func (b *Base) GetSuper() Component {
	return b.Super
}

func (b *Base) GetOwner() Component {
	return b.Owner
}

func (b *Base) GetContainer() Component {
	return b.Container
}

func (b *Base) SetContainer(container Component) {
	b.Container = container
}

func (b *Base) IsValid() bool {
	return b.st.Destroyed == Alive
}

func (b *Base) IsRendered() bool {
	return b.st.Rendered
}

func (b *Base) IsUnrendering() bool {
	return b.st.Unrendering
}

func (b *Base) State() *State {
	return &b.st
}

func (b *Base) String() string {
	return fmt.Sprintf("%s {%s}", b.Type, b.Id)
}

// Describe formats a component for log and error messages
func Describe(c Component) string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s {%s}", c.GetType(), c.GetId())
}

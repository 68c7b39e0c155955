// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// current-access stack, set while a component callback runs
package accessctx

import (
	"strings"
	"sync"

	"github.com/outrigdev/goid"
	"github.com/wavetermdev/facetengine/pkg/comp"
)

// Stack is only meaningful on the goroutine that pushed its first entry.
// queries from any other goroutine see an empty stack.
type Stack struct {
	lock      sync.Mutex
	stack     []comp.Component
	ownerGoId uint64
}

func MakeStack() *Stack {
	return &Stack{}
}

func (s *Stack) Push(c comp.Component) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.stack) == 0 {
		s.ownerGoId = goid.Get()
	}
	s.stack = append(s.stack, c)
}

// Release pops the current access, it is a no-op on an empty stack
func (s *Stack) Release() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.stack) == 0 {
		return
	}
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
	if len(s.stack) == 0 {
		s.ownerGoId = 0
	}
}

func (s *Stack) isOwner() bool {
	return len(s.stack) > 0 && goid.Get() == s.ownerGoId
}

func (s *Stack) Current() comp.Component {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.isOwner() {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *Stack) Depth() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.isOwner() {
		return 0
	}
	return len(s.stack)
}

// Hierarchy formats the stack outermost first, e.g. "test:app {1} > test:item {2}"
func (s *Stack) Hierarchy() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.isOwner() {
		return ""
	}
	parts := make([]string, 0, len(s.stack))
	for _, c := range s.stack {
		parts = append(parts, comp.Describe(c))
	}
	return strings.Join(parts, " > ")
}

func With[T any](s *Stack, c comp.Component, fn func() T) T {
	s.Push(c)
	defer s.Release()
	return fn()
}

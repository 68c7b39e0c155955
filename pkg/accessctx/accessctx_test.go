// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package accessctx

import (
	"sync"
	"testing"

	"github.com/wavetermdev/facetengine/pkg/comp"
)

type stubComp struct {
	comp.Base
}

func (s *stubComp) Render() (any, error)   { return nil, nil }
func (s *stubComp) Rerender() (any, error) { return nil, nil }
func (s *stubComp) Unrender() error        { return nil }
func (s *stubComp) AfterRender() error     { return nil }

func makeStub(id string) *stubComp {
	s := &stubComp{Base: comp.MakeBase("test:stub", nil)}
	s.Id = id
	return s
}

func TestStackPushRelease(t *testing.T) {
	s := MakeStack()
	if s.Current() != nil {
		t.Fatalf("empty stack should have no current access")
	}
	a, b := makeStub("a"), makeStub("b")
	s.Push(a)
	s.Push(b)
	if s.Current() != b || s.Depth() != 2 {
		t.Errorf("expected b on top of a depth 2 stack")
	}
	if got := s.Hierarchy(); got != "test:stub {a} > test:stub {b}" {
		t.Errorf("hierarchy = %q", got)
	}
	s.Release()
	if s.Current() != a {
		t.Errorf("expected a after release")
	}
	s.Release()
	s.Release()
	if s.Depth() != 0 {
		t.Errorf("stack should be empty")
	}
}

func TestStackOtherGoroutine(t *testing.T) {
	s := MakeStack()
	a := makeStub("a")
	With(s, a, func() bool {
		var wg sync.WaitGroup
		var seen comp.Component
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen = s.Current()
		}()
		wg.Wait()
		if seen != nil {
			t.Errorf("other goroutine should not see the access stack")
		}
		if s.Current() != a {
			t.Errorf("render goroutine should see a")
		}
		return true
	})
	if s.Current() != nil {
		t.Errorf("With should release the access")
	}
}

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package comp

import (
	"errors"
	"testing"
)

type stubComp struct {
	Base
}

func (s *stubComp) Render() (any, error)   { return nil, nil }
func (s *stubComp) Rerender() (any, error) { return nil, nil }
func (s *stubComp) Unrender() error        { return nil }
func (s *stubComp) AfterRender() error     { return nil }

func TestRegistry(t *testing.T) {
	reg := MakeRegistry()
	a := &stubComp{Base: MakeBase("test:a", nil)}
	if err := reg.Register(a); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(a); err != nil {
		t.Errorf("re-registering the same component should be allowed: %v", err)
	}
	dup := &stubComp{Base: MakeBase("test:dup", nil)}
	dup.Id = a.Id
	if err := reg.Register(dup); err == nil {
		t.Errorf("expected duplicate id error")
	}
	if reg.Get(a.Id) != a || reg.Len() != 1 {
		t.Errorf("lookup failed")
	}
	reg.Unregister(a.Id)
	if reg.Get(a.Id) != nil {
		t.Errorf("expected component to be gone")
	}
}

func TestEntryResolve(t *testing.T) {
	owner := &stubComp{Base: MakeBase("test:owner", nil)}
	var created []Descriptor
	factory := FactoryFunc(func(desc Descriptor) (Component, error) {
		created = append(created, desc)
		if desc.Type == "test:bad" {
			return nil, errors.New("unknown type")
		}
		return &stubComp{Base: MakeBase(desc.Type, desc.Owner)}, nil
	})
	c, err := Desc(Descriptor{Type: "test:child", Owner: owner}).Resolve(factory)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.GetType() != "test:child" || c.GetOwner() != owner {
		t.Errorf("unexpected component %s", Describe(c))
	}
	if got, _ := Ref(owner).Resolve(factory); got != owner {
		t.Errorf("ref entry should resolve to itself")
	}
	if got, err := (Entry{}).Resolve(factory); got != nil || err != nil {
		t.Errorf("empty entry should resolve to nil, nil")
	}
	if _, err := Desc(Descriptor{Type: "test:bad"}).Resolve(factory); err == nil {
		t.Errorf("expected factory error")
	}
	if _, err := Desc(Descriptor{Type: "test:x"}).Resolve(nil); err == nil {
		t.Errorf("expected error without factory")
	}
	if len(created) != 2 {
		t.Errorf("factory called %d times, want 2", len(created))
	}
}

func TestParentOf(t *testing.T) {
	owner := &stubComp{Base: MakeBase("test:owner", nil)}
	container := &stubComp{Base: MakeBase("test:container", nil)}
	c := &stubComp{Base: MakeBase("test:child", owner)}
	if ParentOf(c) != owner {
		t.Errorf("without a container the owner is the parent")
	}
	c.SetContainer(container)
	if ParentOf(c) != container {
		t.Errorf("container should win over owner")
	}
	if !c.IsValid() {
		t.Errorf("new component should be valid")
	}
	c.State().Destroyed = Destroying
	if c.IsValid() {
		t.Errorf("destroying component is not valid")
	}
}

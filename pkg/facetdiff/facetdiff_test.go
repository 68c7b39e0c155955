// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package facetdiff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wavetermdev/facetengine/pkg/comp"
)

type stubComp struct {
	comp.Base
}

func (s *stubComp) Render() (any, error)   { return nil, nil }
func (s *stubComp) Rerender() (any, error) { return nil, nil }
func (s *stubComp) Unrender() error        { return nil }
func (s *stubComp) AfterRender() error     { return nil }

func makeStubs(names ...string) map[string]comp.Component {
	rtn := make(map[string]comp.Component)
	for _, name := range names {
		s := &stubComp{Base: comp.MakeBase("test:stub", nil)}
		s.Id = name
		rtn[name] = s
	}
	return rtn
}

func pick(m map[string]comp.Component, names ...string) []comp.Component {
	rtn := make([]comp.Component, 0, len(names))
	for _, name := range names {
		rtn = append(rtn, m[name])
	}
	return rtn
}

type actionSummary struct {
	Kind     string
	Id       string
	OldIndex int
	NewIndex int
}

func summarize(actions []Action) []actionSummary {
	var rtn []actionSummary
	for _, a := range actions {
		rtn = append(rtn, actionSummary{Kind: a.Kind.String(), Id: a.Comp.GetId(), OldIndex: a.OldIndex, NewIndex: a.NewIndex})
	}
	return rtn
}

func TestReconcileSameFacet(t *testing.T) {
	m := makeStubs("X", "Y", "Z")
	res := Reconcile(pick(m, "X", "Y", "Z"), pick(m, "X", "Y", "Z"))
	want := []actionSummary{
		{"rerender", "X", 0, 0},
		{"rerender", "Y", 1, 1},
		{"rerender", "Z", 2, 2},
	}
	if diff := cmp.Diff(want, summarize(res.Actions())); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
	if res.UseFragment || res.FullUnrender || res.HasNewMarker {
		t.Errorf("unexpected flags: %s", res)
	}
	if res.Count(ActionRender) != 0 || res.Count(ActionUnrender) != 0 {
		t.Errorf("expected no render/unrender actions: %s", res)
	}
}

func TestReconcileRotationUsesFragment(t *testing.T) {
	m := makeStubs("X", "Y", "Z")
	res := Reconcile(pick(m, "X", "Y", "Z"), pick(m, "Z", "X", "Y"))
	if !res.UseFragment {
		t.Errorf("[X,Y,Z] -> [Z,X,Y] should use a fragment: %s", res)
	}
}

func TestReconcileAdjacentSwap(t *testing.T) {
	// Y is matched at old index 1 after Z was placed from old index 2
	m := makeStubs("X", "Y", "Z")
	res := Reconcile(pick(m, "X", "Y", "Z"), pick(m, "X", "Z", "Y"))
	if !res.UseFragment {
		t.Errorf("[X,Y,Z] -> [X,Z,Y] should use a fragment: %s", res)
	}
}

func TestReconcileKeepsGreatestMatchedIndex(t *testing.T) {
	// after E (old 4) and B (old 1, unmoved) the greatest matched index is still 4,
	// so D (old 3, moved to slot 2) needs the fragment
	m := makeStubs("A", "B", "C", "D", "E")
	res := Reconcile(pick(m, "A", "B", "C", "D", "E"), pick(m, "E", "B", "D"))
	if !res.UseFragment {
		t.Errorf("expected fragment: %s", res)
	}
	want := []actionSummary{
		{"unrender", "C", 2, -1},
		{"unrender", "A", 0, -1},
		{"rerender", "E", 4, 0},
		{"rerender", "B", 1, 1},
		{"rerender", "D", 3, 2},
	}
	if diff := cmp.Diff(want, summarize(res.Actions())); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileFullUnrender(t *testing.T) {
	m := makeStubs("X", "Y")
	res := Reconcile(pick(m, "X", "Y"), nil)
	if !res.FullUnrender {
		t.Errorf("expected full unrender: %s", res)
	}
	want := []actionSummary{
		{"unrender", "Y", 1, -1},
		{"unrender", "X", 0, -1},
	}
	if diff := cmp.Diff(want, summarize(res.Actions())); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileFirstRender(t *testing.T) {
	m := makeStubs("X", "Y")
	res := Reconcile(nil, pick(m, "X", "Y"))
	if !res.HasNewMarker || res.UseFragment || res.FullUnrender {
		t.Errorf("unexpected flags: %s", res)
	}
	if res.Count(ActionRender) != 2 {
		t.Errorf("expected two renders: %s", res)
	}
	if diff := cmp.Diff([]string{"X", "Y"}, ids(res.Facet)); diff != "" {
		t.Errorf("facet mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileInsertAndRemove(t *testing.T) {
	m := makeStubs("N", "X", "Y", "Z")
	res := Reconcile(pick(m, "X", "Y", "Z"), pick(m, "N", "X", "Z"))
	if res.UseFragment {
		t.Errorf("insert at head plus removal should not need a fragment: %s", res)
	}
	if !res.HasNewMarker {
		t.Errorf("render at index 0 should flag a new marker")
	}
	want := []actionSummary{
		{"unrender", "Y", 1, -1},
		{"render", "N", -1, 0},
		{"rerender", "X", 0, 1},
		{"rerender", "Z", 2, 2},
	}
	if diff := cmp.Diff(want, summarize(res.Actions())); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}
}

func ids(cmps []comp.Component) []string {
	var rtn []string
	for _, c := range cmps {
		rtn = append(rtn, c.GetId())
	}
	return rtn
}

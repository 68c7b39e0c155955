// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builtin

import (
	"errors"
	"testing"

	"github.com/wavetermdev/facetengine/pkg/comp"
	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"github.com/wavetermdev/facetengine/pkg/rendersvc"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"github.com/wavetermdev/facetengine/pkg/wps"
	"golang.org/x/net/html"
)

type testEnv struct {
	svc    *rendersvc.Service
	root   *html.Node
	events *wps.EventLog
}

func makeTestEnv(t *testing.T) *testEnv {
	t.Helper()
	broker := wps.MakeBroker()
	events := wps.MakeEventLog("test")
	events.SubscribeAll(broker)
	svc := rendersvc.MakeService(rendersvc.Deps{Publisher: broker})
	MakeFactory(svc)
	return &testEnv{
		svc:    svc,
		root:   svc.Tree().CreateNode(html.ElementNode, "body"),
		events: events,
	}
}

func (e *testEnv) mount(t *testing.T, desc comp.Descriptor) comp.Component {
	t.Helper()
	cmps, err := e.svc.Mount([]comp.Entry{comp.Desc(desc)}, e.root)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return cmps[0]
}

func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	if err := e.svc.RerenderDirty(); err != nil {
		t.Fatalf("rerender dirty: %v", err)
	}
}

func (e *testEnv) expectOutput(t *testing.T, want string) {
	t.Helper()
	got, err := hosttree.Serialize(e.root, false, e.svc.EngineAttrs()...)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if got != want {
		t.Errorf("output mismatch\nwant: %s\ngot:  %s", want, got)
	}
	if err := e.svc.CheckMarkers(); err != nil {
		t.Errorf("marker check: %v", err)
	}
}

func listDesc(items ...any) comp.Descriptor {
	return comp.Descriptor{Type: Type_Html, Attrs: map[string]any{
		"id":  "list",
		"tag": "ul",
		"body": []any{
			map[string]any{"type": Type_Iteration, "attrs": map[string]any{"id": "items", "items": items}},
		},
	}}
}

func item(key string, value string) map[string]any {
	return map[string]any{"key": key, "value": value}
}

func TestIterationReconcile(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, listDesc(item("a", "A"), item("b", "B"), item("c", "C")))
	env.expectOutput(t, "<ul><li>A</li><li>B</li><li>C</li></ul>")

	it := env.svc.Registry().Get("items").(*Iteration)
	liA := it.Child("a")

	it.SetItems(Item{Key: "c", Value: "C"}, Item{Key: "a", Value: "A"}, Item{Key: "b", Value: "B"})
	env.drain(t)
	env.expectOutput(t, "<ul><li>C</li><li>A</li><li>B</li></ul>")
	if it.Child("a") != liA {
		t.Errorf("reordered item should keep its component")
	}

	it.SetItems(Item{Key: "a", Value: "A"})
	env.drain(t)
	env.expectOutput(t, "<ul><li>A</li></ul>")
	if env.svc.Registry().Get(ItemId("items", "c")) != nil {
		t.Errorf("dropped item should be destroyed")
	}

	it.SetItems()
	env.drain(t)
	env.expectOutput(t, "<ul><!--unrender facet: items--></ul>")
	if liA.IsValid() {
		t.Errorf("dropped item should be destroyed")
	}

	it.SetItems(Item{Key: "z", Value: "Z"})
	env.drain(t)
	env.expectOutput(t, "<ul><li>Z</li></ul>")
	if env.events.Count(wps.Event_DoneRendering) != 4 {
		t.Errorf("expected one doneRendering per drain, got %d", env.events.Count(wps.Event_DoneRendering))
	}
}

func TestIterationInsertFront(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, listDesc(item("a", "A")))
	it := env.svc.Registry().Get("items").(*Iteration)
	it.SetItems(Item{Key: "z", Value: "Z"}, Item{Key: "a", Value: "A"}, Item{Key: "b", Value: "B"})
	env.drain(t)
	env.expectOutput(t, "<ul><li>Z</li><li>A</li><li>B</li></ul>")
	if env.svc.GetMarker(it) != it.Child("z").State().Marker {
		t.Errorf("iteration marker should follow its first item")
	}
}

func TestIterationUpdateValue(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, listDesc(item("a", "A"), item("b", "B")))
	it := env.svc.Registry().Get("items").(*Iteration)
	it.SetItems(Item{Key: "a", Value: "A2"}, Item{Key: "b", Value: "B"})
	env.drain(t)
	env.expectOutput(t, "<ul><li>A2</li><li>B</li></ul>")
}

func TestTextAndStyle(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, comp.Descriptor{Type: Type_Html, Attrs: map[string]any{
		"tag":    "p",
		"class":  "greet",
		"flavor": "big, loud",
		"body":   []any{map[string]any{"type": Type_Text, "attrs": map[string]any{"id": "msg", "text": "hello"}}},
	}})
	env.expectOutput(t, `<p class="greet greet--big greet--loud">hello</p>`)
	text := env.svc.Registry().Get("msg").(*Text)
	text.SetValue("goodbye")
	env.drain(t)
	env.expectOutput(t, `<p class="greet greet--big greet--loud">goodbye</p>`)
}

func TestHtmlAttrs(t *testing.T) {
	env := makeTestEnv(t)
	c := env.mount(t, comp.Descriptor{Type: Type_Html, Attrs: map[string]any{
		"tag":   "a",
		"attrs": map[string]any{"href": "/x", "title": "x"},
	}})
	env.expectOutput(t, `<a href="/x" title="x"></a>`)
	c.(*Html).SetAttr("href", "/y")
	env.drain(t)
	env.expectOutput(t, `<a href="/y" title="x"></a>`)
}

func TestMarkupReplace(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, comp.Descriptor{Type: Type_Html, Attrs: map[string]any{
		"tag":  "div",
		"body": []any{map[string]any{"type": Type_Markup, "attrs": map[string]any{"id": "m", "text": "<b>x</b>"}}},
	}})
	env.expectOutput(t, "<div><b>x</b></div>")
	m := env.svc.Registry().Get("m").(*Markup)
	m.SetValue("<i>y</i><i>z</i>")
	env.drain(t)
	env.expectOutput(t, "<div><i>y</i><i>z</i></div>")
	if len(m.State().Elements) != 2 {
		t.Errorf("expected markup to own 2 nodes, got %d", len(m.State().Elements))
	}
}

func TestExpressionSwap(t *testing.T) {
	env := makeTestEnv(t)
	env.mount(t, comp.Descriptor{Type: Type_Html, Attrs: map[string]any{
		"tag": "div",
		"body": []any{map[string]any{"type": Type_Expression, "attrs": map[string]any{
			"id":    "expr",
			"value": []any{map[string]any{"type": Type_Text, "attrs": map[string]any{"text": "one"}}},
		}}},
	}})
	env.expectOutput(t, "<div>one</div>")
	expr := env.svc.Registry().Get("expr").(*Expression)
	two := MakeText(env.svc, expr, "two")
	two.Id = "two"
	expr.SetValue(comp.Ref(two))
	env.drain(t)
	env.expectOutput(t, "<div>two</div>")

	expr.SetValue()
	env.drain(t)
	env.expectOutput(t, "<div><!--unrender facet: expr--></div>")
	if !two.IsValid() || two.IsRendered() {
		t.Errorf("borrowed value should be unrendered but not destroyed")
	}
}

func TestFactoryErrors(t *testing.T) {
	env := makeTestEnv(t)
	_, err := env.svc.Mount([]comp.Entry{comp.Desc(comp.Descriptor{Type: "nope"})}, env.root)
	if err == nil || utilds.GetErrorCode(err) != utilds.ErrCode_Precondition {
		t.Errorf("expected precondition error for unknown type, got %v", err)
	}
	_, err = env.svc.Mount([]comp.Entry{comp.Desc(comp.Descriptor{Type: Type_Html, Attrs: map[string]any{"tag": "p", "bogus": 1}})}, env.root)
	if err == nil {
		t.Errorf("expected error for unknown attribute")
	}
	_, err = env.svc.Mount([]comp.Entry{comp.Desc(comp.Descriptor{Type: Type_Html})}, env.root)
	var coded utilds.CodedError
	if !errors.As(err, &coded) {
		t.Errorf("expected coded error for missing tag, got %v", err)
	}
}

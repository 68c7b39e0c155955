// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package hosttree

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func childTags(tree *HTMLTree, parent *html.Node) string {
	var tags []string
	for _, c := range tree.ChildrenOf(parent) {
		tags = append(tags, c.Data)
	}
	return strings.Join(tags, ",")
}

func TestInsertPositions(t *testing.T) {
	tree := MakeHTMLTree("")
	body := tree.CreateNode(html.ElementNode, "body")
	a := tree.CreateNode(html.ElementNode, "a")
	b := tree.CreateNode(html.ElementNode, "b")
	c := tree.CreateNode(html.ElementNode, "c")
	x := tree.CreateNode(html.ElementNode, "x")

	tree.Insert([]*html.Node{a, b}, body, AsLastChild)
	tree.Insert([]*html.Node{c}, a, Before)
	if got := childTags(tree, body); got != "c,a,b" {
		t.Errorf("before: got %s", got)
	}
	tree.Insert([]*html.Node{b, c}, a, Before)
	if got := childTags(tree, body); got != "b,c,a" {
		t.Errorf("move before: got %s", got)
	}
	// anchor is one of the nodes being moved
	tree.Insert([]*html.Node{a, b}, b, Before)
	if got := childTags(tree, body); got != "a,b,c" {
		t.Errorf("anchor in moved set: got %s", got)
	}
	tree.Insert([]*html.Node{x}, a, After)
	if got := childTags(tree, body); got != "a,x,b,c" {
		t.Errorf("after: got %s", got)
	}
	tree.Insert([]*html.Node{c}, body, AsFirstChild)
	if got := childTags(tree, body); got != "c,a,x,b" {
		t.Errorf("first child: got %s", got)
	}
	tree.Remove(x)
	tree.Remove(x)
	if got := childTags(tree, body); got != "c,a,b" || tree.ParentOf(x) != nil {
		t.Errorf("remove: got %s", got)
	}
	detached := tree.CreateNode(html.ElementNode, "d")
	tree.Insert([]*html.Node{x}, detached, Before)
	if tree.ParentOf(x) != nil {
		t.Errorf("inserting next to a detached node should do nothing")
	}
}

func TestPlaceholders(t *testing.T) {
	tree := MakeHTMLTree("data-ph")
	ph := tree.CreatePlaceholder("marker")
	if !tree.IsPlaceholder(ph) {
		t.Errorf("expected placeholder")
	}
	if tree.IsPlaceholder(tree.CreateNode(html.CommentNode, "plain")) || tree.IsPlaceholder(tree.CreateNode(html.ElementNode, "div")) {
		t.Errorf("only marked comments are placeholders")
	}
	out, err := RenderNodes([]*html.Node{ph})
	if err != nil || out != "<!--marker-->" {
		t.Errorf("unexpected placeholder rendering %q (%v)", out, err)
	}
}

func TestParseFragment(t *testing.T) {
	tree := MakeHTMLTree("")
	nodes, err := tree.ParseFragment("<b>x</b>tail")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Data != "b" || nodes[1].Data != "tail" {
		t.Fatalf("unexpected nodes %v", nodes)
	}
	for _, n := range nodes {
		if n.Parent != nil || n.PrevSibling != nil || n.NextSibling != nil {
			t.Errorf("parsed nodes should be detached")
		}
	}
}

func TestSerialize(t *testing.T) {
	tree := MakeHTMLTree("")
	root, _ := tree.ParseFragment("<div>")
	div := root[0]
	body := tree.CreateNode(html.ElementNode, "body")
	tree.Insert([]*html.Node{div}, body, AsLastChild)
	p := tree.CreateNode(html.ElementNode, "p")
	tree.SetAttr(p, "data-uid", "7")
	tree.AddClass(p, "greet")
	tree.AddClass(p, "greet")
	tree.Insert([]*html.Node{p, tree.CreateNode(html.TextNode, "  "), tree.CreatePlaceholder("ph")}, div, AsLastChild)
	tree.Insert([]*html.Node{tree.CreateNode(html.TextNode, "hi")}, p, AsLastChild)

	out, err := Serialize(body, false, "data-uid")
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if out != `<div><p class="greet">hi</p>  <!--ph--></div>` {
		t.Errorf("unexpected output %q", out)
	}
	if val, ok := tree.GetAttr(p, "data-uid"); !ok || val != "7" {
		t.Errorf("serialize must not modify the tree")
	}
	minified, err := Serialize(body, true)
	if err != nil {
		t.Fatalf("minify: %v", err)
	}
	if !strings.Contains(minified, "<!--ph-->") || !strings.Contains(minified, "</p>") || strings.Contains(minified, "  ") {
		t.Errorf("unexpected minified output %q", minified)
	}
}

func TestBuildClass(t *testing.T) {
	cases := []struct{ old, add, want string }{
		{"", "a", "a"},
		{"a", "a", "a"},
		{"a b", "c", "a b c"},
		{" ab ", "a", "ab a"},
		{"a", " ", "a"},
	}
	for _, tc := range cases {
		if got := BuildClass(tc.old, tc.add); got != tc.want {
			t.Errorf("BuildClass(%q, %q) = %q, want %q", tc.old, tc.add, got, tc.want)
		}
	}
}

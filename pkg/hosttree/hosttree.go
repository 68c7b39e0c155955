// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// host tree adapter backed by golang.org/x/net/html nodes
package hosttree

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultPlaceholderAttr = "data-placeholder"

type Position int

const (
	Before Position = iota
	After
	AsFirstChild
	AsLastChild
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case AsFirstChild:
		return "firstchild"
	case AsLastChild:
		return "lastchild"
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// Adapter is the set of host tree operations the rendering engine relies on.
// Nodes are *html.Node values; the engine never touches node links directly.
type Adapter interface {
	CreateNode(kind html.NodeType, content string) *html.Node
	CreatePlaceholder(label string) *html.Node
	IsPlaceholder(n *html.Node) bool
	ParseFragment(markup string) ([]*html.Node, error)
	Insert(nodes []*html.Node, anchor *html.Node, pos Position)
	Remove(n *html.Node)
	ChildrenOf(n *html.Node) []*html.Node
	ParentOf(n *html.Node) *html.Node
	PreviousSiblingOf(n *html.Node) *html.Node
	NextSiblingOf(n *html.Node) *html.Node
	GetAttr(n *html.Node, key string) (string, bool)
	SetAttr(n *html.Node, key string, val string)
	AddClass(n *html.Node, className string)
}

type HTMLTree struct {
	PlaceholderAttr string
}

func MakeHTMLTree(placeholderAttr string) *HTMLTree {
	if placeholderAttr == "" {
		placeholderAttr = DefaultPlaceholderAttr
	}
	return &HTMLTree{PlaceholderAttr: placeholderAttr}
}

func (t *HTMLTree) CreateNode(kind html.NodeType, content string) *html.Node {
	switch kind {
	case html.ElementNode:
		return &html.Node{Type: html.ElementNode, Data: content, DataAtom: atom.Lookup([]byte(content))}
	case html.TextNode, html.CommentNode:
		return &html.Node{Type: kind, Data: content}
	case html.DocumentNode:
		return &html.Node{Type: html.DocumentNode}
	}
	log.Printf("[hosttree] unsupported node kind %d, creating text node\n", kind)
	return &html.Node{Type: html.TextNode, Data: content}
}

// placeholders are comment nodes carrying the placeholder attribute.
// attributes on comment nodes are never serialized by html.Render.
func (t *HTMLTree) CreatePlaceholder(label string) *html.Node {
	return &html.Node{
		Type: html.CommentNode,
		Data: label,
		Attr: []html.Attribute{{Key: t.PlaceholderAttr, Val: "true"}},
	}
}

func (t *HTMLTree) IsPlaceholder(n *html.Node) bool {
	if n == nil || n.Type != html.CommentNode {
		return false
	}
	_, ok := t.GetAttr(n, t.PlaceholderAttr)
	return ok
}

func (t *HTMLTree) ParseFragment(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parsing markup fragment: %w", err)
	}
	for _, n := range nodes {
		detach(n)
	}
	return nodes, nil
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
		return
	}
	// parser output can leave sibling links set on parentless nodes
	n.PrevSibling = nil
	n.NextSibling = nil
}

// skipMoving returns the first node starting at n (following NextSibling) that is not being moved
func skipMoving(n *html.Node, moving map[*html.Node]bool) *html.Node {
	for n != nil && moving[n] {
		n = n.NextSibling
	}
	return n
}

func (t *HTMLTree) Insert(nodes []*html.Node, anchor *html.Node, pos Position) {
	if anchor == nil || len(nodes) == 0 {
		return
	}
	moving := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		moving[n] = true
	}
	var parent, ref *html.Node
	switch pos {
	case Before:
		parent = anchor.Parent
		ref = skipMoving(anchor, moving)
	case After:
		parent = anchor.Parent
		ref = skipMoving(anchor.NextSibling, moving)
	case AsFirstChild:
		parent = anchor
		ref = skipMoving(anchor.FirstChild, moving)
	case AsLastChild:
		parent = anchor
	}
	if parent == nil {
		log.Printf("[hosttree] cannot insert %s a detached node\n", pos)
		return
	}
	if moving[parent] {
		log.Printf("[hosttree] cannot insert a node into itself\n")
		return
	}
	for _, n := range nodes {
		detach(n)
	}
	for _, n := range nodes {
		parent.InsertBefore(n, ref)
	}
}

func (t *HTMLTree) Remove(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

func (t *HTMLTree) ChildrenOf(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var rtn []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rtn = append(rtn, c)
	}
	return rtn
}

func (t *HTMLTree) ParentOf(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	return n.Parent
}

func (t *HTMLTree) PreviousSiblingOf(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	return n.PrevSibling
}

func (t *HTMLTree) NextSiblingOf(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	return n.NextSibling
}

func (t *HTMLTree) GetAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func (t *HTMLTree) SetAttr(n *html.Node, key string, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func (t *HTMLTree) AddClass(n *html.Node, className string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	oldClass, _ := t.GetAttr(n, "class")
	newClass := BuildClass(oldClass, className)
	if newClass != oldClass {
		t.SetAttr(n, "class", newClass)
	}
}

// BuildClass appends newClass to oldClass unless it is already present
func BuildClass(oldClass string, newClass string) string {
	oldClass = strings.TrimSpace(oldClass)
	newClass = strings.TrimSpace(newClass)
	if newClass == "" {
		return oldClass
	}
	if oldClass == "" {
		return newClass
	}
	if strings.Contains(" "+oldClass+" ", " "+newClass+" ") {
		return oldClass
	}
	return oldClass + " " + newClass
}

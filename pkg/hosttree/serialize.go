// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package hosttree

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/tdewolff/minify/v2"
	minifyhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once
)

func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &minifyhtml.Minifier{KeepComments: true, KeepEndTags: true, KeepQuotes: true})
	})
	return minifier
}

// RenderNodes serializes the given nodes (and their subtrees) in order
func RenderNodes(nodes []*html.Node) (string, error) {
	var buf bytes.Buffer
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("rendering node: %w", err)
		}
	}
	return buf.String(), nil
}

// RenderChildren serializes the children of root (root itself is omitted)
func RenderChildren(root *html.Node) (string, error) {
	if root == nil {
		return "", nil
	}
	var nodes []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, c)
	}
	return RenderNodes(nodes)
}

// cloneWithoutAttrs deep copies n, dropping the named attributes from every node
func cloneWithoutAttrs(n *html.Node, strip map[string]bool) *html.Node {
	rtn := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace}
	for _, attr := range n.Attr {
		if strip[attr.Key] {
			continue
		}
		rtn.Attr = append(rtn.Attr, attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rtn.AppendChild(cloneWithoutAttrs(c, strip))
	}
	return rtn
}

// Serialize renders the children of root, optionally minified, leaving out stripAttrs
// (engine bookkeeping attributes). placeholder comments are kept so markers stay visible.
func Serialize(root *html.Node, minifyOutput bool, stripAttrs ...string) (string, error) {
	if root != nil && len(stripAttrs) > 0 {
		strip := make(map[string]bool, len(stripAttrs))
		for _, attr := range stripAttrs {
			strip[attr] = true
		}
		root = cloneWithoutAttrs(root, strip)
	}
	out, err := RenderChildren(root)
	if err != nil {
		return "", err
	}
	if !minifyOutput || !strings.Contains(out, "<") {
		return out, nil
	}
	minified, err := getMinifier().String("text/html", out)
	if err != nil {
		return "", fmt.Errorf("minifying output: %w", err)
	}
	return minified, nil
}

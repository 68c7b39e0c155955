// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// reference counting for marker nodes, keyed by a stable per-node uid
package markerreg

import (
	"strconv"

	"github.com/wavetermdev/facetengine/pkg/hosttree"
	"github.com/wavetermdev/facetengine/pkg/utilds"
	"golang.org/x/net/html"
)

const DefaultUidAttr = "data-rendering-service-uid"

// Registry maps node uid -> ordered set of component ids using that node as their marker.
// Entries with no references are deleted, so Len() only counts live markers.
type Registry struct {
	tree    hosttree.Adapter
	uidAttr string
	nextUid int
	refMap  map[string]*utilds.OrderedSet
}

func MakeRegistry(tree hosttree.Adapter, uidAttr string) *Registry {
	if uidAttr == "" {
		uidAttr = DefaultUidAttr
	}
	return &Registry{
		tree:    tree,
		uidAttr: uidAttr,
		nextUid: 1,
		refMap:  make(map[string]*utilds.OrderedSet),
	}
}

// Uid returns the uid already assigned to node, or "" if it has none
func (r *Registry) Uid(node *html.Node) string {
	if node == nil {
		return ""
	}
	uid, _ := r.tree.GetAttr(node, r.uidAttr)
	return uid
}

// Resolve returns the uid of node, assigning a new one if needed.
// the uid is stored as an attribute, which html.Render ignores on text and comment nodes.
func (r *Registry) Resolve(node *html.Node) string {
	if node == nil {
		return ""
	}
	if uid := r.Uid(node); uid != "" {
		return uid
	}
	uid := strconv.Itoa(r.nextUid)
	r.nextUid++
	r.tree.SetAttr(node, r.uidAttr, uid)
	return uid
}

func (r *Registry) AddReference(node *html.Node, id string) {
	if node == nil || id == "" {
		return
	}
	uid := r.Resolve(node)
	refs := r.refMap[uid]
	if refs == nil {
		refs = utilds.MakeOrderedSet()
		r.refMap[uid] = refs
	}
	refs.Add(id)
}

func (r *Registry) RemoveReference(node *html.Node, id string) {
	if node == nil || id == "" {
		return
	}
	uid := r.Uid(node)
	if uid == "" {
		return
	}
	refs := r.refMap[uid]
	if refs == nil {
		return
	}
	refs.Remove(id)
	if refs.IsEmpty() {
		delete(r.refMap, uid)
	}
}

// Count is the number of components using node as their marker
func (r *Registry) Count(node *html.Node) int {
	refs := r.refMap[r.Uid(node)]
	if refs == nil {
		return 0
	}
	return refs.Len()
}

func (r *Registry) IsShared(node *html.Node) bool {
	return r.Count(node) >= 2
}

func (r *Registry) Referenced(node *html.Node) bool {
	return r.Count(node) >= 1
}

func (r *Registry) HasReference(node *html.Node, id string) bool {
	refs := r.refMap[r.Uid(node)]
	return refs != nil && refs.Contains(id)
}

// References returns the ids using node as marker, in the order they were added
func (r *Registry) References(node *html.Node) []string {
	refs := r.refMap[r.Uid(node)]
	if refs == nil {
		return nil
	}
	return refs.Values()
}

// MigrateReferences moves every reference from oldNode onto newNode and returns the moved
// ids. Callers are responsible for repointing the components themselves.
func (r *Registry) MigrateReferences(oldNode *html.Node, newNode *html.Node) ([]string, error) {
	if oldNode == nil || newNode == nil {
		return nil, utilds.Errorf(utilds.ErrCode_Precondition, "cannot migrate marker references to or from a nil node")
	}
	oldUid := r.Uid(oldNode)
	refs := r.refMap[oldUid]
	if oldUid == "" || refs == nil {
		return nil, utilds.Errorf(utilds.ErrCode_Precondition, "cannot migrate marker references, node %q has no reference entry", oldUid)
	}
	ids := refs.Values()
	if oldNode == newNode {
		return ids, nil
	}
	delete(r.refMap, oldUid)
	for _, id := range ids {
		r.AddReference(newNode, id)
	}
	return ids, nil
}

// Forget drops id from every entry (used when a component is destroyed)
func (r *Registry) Forget(id string) int {
	var removed int
	for uid, refs := range r.refMap {
		if refs.Remove(id) {
			removed++
		}
		if refs.IsEmpty() {
			delete(r.refMap, uid)
		}
	}
	return removed
}

// Len is the number of nodes with at least one reference
func (r *Registry) Len() int {
	return len(r.refMap)
}

// Snapshot returns uid -> referencing ids, for debugging and tests
func (r *Registry) Snapshot() map[string][]string {
	rtn := make(map[string][]string, len(r.refMap))
	for uid, refs := range r.refMap {
		rtn[uid] = refs.Values()
	}
	return rtn
}

// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package utilds

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// OrderedSet is a set of strings that iterates in insertion order.
// values are kept in a tree keyed by insertion sequence, so Add, Remove and PopFirst are
// O(log n) regardless of where the value sits in the order.
type OrderedSet struct {
	seqs    map[string]int
	order   *treemap.Map // seq -> value
	nextSeq int
}

func MakeOrderedSet(vals ...string) *OrderedSet {
	os := &OrderedSet{
		seqs:  make(map[string]int),
		order: treemap.NewWithIntComparator(),
	}
	for _, v := range vals {
		os.Add(v)
	}
	return os
}

// Add returns true if val was not already present
func (os *OrderedSet) Add(val string) bool {
	if _, ok := os.seqs[val]; ok {
		return false
	}
	seq := os.nextSeq
	os.nextSeq++
	os.seqs[val] = seq
	os.order.Put(seq, val)
	return true
}

// Remove returns true if val was present
func (os *OrderedSet) Remove(val string) bool {
	seq, ok := os.seqs[val]
	if !ok {
		return false
	}
	delete(os.seqs, val)
	os.order.Remove(seq)
	return true
}

func (os *OrderedSet) Contains(val string) bool {
	_, ok := os.seqs[val]
	return ok
}

func (os *OrderedSet) Len() int {
	return len(os.seqs)
}

func (os *OrderedSet) IsEmpty() bool {
	return len(os.seqs) == 0
}

func (os *OrderedSet) Values() []string {
	rtn := make([]string, 0, len(os.seqs))
	it := os.order.Iterator()
	for it.Next() {
		rtn = append(rtn, it.Value().(string))
	}
	return rtn
}

// PopFirst removes and returns the oldest value
func (os *OrderedSet) PopFirst() (string, bool) {
	seq, val := os.order.Min()
	if seq == nil {
		return "", false
	}
	os.order.Remove(seq)
	rtn := val.(string)
	delete(os.seqs, rtn)
	return rtn, true
}

func (os *OrderedSet) Clear() {
	clear(os.seqs)
	os.order.Clear()
	os.nextSeq = 0
}

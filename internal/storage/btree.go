/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
B-Tree Record Index
===================

Each table keeps its records in a B-Tree ordered by primary key, so that
lookups, inserts and deletes are O(log N) and SELECT walks records in key
order without sorting.

B-Tree Properties:
==================

  - Each node can have at most 2*t children (t = minimum degree)
  - Each node (except root) has at least t-1 keys
  - All leaves are at the same depth
  - Keys within a node are sorted

Usage:
======

	tree := storage.NewBTree[int64, Record](storage.DefaultDegree)
	tree.Insert(1, rec)
	rec, found := tree.Get(1)
	tree.Ascend(func(k int64, r Record) bool { ...; return true })

The tree is not safe for concurrent use; the engine serialises access.
*/
package storage

import (
	"cmp"
	"slices"
)

// DefaultDegree is the minimum degree used for table indexes.
const DefaultDegree = 4

type btreeNode[K cmp.Ordered, V any] struct {
	keys     []K
	values   []V
	children []*btreeNode[K, V] // nil for leaves
	leaf     bool
}

// BTree is a balanced ordered map from K to V.
type BTree[K cmp.Ordered, V any] struct {
	root *btreeNode[K, V]
	t    int
	size int
}

// NewBTree creates a new B-Tree with the specified minimum degree.
// Degrees below 2 are raised to 2.
func NewBTree[K cmp.Ordered, V any](t int) *BTree[K, V] {
	if t < 2 {
		t = 2
	}
	return &BTree[K, V]{
		root: &btreeNode[K, V]{leaf: true},
		t:    t,
	}
}

// Len returns the number of keys in the tree.
func (bt *BTree[K, V]) Len() int {
	return bt.size
}

// Get looks up a key.
func (bt *BTree[K, V]) Get(key K) (V, bool) {
	node := bt.root
	for {
		i, found := slices.BinarySearch(node.keys, key)
		if found {
			return node.values[i], true
		}
		if node.leaf {
			var zero V
			return zero, false
		}
		node = node.children[i]
	}
}

// Insert adds key with val. If the key is already present the tree is
// left unchanged and Insert returns false.
func (bt *BTree[K, V]) Insert(key K, val V) bool {
	if _, found := bt.Get(key); found {
		return false
	}

	// If root is full, split it and grow the tree by one level
	if len(bt.root.keys) == 2*bt.t-1 {
		newRoot := &btreeNode[K, V]{children: []*btreeNode[K, V]{bt.root}}
		bt.splitChild(newRoot, 0)
		bt.root = newRoot
	}
	bt.insertNonFull(bt.root, key, val)
	bt.size++
	return true
}

// insertNonFull inserts an absent key into a node that is not full.
func (bt *BTree[K, V]) insertNonFull(node *btreeNode[K, V], key K, val V) {
	for {
		i, _ := slices.BinarySearch(node.keys, key)
		if node.leaf {
			node.keys = slices.Insert(node.keys, i, key)
			node.values = slices.Insert(node.values, i, val)
			return
		}
		if len(node.children[i].keys) == 2*bt.t-1 {
			bt.splitChild(node, i)
			if key > node.keys[i] {
				i++
			}
		}
		node = node.children[i]
	}
}

// splitChild splits the full i-th child of node around its median key.
func (bt *BTree[K, V]) splitChild(node *btreeNode[K, V], i int) {
	t := bt.t
	child := node.children[i]
	right := &btreeNode[K, V]{leaf: child.leaf}

	midKey := child.keys[t-1]
	midVal := child.values[t-1]

	right.keys = append(right.keys, child.keys[t:]...)
	right.values = append(right.values, child.values[t:]...)
	child.keys = child.keys[:t-1]
	child.values = child.values[:t-1]

	if !child.leaf {
		right.children = append(right.children, child.children[t:]...)
		child.children = child.children[:t]
	}

	node.keys = slices.Insert(node.keys, i, midKey)
	node.values = slices.Insert(node.values, i, midVal)
	node.children = slices.Insert(node.children, i+1, right)
}

// Delete removes a key. It returns false if the key was not present.
func (bt *BTree[K, V]) Delete(key K) bool {
	if !bt.remove(bt.root, key) {
		return false
	}
	// An emptied internal root hands over to its only child
	if len(bt.root.keys) == 0 && !bt.root.leaf {
		bt.root = bt.root.children[0]
	}
	bt.size--
	return true
}

// remove deletes key from the subtree rooted at node. Every node it
// descends into holds at least t keys, so a removal never underflows.
func (bt *BTree[K, V]) remove(node *btreeNode[K, V], key K) bool {
	i, found := slices.BinarySearch(node.keys, key)

	if found {
		if node.leaf {
			node.keys = slices.Delete(node.keys, i, i+1)
			node.values = slices.Delete(node.values, i, i+1)
			return true
		}
		return bt.removeFromInternal(node, i)
	}

	if node.leaf {
		return false
	}
	if len(node.children[i].keys) < bt.t {
		i = bt.fillChild(node, i)
	}
	return bt.remove(node.children[i], key)
}

// removeFromInternal deletes node.keys[i] from an internal node.
func (bt *BTree[K, V]) removeFromInternal(node *btreeNode[K, V], i int) bool {
	key := node.keys[i]
	left, right := node.children[i], node.children[i+1]

	switch {
	case len(left.keys) >= bt.t:
		predKey, predVal := maxEntry(left)
		node.keys[i], node.values[i] = predKey, predVal
		return bt.remove(left, predKey)
	case len(right.keys) >= bt.t:
		succKey, succVal := minEntry(right)
		node.keys[i], node.values[i] = succKey, succVal
		return bt.remove(right, succKey)
	default:
		bt.mergeChildren(node, i)
		return bt.remove(left, key)
	}
}

func maxEntry[K cmp.Ordered, V any](node *btreeNode[K, V]) (K, V) {
	for !node.leaf {
		node = node.children[len(node.children)-1]
	}
	last := len(node.keys) - 1
	return node.keys[last], node.values[last]
}

func minEntry[K cmp.Ordered, V any](node *btreeNode[K, V]) (K, V) {
	for !node.leaf {
		node = node.children[0]
	}
	return node.keys[0], node.values[0]
}

// fillChild gives node.children[i] at least t keys and returns the index
// of the child that now covers the original range.
func (bt *BTree[K, V]) fillChild(node *btreeNode[K, V], i int) int {
	switch {
	case i > 0 && len(node.children[i-1].keys) >= bt.t:
		bt.borrowFromPrev(node, i)
		return i
	case i < len(node.children)-1 && len(node.children[i+1].keys) >= bt.t:
		bt.borrowFromNext(node, i)
		return i
	case i < len(node.children)-1:
		bt.mergeChildren(node, i)
		return i
	default:
		bt.mergeChildren(node, i-1)
		return i - 1
	}
}

// borrowFromPrev rotates one key from the left sibling through the parent.
func (bt *BTree[K, V]) borrowFromPrev(node *btreeNode[K, V], i int) {
	child := node.children[i]
	sibling := node.children[i-1]
	last := len(sibling.keys) - 1

	child.keys = slices.Insert(child.keys, 0, node.keys[i-1])
	child.values = slices.Insert(child.values, 0, node.values[i-1])

	node.keys[i-1] = sibling.keys[last]
	node.values[i-1] = sibling.values[last]
	sibling.keys = sibling.keys[:last]
	sibling.values = sibling.values[:last]

	if !child.leaf {
		lastChild := len(sibling.children) - 1
		child.children = slices.Insert(child.children, 0, sibling.children[lastChild])
		sibling.children = sibling.children[:lastChild]
	}
}

// borrowFromNext rotates one key from the right sibling through the parent.
func (bt *BTree[K, V]) borrowFromNext(node *btreeNode[K, V], i int) {
	child := node.children[i]
	sibling := node.children[i+1]

	child.keys = append(child.keys, node.keys[i])
	child.values = append(child.values, node.values[i])

	node.keys[i] = sibling.keys[0]
	node.values[i] = sibling.values[0]
	sibling.keys = slices.Delete(sibling.keys, 0, 1)
	sibling.values = slices.Delete(sibling.values, 0, 1)

	if !child.leaf {
		child.children = append(child.children, sibling.children[0])
		sibling.children = slices.Delete(sibling.children, 0, 1)
	}
}

// mergeChildren folds node.keys[i] and children[i+1] into children[i].
func (bt *BTree[K, V]) mergeChildren(node *btreeNode[K, V], i int) {
	child := node.children[i]
	sibling := node.children[i+1]

	child.keys = append(child.keys, node.keys[i])
	child.values = append(child.values, node.values[i])
	child.keys = append(child.keys, sibling.keys...)
	child.values = append(child.values, sibling.values...)
	if !child.leaf {
		child.children = append(child.children, sibling.children...)
	}

	node.keys = slices.Delete(node.keys, i, i+1)
	node.values = slices.Delete(node.values, i, i+1)
	node.children = slices.Delete(node.children, i+1, i+2)
}

// Ascend calls fn for every entry in key order until fn returns false.
func (bt *BTree[K, V]) Ascend(fn func(key K, val V) bool) {
	bt.ascendNode(bt.root, fn)
}

func (bt *BTree[K, V]) ascendNode(node *btreeNode[K, V], fn func(K, V) bool) bool {
	for i := range node.keys {
		if !node.leaf && !bt.ascendNode(node.children[i], fn) {
			return false
		}
		if !fn(node.keys[i], node.values[i]) {
			return false
		}
	}
	if !node.leaf {
		return bt.ascendNode(node.children[len(node.keys)], fn)
	}
	return true
}

// Keys returns all keys in order.
func (bt *BTree[K, V]) Keys() []K {
	keys := make([]K, 0, bt.size)
	bt.Ascend(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

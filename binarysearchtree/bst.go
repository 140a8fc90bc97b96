package binarysearchtree

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/constraints"
)

// Node a single node that composes the tree
type Node[K constraints.Ordered, V any] struct {
	key    K
	value  V
	height int
	left   *Node[K, V]
	right  *Node[K, V]
	parent *Node[K, V]
}

type Iterator[K constraints.Ordered, V any] struct {
	n *Node[K, V]
}

func (it Iterator[K, V]) Value() V {
	return it.n.value
}

func (it Iterator[K, V]) Key() K {
	return it.n.key
}

func (it Iterator[K, V]) End() bool {
	return it.n == nil
}

func (it Iterator[K, V]) Prev() Iterator[K, V] {
	return Iterator[K, V]{
		n: getPrevNode(it.n),
	}
}

func (it Iterator[K, V]) Next() Iterator[K, V] {
	return Iterator[K, V]{
		n: getNextNode(it.n),
	}
}

// AVLTree is a self balancing binary search tree. The zero value is ready to
// use. Keys are unique, inserting an existing key replaces its value.
type AVLTree[K constraints.Ordered, V any] struct {
	root *Node[K, V]
	size int
	lock sync.RWMutex
}

func height[K constraints.Ordered, V any](n *Node[K, V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *Node[K, V]) update() {
	l, r := height(n.left), height(n.right)
	if l > r {
		n.height = l + 1
	} else {
		n.height = r + 1
	}
	if n.left != nil {
		n.left.parent = n
	}
	if n.right != nil {
		n.right.parent = n
	}
}

func rotateRight[K constraints.Ordered, V any](n *Node[K, V]) *Node[K, V] {
	l := n.left
	n.left = l.right
	l.right = n
	n.update()
	l.update()
	return l
}

func rotateLeft[K constraints.Ordered, V any](n *Node[K, V]) *Node[K, V] {
	r := n.right
	n.right = r.left
	r.left = n
	n.update()
	r.update()
	return r
}

func rebalance[K constraints.Ordered, V any](n *Node[K, V]) *Node[K, V] {
	n.update()
	balance := height(n.left) - height(n.right)
	switch {
	case balance > 1:
		if height(n.left.left) < height(n.left.right) {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case balance < -1:
		if height(n.right.right) < height(n.right.left) {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// Insert inserts value under key
func (t *AVLTree[K, V]) Insert(key K, value V) {
	t.lock.Lock()
	defer t.lock.Unlock()
	var added bool
	t.root, added = insertNode(t.root, key, value)
	t.root.parent = nil
	if added {
		t.size++
	}
}

// internal function to find the correct place for a node in a tree
func insertNode[K constraints.Ordered, V any](n *Node[K, V], key K, value V) (*Node[K, V], bool) {
	if n == nil {
		return &Node[K, V]{key: key, value: value, height: 1}, true
	}
	var added bool
	switch {
	case key < n.key:
		n.left, added = insertNode(n.left, key, value)
	case key > n.key:
		n.right, added = insertNode(n.right, key, value)
	default:
		n.value = value
		return n, false
	}
	return rebalance(n), added
}

// Remove removes the node with key `key` from the tree, reports whether it
// existed.
func (t *AVLTree[K, V]) Remove(key K) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	var removed bool
	t.root, removed = removeNode(t.root, key)
	if t.root != nil {
		t.root.parent = nil
	}
	if removed {
		t.size--
	}
	return removed
}

func removeNode[K constraints.Ordered, V any](n *Node[K, V], key K) (*Node[K, V], bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	switch {
	case key < n.key:
		n.left, removed = removeNode(n.left, key)
	case key > n.key:
		n.right, removed = removeNode(n.right, key)
	default:
		if n.left == nil || n.right == nil {
			child := n.left
			if child == nil {
				child = n.right
			}
			return child, true
		}
		// replace with the smallest node of the right side
		succ := n.right
		for succ.left != nil {
			succ = succ.left
		}
		n.key, n.value = succ.key, succ.value
		n.right, _ = removeNode(n.right, succ.key)
		removed = true
	}
	return rebalance(n), removed
}

// Size returns the number of nodes
func (t *AVLTree[K, V]) Size() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.size
}

// InOrderTraverse visits all nodes with in-order traversing
func (t *AVLTree[K, V]) InOrderTraverse(f func(K, V)) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	inOrderTraverse(t.root, f)
}

// internal recursive function to traverse in order
func inOrderTraverse[K constraints.Ordered, V any](n *Node[K, V], f func(K, V)) {
	if n != nil {
		inOrderTraverse(n.left, f)
		f(n.key, n.value)
		inOrderTraverse(n.right, f)
	}
}

// Min returns the iterator at the smallest key
func (t *AVLTree[K, V]) Min() Iterator[K, V] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	n := t.root
	for n != nil && n.left != nil {
		n = n.left
	}
	return Iterator[K, V]{n: n}
}

// Max returns the iterator at the largest key
func (t *AVLTree[K, V]) Max() Iterator[K, V] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	n := t.root
	for n != nil && n.right != nil {
		n = n.right
	}
	return Iterator[K, V]{n: n}
}

// Search returns the iterator at key, End() when absent
func (t *AVLTree[K, V]) Search(key K) Iterator[K, V] {
	t.lock.RLock()
	defer t.lock.RUnlock()
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return Iterator[K, V]{n: n}
		}
	}
	return Iterator[K, V]{}
}

// LowerBound returns the first node whose key is >= key.
func (t *AVLTree[K, V]) LowerBound(key K) Iterator[K, V] {
	_, ceil := t.FloorCeil(key)
	return ceil
}

// FloorCeil returns the greatest node with key <= key and the smallest node
// with key >= key.
func (t *AVLTree[K, V]) FloorCeil(key K) (floor, ceil Iterator[K, V]) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			ceil.n = n
			n = n.left
		case key > n.key:
			floor.n = n
			n = n.right
		default:
			floor.n, ceil.n = n, n
			return
		}
	}
	return
}

// String returns a visual representation of the tree
func (t *AVLTree[K, V]) String() string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	var sb strings.Builder
	stringify(&sb, t.root, 0)
	return sb.String()
}

// internal recursive function to print a tree
func stringify[K constraints.Ordered, V any](sb *strings.Builder, n *Node[K, V], level int) {
	if n != nil {
		stringify(sb, n.left, level+1)
		fmt.Fprintf(sb, "%s---[ %v\n", strings.Repeat("       ", level), n.key)
		stringify(sb, n.right, level+1)
	}
}

func getPrevNode[K constraints.Ordered, V any](node *Node[K, V]) *Node[K, V] {
	if node == nil {
		return nil
	}
	if node.left != nil {
		node = node.left
		for node.right != nil {
			node = node.right
		}
		return node
	}

	parent := node.parent
	for parent != nil && node == parent.left {
		node = parent
		parent = parent.parent
	}
	return parent
}

func getNextNode[K constraints.Ordered, V any](node *Node[K, V]) *Node[K, V] {
	if node == nil {
		return nil
	}
	if node.right != nil {
		node = node.right
		for node.left != nil {
			node = node.left
		}
		return node
	}

	parent := node.parent
	for parent != nil && node == parent.right {
		node = parent
		parent = parent.parent
	}
	return parent
}

package index

import (
	"geoq/common"
	"github.com/hauke96/sigolo/v2"
	"golang.org/x/exp/constraints"
	"time"
)

// OrderedTree is an AVL tree holding items ordered by a key. Items with equal keys are kept in insertion order, which
// makes every traversal stable.
type OrderedTree[K constraints.Ordered, T any] struct {
	root    *avlNode[K, T]
	nextSeq uint64
}

type avlNode[K constraints.Ordered, T any] struct {
	key    K
	seq    uint64
	item   T
	height int
	size   int
	left   *avlNode[K, T]
	right  *avlNode[K, T]
}

func NewOrderedTree[K constraints.Ordered, T any]() *OrderedTree[K, T] {
	return &OrderedTree[K, T]{}
}

// BuildOrderedTree inserts all items in their given order with the key determined by keyFunc.
func BuildOrderedTree[K constraints.Ordered, T any](items []T, keyFunc func(T) K) (*OrderedTree[K, T], error) {
	start := time.Now()

	tree := NewOrderedTree[K, T]()
	for _, item := range items {
		err := tree.Insert(keyFunc(item), item)
		if err != nil {
			return nil, err
		}
	}

	sigolo.Debugf("Built ordered tree with %d items and height %d in %s", tree.Len(), tree.Height(), time.Since(start))
	return tree, nil
}

// isNaN is only true for floating point NaN values, since they are the only values not equal to themselves.
func isNaN[K constraints.Ordered](key K) bool {
	return key != key
}

// Insert adds the item with the given key. NaN keys cannot be ordered and are rejected.
func (t *OrderedTree[K, T]) Insert(key K, item T) error {
	if isNaN(key) {
		return common.NewQueryError("insert", "key must not be NaN")
	}

	node := &avlNode[K, T]{
		key:    key,
		seq:    t.nextSeq,
		item:   item,
		height: 1,
		size:   1,
	}
	t.nextSeq++
	t.root = t.root.insert(node)
	return nil
}

// Delete removes exactly one item with the given key: the one inserted most recently. The bool is false when no item
// has this key.
func (t *OrderedTree[K, T]) Delete(key K) (T, bool) {
	var latest *avlNode[K, T]
	for n := t.root; n != nil; {
		if key < n.key {
			n = n.left
		} else if key > n.key {
			n = n.right
		} else {
			// Later insertions of the same key are always on the right side.
			latest = n
			n = n.right
		}
	}

	if latest == nil {
		var zero T
		return zero, false
	}

	item := latest.item
	t.root = t.root.delete(latest.key, latest.seq)
	return item, true
}

// Get returns all items with exactly this key in insertion order.
func (t *OrderedTree[K, T]) Get(key K) []T {
	return t.Range(key, key)
}

// Range returns all items with lo <= key <= hi ordered by key and insertion order.
func (t *OrderedTree[K, T]) Range(lo K, hi K) []T {
	var result []T
	if lo > hi {
		return result
	}
	t.root.collectRange(lo, hi, &result)
	return result
}

// Walk visits all items in ascending key order until the visitor returns false.
func (t *OrderedTree[K, T]) Walk(visitor func(key K, item T) bool) {
	t.root.walk(visitor)
}

func (t *OrderedTree[K, T]) Items() []T {
	result := make([]T, 0, t.Len())
	t.Walk(func(_ K, item T) bool {
		result = append(result, item)
		return true
	})
	return result
}

// Min returns the smallest key and its first inserted item.
func (t *OrderedTree[K, T]) Min() (K, T, bool) {
	if t.root == nil {
		var zeroKey K
		var zeroItem T
		return zeroKey, zeroItem, false
	}
	n := t.root
	for n.left != nil {
		n = n.left
	}
	return n.key, n.item, true
}

// Max returns the largest key and its last inserted item.
func (t *OrderedTree[K, T]) Max() (K, T, bool) {
	if t.root == nil {
		var zeroKey K
		var zeroItem T
		return zeroKey, zeroItem, false
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n.key, n.item, true
}

// Rank returns the 1-based position the key would have, which is one more than the number of items with a smaller key.
func (t *OrderedTree[K, T]) Rank(key K) int {
	smaller := 0
	for n := t.root; n != nil; {
		if n.key < key {
			smaller += n.left.getSize() + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return smaller + 1
}

func (t *OrderedTree[K, T]) Len() int {
	return t.root.getSize()
}

func (t *OrderedTree[K, T]) Height() int {
	return t.root.getHeight()
}

func (n *avlNode[K, T]) getHeight() int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *avlNode[K, T]) getSize() int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *avlNode[K, T]) isBefore(key K, seq uint64) bool {
	return n.key < key || (n.key == key && n.seq < seq)
}

func (n *avlNode[K, T]) insert(newNode *avlNode[K, T]) *avlNode[K, T] {
	if n == nil {
		return newNode
	}

	if newNode.isBefore(n.key, n.seq) {
		n.left = n.left.insert(newNode)
	} else {
		n.right = n.right.insert(newNode)
	}

	return n.rebalance()
}

func (n *avlNode[K, T]) delete(key K, seq uint64) *avlNode[K, T] {
	if n == nil {
		return nil
	}

	if key == n.key && seq == n.seq {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}

		successor := n.right
		for successor.left != nil {
			successor = successor.left
		}
		n.key, n.seq, n.item = successor.key, successor.seq, successor.item
		n.right = n.right.delete(successor.key, successor.seq)
	} else if n.isBefore(key, seq) {
		n.right = n.right.delete(key, seq)
	} else {
		n.left = n.left.delete(key, seq)
	}

	return n.rebalance()
}

func (n *avlNode[K, T]) update() {
	n.height = 1 + max(n.left.getHeight(), n.right.getHeight())
	n.size = 1 + n.left.getSize() + n.right.getSize()
}

func (n *avlNode[K, T]) balance() int {
	return n.left.getHeight() - n.right.getHeight()
}

func (n *avlNode[K, T]) rebalance() *avlNode[K, T] {
	n.update()

	switch balance := n.balance(); {
	case balance > 1:
		if n.left.balance() < 0 {
			n.left = n.left.rotateLeft()
		}
		return n.rotateRight()
	case balance < -1:
		if n.right.balance() > 0 {
			n.right = n.right.rotateRight()
		}
		return n.rotateLeft()
	}

	return n
}

func (n *avlNode[K, T]) rotateLeft() *avlNode[K, T] {
	newRoot := n.right
	n.right = newRoot.left
	newRoot.left = n
	n.update()
	newRoot.update()
	return newRoot
}

func (n *avlNode[K, T]) rotateRight() *avlNode[K, T] {
	newRoot := n.left
	n.left = newRoot.right
	newRoot.right = n
	n.update()
	newRoot.update()
	return newRoot
}

func (n *avlNode[K, T]) collectRange(lo K, hi K, result *[]T) {
	if n == nil {
		return
	}
	// Equal keys may be on both sides, so only strictly outside keys prune a subtree.
	if lo <= n.key {
		n.left.collectRange(lo, hi, result)
	}
	if lo <= n.key && n.key <= hi {
		*result = append(*result, n.item)
	}
	if n.key <= hi {
		n.right.collectRange(lo, hi, result)
	}
}

func (n *avlNode[K, T]) walk(visitor func(key K, item T) bool) bool {
	if n == nil {
		return true
	}
	return n.left.walk(visitor) && visitor(n.key, n.item) && n.right.walk(visitor)
}

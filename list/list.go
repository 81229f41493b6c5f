// Package list implements the intrusive doubly-linked list abstraction
// assumed by the allocator package: add-at-head, remove-arbitrary, and
// head/next traversal, all O(1).
//
// Unlike container/list, nodes do not box their value in an interface on
// every operation; the node itself is returned by PushFront so a caller can
// hold onto it and call Remove in O(1) later without a search.
package list

// Node is one element of a List. The zero value is an unlinked node.
type Node[T any] struct {
	Value      T
	next, prev *Node[T]
	owner      *List[T]
}

// Next returns the node following n, or nil at the end of the list.
func (n *Node[T]) Next() *Node[T] {
	if n == nil {
		return nil
	}
	return n.next
}

// List is a doubly-linked list with head insertion, matching the
// Add/Remove/GetHead/GetNext shape used throughout the allocator package.
type List[T any] struct {
	head *Node[T]
	len  int
}

// PushFront links a new node carrying v at the head of the list and returns
// it so the caller can Remove it later in O(1).
func (l *List[T]) PushFront(v T) *Node[T] {
	n := &Node[T]{Value: v, owner: l}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	l.len++
	return n
}

// Remove unlinks n from the list it belongs to. Removing a node that is not
// currently linked into l is a no-op.
func (l *List[T]) Remove(n *Node[T]) {
	if n == nil || n.owner != l {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	n.next, n.prev, n.owner = nil, nil, nil
	l.len--
}

// Front returns the head node, or nil if the list is empty.
func (l *List[T]) Front() *Node[T] {
	return l.head
}

// Len returns the number of linked nodes. Used only for statistics; hot
// paths never need to count the list.
func (l *List[T]) Len() int {
	return l.len
}

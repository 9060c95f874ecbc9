package session

import "sync"

// notifier keeps the identity-change subscriber list. Every profile write and
// every clear broadcasts exactly once; subscribers re-read the store themselves.
type notifier struct {
	lock   sync.Mutex
	nextID int
	subs   map[int]func()
}

func (n *notifier) subscribe(fn func()) func() {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.lock.Lock()
		defer n.lock.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) broadcast() {
	n.lock.Lock()
	fns := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.lock.Unlock()

	// Callbacks run outside the lock so an observer may subscribe or
	// unsubscribe from within its own callback.
	for _, fn := range fns {
		fn()
	}
}

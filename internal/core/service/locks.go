package service

import "sync"

// lockTable hands out one mutex per user id. Pair creation is the only
// place two users' state is touched together; lockPair always acquires in
// ascending id order so concurrent, mutually-initiated pairings form a
// global total order and cannot deadlock.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// lockUser takes the user's exclusive lock and returns the release func.
func (t *lockTable) lockUser(id string) func() {
	l := t.get(id)
	l.Lock()
	return l.Unlock
}

// lockPair takes both users' locks in ascending id order, regardless of
// which side initiated the pairing.
func (t *lockTable) lockPair(a, b string) func() {
	if b < a {
		a, b = b, a
	}
	first, second := t.get(a), t.get(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

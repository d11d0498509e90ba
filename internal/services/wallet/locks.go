package wallet

import (
	"sort"
	"sync"
)

// accountLocks serializes all mutations to a given account through a
// per-account mutex. Multi-account operations acquire their locks in
// ascending user-id order so two concurrent transfers between the same
// pair cannot deadlock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *accountLocks) get(userID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	return m
}

// Acquire locks every listed account and returns the matching release
// function. Duplicate ids are collapsed.
func (l *accountLocks) Acquire(userIDs ...uint) func() {
	seen := make(map[uint]bool, len(userIDs))
	ids := make([]uint, 0, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

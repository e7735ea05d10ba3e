package booking

import (
	"sort"
	"sync"
)

// TableLocks serializes check-and-commit sequences per physical table. The
// conflict pipeline reads shared state and then writes an assignment; without
// a critical section two concurrent requests could both pass the check and
// double-book. Locks are acquired in sorted id order so overlapping sets
// cannot deadlock. Semantics: serialized, first writer wins.
type TableLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewTableLocks creates an empty lock registry.
func NewTableLocks() *TableLocks {
	return &TableLocks{locks: make(map[int64]*sync.Mutex)}
}

func (t *TableLocks) lockFor(id int64) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// Acquire locks every given table id and returns the release function.
// Duplicate ids are collapsed.
func (t *TableLocks) Acquire(ids ...int64) func() {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	held := make([]*sync.Mutex, 0, len(unique))
	for _, id := range unique {
		l := t.lockFor(id)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

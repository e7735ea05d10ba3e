package booking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableLocksSerializesSameTable(t *testing.T) {
	locks := NewTableLocks()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.Acquire(7)
			defer release()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestTableLocksOverlappingSetsNoDeadlock(t *testing.T) {
	locks := NewTableLocks()

	var wg sync.WaitGroup
	// Opposite orderings of the same set must not deadlock; Acquire sorts.
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release := locks.Acquire(1, 2, 3)
			release()
		}()
		go func() {
			defer wg.Done()
			release := locks.Acquire(3, 2, 1)
			release()
		}()
	}
	wg.Wait()
}

func TestTableLocksDuplicateIDs(t *testing.T) {
	locks := NewTableLocks()
	// Duplicates collapse; acquiring the same id twice in one call must not
	// self-deadlock.
	release := locks.Acquire(5, 5, 5)
	release()
}

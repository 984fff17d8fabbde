package service

import (
	"sync"
	"testing"
	"time"
)

func TestLockTable_SameMutexPerUser(t *testing.T) {
	lt := newLockTable()
	if lt.get("usr_a") != lt.get("usr_a") {
		t.Fatalf("same id must map to the same mutex")
	}
	if lt.get("usr_a") == lt.get("usr_b") {
		t.Fatalf("distinct ids must map to distinct mutexes")
	}
}

func TestLockTable_LockUserExcludes(t *testing.T) {
	lt := newLockTable()
	unlock := lt.lockUser("usr_a")

	acquired := make(chan struct{})
	go func() {
		u := lt.lockUser("usr_a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatalf("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("lock never released")
	}
}

// Opposite-order pair locking across many goroutines: with ordered
// acquisition this finishes; with naive ordering it deadlocks and the
// test times out.
func TestLockTable_LockPairNoDeadlock(t *testing.T) {
	lt := newLockTable()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := lt.lockPair("usr_a", "usr_b")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := lt.lockPair("usr_b", "usr_a")
			unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("pair locking deadlocked")
	}
}

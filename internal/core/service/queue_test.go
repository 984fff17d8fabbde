package service

import (
	"errors"
	"testing"
	"time"

	"github.com/pairline/matching-system/internal/core/domain"
)

func TestWaitingRoom_SingleEntryPerUser(t *testing.T) {
	r := newWaitingRoom()
	now := time.Now()

	if err := r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, now)); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, now))
	if !errors.Is(err, domain.ErrAlreadyQueued) {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
	if r.size() != 1 {
		t.Fatalf("size = %d, want 1", r.size())
	}
}

func TestWaitingRoom_RemovePairAllOrNothing(t *testing.T) {
	r := newWaitingRoom()
	now := time.Now()
	_ = r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, now))

	if r.removePair("usr_a", "usr_b") {
		t.Fatalf("removePair should fail when one side is missing")
	}
	if _, ok := r.entry("usr_a", now); !ok {
		t.Fatalf("failed removePair must leave the present entry intact")
	}

	_ = r.add(domain.NewQueueEntry("usr_b", domain.Preferences{}, 0, now))
	if !r.removePair("usr_a", "usr_b") {
		t.Fatalf("removePair should succeed with both present")
	}
	if r.size() != 0 {
		t.Fatalf("size = %d, want 0", r.size())
	}
}

func TestWaitingRoom_SnapshotOrder(t *testing.T) {
	r := newWaitingRoom()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// usr_c has two boosts, usr_a waited longest, usr_b is fresh.
	_ = r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, base.Add(-8*time.Second)))
	_ = r.add(domain.NewQueueEntry("usr_b", domain.Preferences{}, 0, base))
	_ = r.add(domain.NewQueueEntry("usr_c", domain.Preferences{}, 2, base))

	got := r.snapshot(base)
	if len(got) != 3 {
		t.Fatalf("snapshot length = %d", len(got))
	}
	// Scores: usr_c = 20, usr_a = 8, usr_b = 0.
	if got[0].UserID != "usr_c" || got[1].UserID != "usr_a" || got[2].UserID != "usr_b" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].UserID, got[1].UserID, got[2].UserID)
	}
}

func TestWaitingRoom_SnapshotLongerWaitBreaksScoreTie(t *testing.T) {
	r := newWaitingRoom()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same score (10): usr_a from 10s of wait, usr_b from one boost.
	_ = r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, base.Add(-10*time.Second)))
	_ = r.add(domain.NewQueueEntry("usr_b", domain.Preferences{}, 1, base))

	got := r.snapshot(base)
	if got[0].UserID != "usr_a" {
		t.Fatalf("equal scores should rank the longer wait first, got %s", got[0].UserID)
	}
}

func TestWaitingRoom_SnapshotReturnsCopies(t *testing.T) {
	r := newWaitingRoom()
	now := time.Now()
	_ = r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, 0, now))

	snap := r.snapshot(now)
	snap[0].FairnessScore = 999

	e, _ := r.entry("usr_a", now)
	if e.FairnessScore == 999 {
		t.Fatalf("snapshot must not alias live entries")
	}
}

func TestWaitingRoom_BoostsSurviveEntries(t *testing.T) {
	r := newWaitingRoom()
	now := time.Now()

	r.grantBoost("usr_a")
	r.grantBoost("usr_a")
	if r.boostsFor("usr_a") != 2 {
		t.Fatalf("boosts = %d, want 2", r.boostsFor("usr_a"))
	}

	// Boosts live outside entries: churn through the queue and re-read.
	_ = r.add(domain.NewQueueEntry("usr_a", domain.Preferences{}, r.boostsFor("usr_a"), now))
	r.remove("usr_a")
	if r.boostsFor("usr_a") != 2 {
		t.Fatalf("boosts lost on remove")
	}
}

func TestWaitingRoom_WaitingLongerThan(t *testing.T) {
	r := newWaitingRoom()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_ = r.add(domain.NewQueueEntry("usr_old", domain.Preferences{}, 0, base.Add(-30*time.Second)))
	_ = r.add(domain.NewQueueEntry("usr_new", domain.Preferences{}, 0, base.Add(-5*time.Second)))

	ids := r.waitingLongerThan(20*time.Second, base)
	if len(ids) != 1 || ids[0] != "usr_old" {
		t.Fatalf("waitingLongerThan = %v", ids)
	}
}

package matchmaking

import (
	"testing"
	"time"
)

func withFixedClock(t *testing.T, fn func(advance func(time.Duration))) {
	t.Helper()
	now := time.Unix(0, 0)
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
	fn(func(d time.Duration) { now = now.Add(d) })
}

func TestEnqueueRejectsDuplicateAndCapacity(t *testing.T) {
	q := New(1, 100)
	if err := q.Enqueue(1, 1200); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(1, 1200); err != ErrAlreadyQueued {
		t.Fatalf("Enqueue duplicate: got %v, want ErrAlreadyQueued", err)
	}
	if err := q.Enqueue(2, 1300); err != ErrCapacity {
		t.Fatalf("Enqueue at capacity: got %v, want ErrCapacity", err)
	}
}

func TestDequeueRemovesEntry(t *testing.T) {
	q := New(2, 100)
	q.Enqueue(1, 1200)
	q.Dequeue(1)
	if err := q.Enqueue(1, 1250); err != nil {
		t.Fatalf("Enqueue after dequeue: %v", err)
	}
}

func TestTickPairsWithinThreshold(t *testing.T) {
	withFixedClock(t, func(advance func(time.Duration)) {
		q := New(10, 100)
		q.Enqueue(1, 1250)
		advance(time.Second)
		q.Enqueue(2, 1290)

		pairings := q.Tick()
		if len(pairings) != 1 {
			t.Fatalf("Tick produced %d pairings, want 1", len(pairings))
		}
		if pairings[0].SlotA != 1 || pairings[0].SlotB != 2 {
			t.Errorf("pairing = %+v, want {1 2}", pairings[0])
		}
	})
}

func TestTickDoesNotPairBeyondThreshold(t *testing.T) {
	q := New(10, 100)
	q.Enqueue(1, 1000)
	q.Enqueue(2, 1200)

	pairings := q.Tick()
	if len(pairings) != 0 {
		t.Fatalf("Tick produced %d pairings, want 0 (diff >= threshold)", len(pairings))
	}
}

func TestTickPrefersClosestEloThenEarliestJoin(t *testing.T) {
	withFixedClock(t, func(advance func(time.Duration)) {
		q := New(10, 100)
		q.Enqueue(1, 1200) // the player to be matched
		advance(time.Second)
		q.Enqueue(2, 1250) // diff 50, joined second
		advance(time.Second)
		q.Enqueue(3, 1230) // diff 30, joined third -- closer, should win

		pairings := q.Tick()
		if len(pairings) != 1 {
			t.Fatalf("Tick produced %d pairings, want 1", len(pairings))
		}
		if pairings[0].SlotB != 3 {
			t.Errorf("expected slot 1 paired with the closer Elo (3), got %+v", pairings[0])
		}
		// Slot 2 remains in queue for a later tick.
		if err := q.Enqueue(2, 1250); err != ErrAlreadyQueued {
			t.Errorf("slot 2 should still be queued, Enqueue returned %v", err)
		}
	})
}

func TestTickPairsMultipleIndependentGroups(t *testing.T) {
	q := New(10, 100)
	q.Enqueue(1, 1200)
	q.Enqueue(2, 1210)
	q.Enqueue(3, 1800)
	q.Enqueue(4, 1790)

	pairings := q.Tick()
	if len(pairings) != 2 {
		t.Fatalf("Tick produced %d pairings, want 2", len(pairings))
	}
}

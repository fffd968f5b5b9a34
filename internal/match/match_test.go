package match

import "testing"

func TestCreateFixedColorAssignment(t *testing.T) {
	r := New(2, 2)
	m, err := r.Create("alice", "bob", 1, 2, Fixed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.White != "alice" || m.Black != "bob" {
		t.Errorf("Fixed assignment got white=%s black=%s, want alice/bob", m.White, m.Black)
	}
	if m.WhiteSession != 1 || m.BlackSession != 2 {
		t.Errorf("session slots not preserved: %+v", m)
	}
	if len(m.MatchID) != 9 || m.MatchID[0] != 'M' {
		t.Errorf("MatchID = %q, want 9 chars starting with M", m.MatchID)
	}
}

func TestCreateFailsAtCapacity(t *testing.T) {
	r := New(1, 1)
	if _, err := r.Create("a", "b", 0, 1, Fixed); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create("c", "d", 2, 3, Fixed); err != ErrNoSlot {
		t.Fatalf("Create at capacity: got %v, want ErrNoSlot", err)
	}
}

func TestFindByID(t *testing.T) {
	r := New(2, 2)
	m, _ := r.Create("alice", "bob", 0, 1, Fixed)

	found, err := r.FindByID(m.MatchID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.MatchID != m.MatchID {
		t.Errorf("FindByID returned a different match")
	}

	if _, err := r.FindByID("Mdoesnotexist"); err != ErrNotFound {
		t.Errorf("FindByID unknown: got %v, want ErrNotFound", err)
	}
}

func TestDeactivateFreesSlotAndRecordsRecentMatch(t *testing.T) {
	r := New(1, 2)
	m, _ := r.Create("alice", "bob", 0, 1, Fixed)
	matchID := m.MatchID

	if err := r.Deactivate(matchID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := r.FindByID(matchID); err != ErrNotFound {
		t.Errorf("deactivated match should no longer be active, got err=%v", err)
	}

	rm, err := r.RecentFind(matchID)
	if err != nil {
		t.Fatalf("RecentFind: %v", err)
	}
	if rm.White != "alice" || rm.Black != "bob" || !rm.Valid {
		t.Errorf("RecentMatch snapshot wrong: %+v", rm)
	}
	if rm.RematchOfferedBy != -1 {
		t.Errorf("RematchOfferedBy = %d, want -1", rm.RematchOfferedBy)
	}

	// Slot should be reusable.
	if _, err := r.Create("carol", "dave", 2, 3, Fixed); err != nil {
		t.Fatalf("Create after deactivate: %v", err)
	}
}

func TestRecentMatchRingEvictsOldestOnOverflow(t *testing.T) {
	r := New(5, 2)
	var ids []string
	for i := 0; i < 3; i++ {
		m, err := r.Create("alice", "bob", i, i+10, Fixed)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, m.MatchID)
		r.Deactivate(m.MatchID)
	}

	// Capacity is 2, so the first match's RecentMatch entry is gone.
	if _, err := r.RecentFind(ids[0]); err != ErrNotFound {
		t.Errorf("oldest recent match should have been evicted, got err=%v", err)
	}
	if _, err := r.RecentFind(ids[2]); err != nil {
		t.Errorf("newest recent match should still be present: %v", err)
	}
}

func TestOfferAndInvalidateRematch(t *testing.T) {
	r := New(1, 1)
	m, _ := r.Create("alice", "bob", 0, 1, Fixed)
	r.Deactivate(m.MatchID)

	if err := r.OfferRematch(m.MatchID, 0); err != nil {
		t.Fatalf("OfferRematch: %v", err)
	}
	rm, _ := r.RecentFind(m.MatchID)
	if rm.RematchOfferedBy != 0 {
		t.Errorf("RematchOfferedBy = %d, want 0", rm.RematchOfferedBy)
	}

	if err := r.InvalidateRecent(m.MatchID); err != nil {
		t.Fatalf("InvalidateRecent: %v", err)
	}
	if _, err := r.RecentFind(m.MatchID); err != ErrNotFound {
		t.Errorf("invalidated entry should no longer be found, got err=%v", err)
	}
}

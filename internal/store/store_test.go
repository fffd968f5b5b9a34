package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	return New(path, 1000, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestStore(t)
	if err := s.Register("alice", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	profile, err := s.Login("alice", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if profile.Elo != 1200 {
		t.Errorf("Elo = %d, want 1200", profile.Elo)
	}
	if !profile.Online {
		t.Error("profile.Online should be true after login")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	if err := s.Register("alice", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := s.Register("alice", "other"); err != ErrUsernameTaken {
		t.Fatalf("Register duplicate: got %v, want ErrUsernameTaken", err)
	}
}

func TestLoginBadPassword(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "correct")
	if _, err := s.Login("alice", "wrong"); err != ErrBadPassword {
		t.Fatalf("Login: got %v, want ErrBadPassword", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Login("ghost", "pw"); err != ErrNotFound {
		t.Fatalf("Login: got %v, want ErrNotFound", err)
	}
}

func TestLoginAlreadyOnline(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "pw")
	s.Login("alice", "pw")
	if _, err := s.Login("alice", "pw"); err != ErrAlreadyLoggedIn {
		t.Fatalf("Login: got %v, want ErrAlreadyLoggedIn", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "pw")
	s.Login("alice", "pw")
	if err := s.Logout("alice"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := s.Logout("alice"); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	profile, _ := s.Find("alice")
	if profile.Online {
		t.Error("Online should be false after logout")
	}
}

func TestApplyResultWinLoss(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "pw")
	s.Register("bob", "pw")

	if err := s.ApplyResult("alice", "bob", "alice"); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}

	alice, _ := s.Find("alice")
	bob, _ := s.Find("bob")
	if alice.Elo <= 1200 {
		t.Errorf("winner elo = %d, want > 1200", alice.Elo)
	}
	if bob.Elo >= 1200 {
		t.Errorf("loser elo = %d, want < 1200", bob.Elo)
	}
	if alice.Wins != 1 || bob.Losses != 1 {
		t.Errorf("wins/losses not updated: alice=%+v bob=%+v", alice, bob)
	}
}

func TestApplyResultDrawAsymmetry(t *testing.T) {
	s := newTestStore(t)
	s.Register("white", "pw")
	s.Register("black", "pw")

	// Manually set the asymmetric ratings from spec §8 scenario 5.
	s.byName["white"].Elo = 1400
	s.byName["black"].Elo = 1200

	if err := s.ApplyResult("white", "black", "DRAW"); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}

	white, _ := s.Find("white")
	black, _ := s.Find("black")
	if white.Elo >= 1400 {
		t.Errorf("white elo after draw = %d, want < 1400 (higher-rated side loses points)", white.Elo)
	}
	if black.Elo <= 1200 {
		t.Errorf("black elo after draw = %d, want > 1200", black.Elo)
	}
	if white.Draws != 1 || black.Draws != 1 {
		t.Error("both sides should have draws incremented")
	}
}

func TestApplyResultAbortIsNoop(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "pw")
	s.Register("bob", "pw")

	if err := s.ApplyResult("alice", "bob", "ABORT"); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	alice, _ := s.Find("alice")
	if alice.Elo != 1200 || alice.Wins != 0 {
		t.Errorf("ABORT should not change ratings or counters, got %+v", alice)
	}
}

func TestEloFloorAtZero(t *testing.T) {
	s := newTestStore(t)
	s.Register("alice", "pw")
	s.Register("bob", "pw")
	s.byName["alice"].Elo = 0
	s.byName["bob"].Elo = 3000

	if err := s.ApplyResult("bob", "alice", "bob"); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	alice, _ := s.Find("alice")
	if alice.Elo < 0 {
		t.Errorf("elo should be floored at 0, got %d", alice.Elo)
	}
}

func TestLoadPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s1 := New(path, 1000, nil)
	s1.Register("alice", "pw")

	s2 := New(path, 1000, nil)
	if err := s2.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	profile, ok := s2.Find("alice")
	if !ok {
		t.Fatal("alice not found after reload")
	}
	if profile.Elo != 1200 {
		t.Errorf("Elo = %d, want 1200", profile.Elo)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	s := New(path, 1000, nil)
	if err := s.Load(); err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
}

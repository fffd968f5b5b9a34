// Package store implements the User Store: persistent accounts with
// credentials, Elo, and win/loss/draw counters (spec §4.2).
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUsernameTaken   = errors.New("username taken")
	ErrNotFound        = errors.New("user not found")
	ErrBadPassword     = errors.New("bad password")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrCapacity        = errors.New("user store at capacity")
)

// User is one account record, per spec §3.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Online       bool   `json:"online"`
	Elo          int    `json:"elo_rating"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	Draws        int    `json:"draws"`
}

// Profile is the read-only snapshot returned by Find.
type Profile struct {
	Username string
	Elo      int
	Wins     int
	Losses   int
	Draws    int
	Online   bool
}

type fileFormat struct {
	Users []User `json:"users"`
}

// Store is the capacity-bounded, file-backed account registry. All
// operations execute under a single exclusive lock, per spec §4.2 ("each
// executed under the store's exclusive lock").
type Store struct {
	mu       sync.Mutex
	byName   map[string]*User
	path     string
	capacity int
	log      *zap.Logger
}

// New constructs an empty Store that persists to path on every mutation.
func New(path string, capacity int, log *zap.Logger) *Store {
	return &Store{
		byName:   make(map[string]*User),
		path:     path,
		capacity: capacity,
		log:      log,
	}
}

// Load populates the store from path, if it exists. A missing file is not
// an error — the store simply starts empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read user store %s: %w", s.path, err)
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("parse user store %s: %w", s.path, err)
	}

	for i := range ff.Users {
		u := ff.Users[i]
		s.byName[u.Username] = &u
	}
	return nil
}

// hashPassword returns the lowercase hex SHA-256 digest of password, per
// spec §3.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a new account with Elo 1200 and zeroed W/L/D.
func (s *Store) Register(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[username]; exists {
		return ErrUsernameTaken
	}
	if len(s.byName) >= s.capacity {
		return ErrCapacity
	}

	s.byName[username] = &User{
		Username:     username,
		PasswordHash: hashPassword(password),
		Elo:          defaultElo,
	}

	return s.flushLocked()
}

// Login verifies credentials and marks the account online.
func (s *Store) Login(username, password string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byName[username]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if u.PasswordHash != hashPassword(password) {
		return Profile{}, ErrBadPassword
	}
	if u.Online {
		return Profile{}, ErrAlreadyLoggedIn
	}

	u.Online = true
	if err := s.flushLocked(); err != nil {
		return Profile{}, err
	}
	return profileOf(u), nil
}

// Logout clears the online flag. Idempotent: calling it on an already
// offline or unknown user is not an error.
func (s *Store) Logout(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byName[username]
	if !ok || !u.Online {
		return nil
	}
	u.Online = false
	return s.flushLocked()
}

// Find returns a read-only snapshot of username, if it exists.
func (s *Store) Find(username string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byName[username]
	if !ok {
		return Profile{}, false
	}
	return profileOf(u), true
}

// ApplyResult adjusts Elo and W/L/D counters for a completed match. winner
// is one of white, black, "DRAW", or "ABORT" (a no-op), per spec §4.2.
func (s *Store) ApplyResult(white, black, winner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if winner == "ABORT" {
		return nil
	}

	whiteUser, ok := s.byName[white]
	if !ok {
		return fmt.Errorf("apply result: %w: %s", ErrNotFound, white)
	}
	blackUser, ok := s.byName[black]
	if !ok {
		return fmt.Errorf("apply result: %w: %s", ErrNotFound, black)
	}

	switch winner {
	case "DRAW":
		delta := drawDelta(whiteUser.Elo, blackUser.Elo)
		whiteUser.Elo = floorElo(whiteUser.Elo + delta)
		blackUser.Elo = floorElo(blackUser.Elo - delta)
		whiteUser.Draws++
		blackUser.Draws++
	case white:
		delta := winnerDelta(whiteUser.Elo, blackUser.Elo)
		whiteUser.Elo = floorElo(whiteUser.Elo + delta)
		blackUser.Elo = floorElo(blackUser.Elo - delta)
		whiteUser.Wins++
		blackUser.Losses++
	case black:
		delta := winnerDelta(blackUser.Elo, whiteUser.Elo)
		blackUser.Elo = floorElo(blackUser.Elo + delta)
		whiteUser.Elo = floorElo(whiteUser.Elo - delta)
		blackUser.Wins++
		whiteUser.Losses++
	default:
		return fmt.Errorf("apply result: unknown winner %q", winner)
	}

	return s.flushLocked()
}

func profileOf(u *User) Profile {
	return Profile{
		Username: u.Username,
		Elo:      u.Elo,
		Wins:     u.Wins,
		Losses:   u.Losses,
		Draws:    u.Draws,
		Online:   u.Online,
	}
}

// flushLocked rewrites the entire store file. Caller must hold s.mu.
func (s *Store) flushLocked() error {
	users := make([]User, 0, len(s.byName))
	for _, u := range s.byName {
		users = append(users, *u)
	}

	data, err := json.MarshalIndent(fileFormat{Users: users}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal user store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		if s.log != nil {
			s.log.Error("user store write failed", zap.String("path", s.path), zap.Error(err))
		}
		return fmt.Errorf("write user store %s: %w", s.path, err)
	}
	return nil
}

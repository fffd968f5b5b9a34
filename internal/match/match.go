// Package match implements the Match Registry: the fixed-capacity table of
// active matches plus the bounded recent-match (rematch) ring (spec §4.4).
package match

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"chessserver/internal/domain"
)

var (
	ErrNoSlot      = errors.New("match registry at capacity")
	ErrNotFound    = errors.New("match not found")
	ErrNotInWindow = errors.New("match not in rematch window")
)

// ColorAssignment selects how white is chosen when a match is created.
type ColorAssignment int

const (
	// Coin flips a coin to decide who plays white.
	Coin ColorAssignment = iota
	// Fixed uses the challenger as white exactly as given (used for rematch,
	// where the former black plays white).
	Fixed
)

// RecentMatch is a finished match still eligible for rematch (spec §3).
type RecentMatch struct {
	MatchID          string
	White            string
	Black            string
	WhiteSession     int
	BlackSession     int
	RematchOfferedBy int // -1 until offered
	Valid            bool
}

// Registry owns both the active Match table and the RecentMatch ring. All
// mutation happens under a single exclusive lock; callers must release it
// before sending anything over the wire (spec §5).
type Registry struct {
	mu sync.Mutex

	active     []*domain.Match // nil entry = free slot
	recent     []RecentMatch
	recentNext int // ring write cursor

	rng randSource
}

type randSource interface {
	Intn(n int) int
}

// New constructs a Registry with the given active-match and recent-match
// capacities.
func New(activeCapacity, recentCapacity int) *Registry {
	return &Registry{
		active: make([]*domain.Match, activeCapacity),
		recent: make([]RecentMatch, 0, recentCapacity),
		rng:    cryptoRandSource{},
	}
}

// cryptoRandSource adapts crypto/rand to the small Intn surface the
// registry needs for the 50/50 color coin flip — no need for a full PRNG
// dependency just for one bit of randomness.
type cryptoRandSource struct{}

func (cryptoRandSource) Intn(n int) int {
	b := make([]byte, 1)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("match: crypto/rand unavailable: %v", err))
	}
	return int(b[0]) % n
}

const matchIDCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newMatchID returns 'M' followed by 8 random uppercase-alphanumeric
// characters, per spec §3.
func newMatchID() string {
	buf := make([]byte, 9)
	buf[0] = 'M'
	random := make([]byte, 8)
	if _, err := rand.Read(random); err != nil {
		panic(fmt.Sprintf("match: crypto/rand unavailable: %v", err))
	}
	for i, b := range random {
		buf[1+i] = matchIDCharset[int(b)%len(matchIDCharset)]
	}
	return string(buf)
}

// Create allocates a match slot for challengerSession/opponentSession,
// assigning colors per colorAssignment. When colorAssignment is Fixed,
// challenger plays white and opponent plays black exactly as given.
func (r *Registry) Create(challenger, opponent string, challengerSession, opponentSession int, colorAssignment ColorAssignment) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, m := range r.active {
		if m == nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrNoSlot
	}

	white, black := challenger, opponent
	whiteSession, blackSession := challengerSession, opponentSession
	if colorAssignment == Coin && r.rng.Intn(2) == 1 {
		white, black = opponent, challenger
		whiteSession, blackSession = opponentSession, challengerSession
	}

	m := domain.NewMatch(newMatchID(), white, black, whiteSession, blackSession)
	r.active[idx] = m
	return m, nil
}

// FindByID scans the active table for matchID.
func (r *Registry) FindByID(matchID string) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, _, err := r.findLocked(matchID)
	return m, err
}

// WithMatch runs fn under the registry lock with the match looked up by
// matchID, matching spec §4.4/§5 ("moves mutate matches under the
// registry's single exclusive lock"). fn must not send over the wire.
func (r *Registry) WithMatch(matchID string, fn func(*domain.Match) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, _, err := r.findLocked(matchID)
	if err != nil {
		return err
	}
	return fn(m)
}

func (r *Registry) findLocked(matchID string) (*domain.Match, int, error) {
	for i, m := range r.active {
		if m != nil && m.MatchID == matchID {
			return m, i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// Deactivate flips the match inactive and records a RecentMatch snapshot,
// freeing the active slot.
func (r *Registry) Deactivate(matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, idx, err := r.findLocked(matchID)
	if err != nil {
		return err
	}
	m.Active = false
	r.active[idx] = nil

	r.pushRecentLocked(RecentMatch{
		MatchID:          m.MatchID,
		White:            m.White,
		Black:            m.Black,
		WhiteSession:     m.WhiteSession,
		BlackSession:     m.BlackSession,
		RematchOfferedBy: -1,
		Valid:            true,
	})
	return nil
}

func (r *Registry) pushRecentLocked(entry RecentMatch) {
	if len(r.recent) < cap(r.recent) {
		r.recent = append(r.recent, entry)
		return
	}
	r.recent[r.recentNext] = entry
	r.recentNext = (r.recentNext + 1) % cap(r.recent)
}

// RecentFind scans the recent-match ring for matchID.
func (r *Registry) RecentFind(matchID string) (*RecentMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.recentFindLocked(matchID)
	if err != nil {
		return nil, err
	}
	cp := r.recent[idx]
	return &cp, nil
}

func (r *Registry) recentFindLocked(matchID string) (int, error) {
	for i, rm := range r.recent {
		if rm.Valid && rm.MatchID == matchID {
			return i, nil
		}
	}
	return -1, ErrNotFound
}

// OfferRematch marks rematch_offered_by on matchID's RecentMatch entry.
func (r *Registry) OfferRematch(matchID string, offeredBySession int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.recentFindLocked(matchID)
	if err != nil {
		return err
	}
	r.recent[idx].RematchOfferedBy = offeredBySession
	return nil
}

// InvalidateRecent marks matchID's RecentMatch entry no longer eligible for
// rematch (after accept or decline).
func (r *Registry) InvalidateRecent(matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, err := r.recentFindLocked(matchID)
	if err != nil {
		return err
	}
	r.recent[idx].Valid = false
	return nil
}

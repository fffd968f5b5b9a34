// Package recorder implements the per-match event recorder: a bounded
// in-memory move log per active match, finalized to a history file at game
// end (spec §3 ActiveRecording, §4.6 step 4).
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	ErrCapacity = errors.New("recorder at capacity")
	ErrNotFound = errors.New("no active recording for match")
)

// activeRecording is one in-progress match's move log.
type activeRecording struct {
	matchID   string
	moves     []string
	startTime time.Time
}

// Result is the finalized record written to disk, per spec §4.6 step 4.
type Result struct {
	MatchID    string    `json:"matchId"`
	White      string    `json:"white"`
	Black      string    `json:"black"`
	Winner     string    `json:"winner"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
	EndTime    time.Time `json:"endTime"`
	MoveCount  int       `json:"moveCount"`
	Moves      []string  `json:"moves"`
	FinalBoard string    `json:"finalBoard"`
}

// Recorder owns every ActiveRecording, guarded by its own lock — always
// acquired last, independent of the user/session/match locks (spec §5).
type Recorder struct {
	mu       sync.Mutex
	active   map[string]*activeRecording
	capacity int
	dataDir  string
}

// New constructs a Recorder that writes finished match files under
// dataDir/matches/.
func New(dataDir string, capacity int) *Recorder {
	return &Recorder{
		active:   make(map[string]*activeRecording),
		capacity: capacity,
		dataDir:  dataDir,
	}
}

// Start begins recording matchID. Called by internal/app right after the
// Match Registry creates a match.
func (r *Recorder) Start(matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.active) >= r.capacity {
		return ErrCapacity
	}
	r.active[matchID] = &activeRecording{matchID: matchID, startTime: timeNow()}
	return nil
}

// RecordMove appends an uppercase 4-character move token, e.g. "E2E4".
func (r *Recorder) RecordMove(matchID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.active[matchID]
	if !ok {
		return ErrNotFound
	}
	rec.moves = append(rec.moves, token)
	return nil
}

// Finalize writes matches/<match_id>.json and removes matchID from the
// active set.
func (r *Recorder) Finalize(matchID, white, black, winner, reason, finalBoard string) (Result, error) {
	r.mu.Lock()
	rec, ok := r.active[matchID]
	if !ok {
		r.mu.Unlock()
		return Result{}, ErrNotFound
	}
	delete(r.active, matchID)
	moves := append([]string(nil), rec.moves...)
	startTime := rec.startTime
	r.mu.Unlock()

	result := Result{
		MatchID:    matchID,
		White:      white,
		Black:      black,
		Winner:     winner,
		Reason:     reason,
		Timestamp:  startTime,
		EndTime:    timeNow(),
		MoveCount:  len(moves),
		Moves:      moves,
		FinalBoard: finalBoard,
	}

	if err := r.writeFile(result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// Discard drops matchID's in-progress recording without writing a file.
func (r *Recorder) Discard(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, matchID)
}

func (r *Recorder) matchesDir() string {
	return filepath.Join(r.dataDir, "matches")
}

func (r *Recorder) writeFile(result Result) error {
	dir := r.matchesDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create matches dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal match result %s: %w", result.MatchID, err)
	}

	path := filepath.Join(dir, result.MatchID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write match result %s: %w", path, err)
	}
	return nil
}

// Load reads one finished match file back, for GET_MATCH_REPLAY.
func (r *Recorder) Load(matchID string) (Result, error) {
	path := filepath.Join(r.matchesDir(), matchID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read match result %s: %w", path, err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("parse match result %s: %w", path, err)
	}
	return result, nil
}

// ListByUsername scans the matches directory for every file whose white or
// black field matches username, for GET_MATCH_HISTORY.
func (r *Recorder) ListByUsername(username string) ([]Result, error) {
	dir := r.matchesDir()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read matches dir %s: %w", dir, err)
	}

	var results []Result
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var result Result
		if err := json.Unmarshal(data, &result); err != nil {
			continue
		}
		if result.White == username || result.Black == username {
			results = append(results, result)
		}
	}
	return results, nil
}

// timeNow is a seam so tests can control timestamps.
var timeNow = time.Now

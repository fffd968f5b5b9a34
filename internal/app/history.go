package app

import (
	"errors"
	"fmt"
	"os"

	"chessserver/internal/recorder"
	"chessserver/internal/wire"
)

type matchSummary struct {
	MatchID   string `json:"matchId"`
	White     string `json:"white"`
	Black     string `json:"black"`
	Winner    string `json:"winner"`
	Reason    string `json:"reason"`
	MoveCount int    `json:"moveCount"`
}

type matchHistoryPayload struct {
	Matches []matchSummary `json:"matches"`
}

// GetMatchHistory implements spec §4.6 GET_MATCH_HISTORY: scans the
// match-history directory for every file whose white or black matches the
// requested (or, if omitted, the caller's own) username.
func (s *Service) GetMatchHistory(callerSlot int, callerUsername, target string) ([]Event, error) {
	if target == "" {
		target = callerUsername
	}

	results, err := s.Rec.ListByUsername(target)
	if err != nil {
		return nil, fmt.Errorf("get match history: %w", err)
	}

	summaries := make([]matchSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, matchSummary{
			MatchID:   r.MatchID,
			White:     r.White,
			Black:     r.Black,
			Winner:    r.Winner,
			Reason:    r.Reason,
			MoveCount: r.MoveCount,
		})
	}

	return []Event{{Action: wire.OutMatchHistory, Payload: matchHistoryPayload{Matches: summaries}, Recipients: []int{callerSlot}}}, nil
}

type matchReplayPayload struct {
	Data recorder.Result `json:"data"`
}

// GetMatchReplay implements spec §4.6 GET_MATCH_REPLAY: loads and returns
// a finished match's file verbatim.
func (s *Service) GetMatchReplay(callerSlot int, matchID string) ([]Event, error) {
	result, err := s.Rec.Load(matchID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("get match replay: %w", err)
	}
	return []Event{{Action: wire.OutMatchReplay, Payload: matchReplayPayload{Data: result}, Recipients: []int{callerSlot}}}, nil
}

// Package app wires the chess rules engine and the four registries into
// the use-cases the router dispatches wire actions to (spec §4.6). A
// Service method performs no network I/O and sends nothing itself (file
// I/O happens only inside the store and recorder it calls) — it mutates
// registry state under their own locks and returns the Events the caller
// must send once every lock it held has been released (spec §5).
package app

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"chessserver/internal/domain"
	"chessserver/internal/match"
	"chessserver/internal/matchmaking"
	"chessserver/internal/recorder"
	"chessserver/internal/session"
	"chessserver/internal/store"
	"chessserver/internal/wire"
)

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrUserNotFound       = errors.New("user not found")
	ErrOpponentOffline    = errors.New("opponent offline")
	ErrOpponentBusy       = errors.New("opponent busy")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNotInMatch         = errors.New("not a participant in this match")
	ErrRematchUnavailable = errors.New("rematch not available")
	ErrNotYourPiece       = errors.New("square does not hold your piece")
	ErrInvalidNotation    = errors.New("invalid square notation")
)

// Service holds every registry the router dispatches into.
type Service struct {
	Users    *store.Store
	Sessions *session.Registry
	Matches  *match.Registry
	Queue    *matchmaking.Queue
	Rec      *recorder.Recorder
	Log      *zap.Logger
}

// New constructs a Service over the given registries.
func New(users *store.Store, sessions *session.Registry, matches *match.Registry, queue *matchmaking.Queue, rec *recorder.Recorder, log *zap.Logger) *Service {
	return &Service{Users: users, Sessions: sessions, Matches: matches, Queue: queue, Rec: rec, Log: log}
}

// --- Registration / login -------------------------------------------------

type registerFailPayload struct {
	Reason string `json:"reason"`
}

// Register implements spec §4.2 register.
func (s *Service) Register(callerSlot int, username, password string) ([]Event, error) {
	if err := s.Users.Register(username, password); err != nil {
		reason := "Registration failed"
		if errors.Is(err, store.ErrUsernameTaken) {
			reason = "Username already taken"
		}
		return []Event{{Action: wire.OutRegisterFail, Payload: registerFailPayload{Reason: reason}, Recipients: []int{callerSlot}}}, nil
	}
	return []Event{{Action: wire.OutRegisterSuccess, Payload: struct{}{}, Recipients: []int{callerSlot}}}, nil
}

type loginSuccessPayload struct {
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

type loginFailPayload struct {
	Reason string `json:"reason"`
}

// Login implements spec §4.2 login + §4.3 bindLogin.
func (s *Service) Login(callerSlot int, username, password string) ([]Event, error) {
	profile, err := s.Users.Login(username, password)
	if err != nil {
		reason := "Login failed"
		switch {
		case errors.Is(err, store.ErrNotFound):
			reason = "User not found"
		case errors.Is(err, store.ErrBadPassword):
			reason = "Incorrect password"
		case errors.Is(err, store.ErrAlreadyLoggedIn):
			reason = "Already logged in"
		}
		return []Event{{Action: wire.OutLoginFail, Payload: loginFailPayload{Reason: reason}, Recipients: []int{callerSlot}}}, nil
	}

	if _, err := s.Sessions.BindLogin(callerSlot, username); err != nil {
		return nil, fmt.Errorf("bind login: %w", err)
	}

	return []Event{{
		Action: wire.OutLoginSuccess,
		Payload: loginSuccessPayload{
			Username: profile.Username,
			Elo:      profile.Elo,
			Wins:     profile.Wins,
			Losses:   profile.Losses,
			Draws:    profile.Draws,
		},
		Recipients: []int{callerSlot},
	}}, nil
}

// --- Player list / profile -------------------------------------------------

type playerListEntry struct {
	Username string `json:"username"`
	Status   string `json:"status"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

type playerListPayload struct {
	Players []playerListEntry `json:"players"`
}

// RequestPlayerList implements spec §4.6 REQUEST_PLAYER_LIST.
func (s *Service) RequestPlayerList(callerSlot int) ([]Event, error) {
	caller, err := s.Sessions.Get(callerSlot)
	if err != nil {
		return nil, fmt.Errorf("request player list: %w", err)
	}

	var entries []playerListEntry
	for _, snap := range s.Sessions.Snapshot() {
		if snap.Slot == callerSlot || snap.Username == caller.Username {
			continue
		}
		profile, ok := s.Users.Find(snap.Username)
		if !ok {
			continue
		}
		entries = append(entries, playerListEntry{
			Username: snap.Username,
			Status:   stateName(snap.State),
			Wins:     profile.Wins,
			Losses:   profile.Losses,
		})
	}

	return []Event{{Action: wire.OutPlayerList, Payload: playerListPayload{Players: entries}, Recipients: []int{callerSlot}}}, nil
}

func stateName(state session.State) string {
	switch state {
	case session.Online:
		return "ONLINE"
	case session.InMatch:
		return "IN_MATCH"
	default:
		return "OFFLINE"
	}
}

type profileInfoPayload struct {
	Username string `json:"username"`
	Elo      int    `json:"elo"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
	Online   bool   `json:"online"`
}

type profileErrorPayload struct {
	Reason string `json:"reason"`
}

// GetProfile implements spec §4.6 GET_PROFILE. An empty target username
// defaults to the caller's own profile (SPEC_FULL.md supplemented feature).
func (s *Service) GetProfile(callerSlot int, callerUsername, target string) ([]Event, error) {
	if target == "" {
		target = callerUsername
	}
	profile, ok := s.Users.Find(target)
	if !ok {
		return []Event{{Action: wire.OutProfileError, Payload: profileErrorPayload{Reason: "User not found"}, Recipients: []int{callerSlot}}}, nil
	}
	return []Event{{
		Action: wire.OutProfileInfo,
		Payload: profileInfoPayload{
			Username: profile.Username,
			Elo:      profile.Elo,
			Wins:     profile.Wins,
			Losses:   profile.Losses,
			Draws:    profile.Draws,
			Online:   profile.Online,
		},
		Recipients: []int{callerSlot},
	}}, nil
}

// --- Ping --------------------------------------------------------------

// Ping implements spec §4.6 PING.
func (s *Service) Ping(callerSlot int) ([]Event, error) {
	return []Event{{Action: wire.OutPong, Payload: struct{}{}, Recipients: []int{callerSlot}}}, nil
}

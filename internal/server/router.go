package server

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"chessserver/internal/app"
	"chessserver/internal/wire"
)

// Router decodes inbound envelopes and dispatches them to the Service, one
// handler function per action, mirroring the teacher's nakama RPC adapter
// (one small decode-then-call function per remote procedure) generalized to
// a raw socket instead of a nakama runtime.
type Router struct {
	Svc *app.Service
	Log *zap.Logger
}

// NewRouter constructs a Router over svc.
func NewRouter(svc *app.Service, log *zap.Logger) *Router {
	return &Router{Svc: svc, Log: log}
}

// Dispatch decodes env.Data for env.Action and calls the matching Service
// method, returning the Events to send. It performs no sends itself — the
// caller (Server.handleConn's per-connection loop) sends every event after Dispatch
// returns, so no registry lock is ever held across a write (spec §5).
func (rt *Router) Dispatch(slot int, env wire.Envelope) []app.Event {
	handler, ok := handlers[env.Action]
	if !ok {
		return []app.Event{errorEvent(slot, wire.ErrUnknownAction, "Unknown action")}
	}

	events, err := handler(rt, slot, env.Data)
	if err != nil {
		kind, reason := classify(err)
		if kind == wire.ErrIOError && rt.Log != nil {
			rt.Log.Error("handler failed", zap.String("action", env.Action), zap.Error(err))
		}
		return []app.Event{errorEvent(slot, kind, reason)}
	}
	return events
}

type handlerFunc func(rt *Router, slot int, data json.RawMessage) ([]app.Event, error)

var handlers = map[string]handlerFunc{
	wire.ActionRegister:          handleRegister,
	wire.ActionLogin:             handleLogin,
	wire.ActionRequestPlayerList: handleRequestPlayerList,
	wire.ActionGetProfile:        handleGetProfile,
	wire.ActionChallenge:         handleChallenge,
	wire.ActionAccept:            handleAccept,
	wire.ActionDecline:           handleDecline,
	wire.ActionMove:              handleMove,
	wire.ActionGetValidMoves:     handleGetValidMoves,
	wire.ActionFindMatch:         handleFindMatch,
	wire.ActionCancelFindMatch:   handleCancelFindMatch,
	wire.ActionOfferAbort:        handleOfferAbort,
	wire.ActionAcceptAbort:       handleAcceptAbort,
	wire.ActionDeclineAbort:      handleDeclineAbort,
	wire.ActionOfferDraw:         handleOfferDraw,
	wire.ActionAcceptDraw:        handleAcceptDraw,
	wire.ActionDeclineDraw:       handleDeclineDraw,
	wire.ActionOfferRematch:      handleOfferRematch,
	wire.ActionAcceptRematch:     handleAcceptRematch,
	wire.ActionDeclineRematch:    handleDeclineRematch,
	wire.ActionGetMatchHistory:   handleGetMatchHistory,
	wire.ActionGetMatchReplay:    handleGetMatchReplay,
	wire.ActionPing:              handlePing,
}

// requireLogin resolves slot's bound username, translating a not-yet-
// logged-in slot into app.ErrNotLoggedIn (spec §7).
func requireLogin(rt *Router, slot int) (string, error) {
	entry, err := rt.Svc.Sessions.Get(slot)
	if err != nil || entry.Username == "" {
		return "", app.ErrNotLoggedIn
	}
	return entry.Username, nil
}

var (
	errMissingData = fmt.Errorf("missing data field")
	errInvalidJSON = fmt.Errorf("invalid json payload")
)

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errMissingData
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleRegister(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	var req registerReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Register(slot, req.Username, req.Password)
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleLogin(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	var req loginReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Login(slot, req.Username, req.Password)
}

func handleRequestPlayerList(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	return rt.Svc.RequestPlayerList(slot)
}

type getProfileReq struct {
	Username string `json:"username"`
}

func handleGetProfile(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	username, err := requireLogin(rt, slot)
	if err != nil {
		return nil, err
	}
	var req getProfileReq
	if len(data) > 0 {
		if err := decode(data, &req); err != nil {
			return nil, err
		}
	}
	return rt.Svc.GetProfile(slot, username, req.Username)
}

type challengeReq struct {
	Opponent string `json:"opponent"`
}

func handleChallenge(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	from, err := requireLogin(rt, slot)
	if err != nil {
		return nil, err
	}
	var req challengeReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Challenge(from, req.Opponent)
}

func handleAccept(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	from, err := requireLogin(rt, slot)
	if err != nil {
		return nil, err
	}
	var req challengeReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Accept(from, req.Opponent)
}

func handleDecline(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	from, err := requireLogin(rt, slot)
	if err != nil {
		return nil, err
	}
	var req challengeReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Decline(from, req.Opponent)
}

type moveReq struct {
	MatchID   string `json:"matchId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
}

func handleMove(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req moveReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.Move(slot, req.MatchID, req.From, req.To, req.Promotion)
}

type positionReq struct {
	MatchID  string `json:"matchId"`
	Position string `json:"position"`
}

func handleGetValidMoves(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req positionReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.GetValidMoves(slot, req.MatchID, req.Position)
}

func handleFindMatch(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	return rt.Svc.FindMatch(slot)
}

func handleCancelFindMatch(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	return rt.Svc.CancelFindMatch(slot)
}

type matchIDReq struct {
	MatchID string `json:"matchId"`
}

func handleOfferAbort(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.OfferAbort(slot, req.MatchID)
}

func handleAcceptAbort(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.AcceptAbort(slot, req.MatchID)
}

func handleDeclineAbort(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.DeclineAbort(slot, req.MatchID)
}

func handleOfferDraw(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.OfferDraw(slot, req.MatchID)
}

func handleAcceptDraw(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.AcceptDraw(slot, req.MatchID)
}

func handleDeclineDraw(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.DeclineDraw(slot, req.MatchID)
}

func handleOfferRematch(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.OfferRematch(slot, req.MatchID)
}

func handleAcceptRematch(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.AcceptRematch(slot, req.MatchID)
}

func handleDeclineRematch(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.DeclineRematch(slot, req.MatchID)
}

type matchHistoryReq struct {
	Username string `json:"username"`
}

func handleGetMatchHistory(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	caller, err := requireLogin(rt, slot)
	if err != nil {
		return nil, err
	}
	var req matchHistoryReq
	if len(data) > 0 {
		if err := decode(data, &req); err != nil {
			return nil, err
		}
	}
	return rt.Svc.GetMatchHistory(slot, caller, req.Username)
}

func handleGetMatchReplay(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	if _, err := requireLogin(rt, slot); err != nil {
		return nil, err
	}
	var req matchIDReq
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return rt.Svc.GetMatchReplay(slot, req.MatchID)
}

func handlePing(rt *Router, slot int, data json.RawMessage) ([]app.Event, error) {
	return rt.Svc.Ping(slot)
}

package app

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"chessserver/internal/match"
	"chessserver/internal/matchmaking"
	"chessserver/internal/recorder"
	"chessserver/internal/session"
	"chessserver/internal/store"
)

func newTestService(t *testing.T) (*Service, *session.Registry) {
	t.Helper()
	dir := t.TempDir()

	users := store.New(filepath.Join(dir, "users.json"), 100, zap.NewNop())
	sessions := session.New(16, nil)
	matches := match.New(16, 16)
	queue := matchmaking.New(16, 100)
	rec := recorder.New(dir, 16)

	svc := New(users, sessions, matches, queue, rec, zap.NewNop())
	return svc, sessions
}

// connectAndLogin registers and logs username in on a fresh session slot,
// returning the slot index.
func connectAndLogin(t *testing.T, svc *Service, sessions *session.Registry, username, password string) int {
	t.Helper()
	slot, err := sessions.Accept(&fakeConn{})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.Register(slot, username, password); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(slot, username, password); err != nil {
		t.Fatalf("login: %v", err)
	}
	return slot
}

type fakeConn struct{}

func (fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (fakeConn) Close() error                { return nil }

func TestRegisterAndLoginFlow(t *testing.T) {
	svc, sessions := newTestService(t)
	slot, err := sessions.Accept(&fakeConn{})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}

	events, err := svc.Register(slot, "alice", "hunter2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(events) != 1 || events[0].Action != "REGISTER_SUCCESS" {
		t.Fatalf("unexpected register events: %+v", events)
	}

	events, err = svc.Login(slot, "alice", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(events) != 1 || events[0].Action != "LOGIN_SUCCESS" {
		t.Fatalf("unexpected login events: %+v", events)
	}
	payload, ok := events[0].Payload.(loginSuccessPayload)
	if !ok || payload.Elo != 1200 {
		t.Fatalf("unexpected login payload: %+v", events[0].Payload)
	}
}

func TestRegisterDuplicateUsernameFails(t *testing.T) {
	svc, sessions := newTestService(t)
	connectAndLogin(t, svc, sessions, "alice", "pw1")

	slot2, _ := sessions.Accept(&fakeConn{})
	events, err := svc.Register(slot2, "alice", "pw2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(events) != 1 || events[0].Action != "REGISTER_FAIL" {
		t.Fatalf("expected REGISTER_FAIL, got %+v", events)
	}
}

func TestLoginWrongPasswordFails(t *testing.T) {
	svc, sessions := newTestService(t)
	connectAndLogin(t, svc, sessions, "alice", "correct")

	slot2, _ := sessions.Accept(&fakeConn{})
	events, err := svc.Login(slot2, "alice", "wrong")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(events) != 1 || events[0].Action != "LOGIN_FAIL" {
		t.Fatalf("expected LOGIN_FAIL, got %+v", events)
	}
}

func TestRequestPlayerListExcludesSelf(t *testing.T) {
	svc, sessions := newTestService(t)
	aliceSlot := connectAndLogin(t, svc, sessions, "alice", "pw")
	connectAndLogin(t, svc, sessions, "bob", "pw")

	events, err := svc.RequestPlayerList(aliceSlot)
	if err != nil {
		t.Fatalf("request player list: %v", err)
	}
	payload := events[0].Payload.(playerListPayload)
	if len(payload.Players) != 1 || payload.Players[0].Username != "bob" {
		t.Fatalf("unexpected player list: %+v", payload)
	}
}

func TestGetProfileDefaultsToSelf(t *testing.T) {
	svc, sessions := newTestService(t)
	aliceSlot := connectAndLogin(t, svc, sessions, "alice", "pw")

	events, err := svc.GetProfile(aliceSlot, "alice", "")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if events[0].Action != "PROFILE_INFO" {
		t.Fatalf("expected PROFILE_INFO, got %+v", events[0])
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc, sessions := newTestService(t)
	aliceSlot := connectAndLogin(t, svc, sessions, "alice", "pw")

	events, err := svc.GetProfile(aliceSlot, "alice", "ghost")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if events[0].Action != "PROFILE_ERROR" {
		t.Fatalf("expected PROFILE_ERROR, got %+v", events[0])
	}
}

func TestPing(t *testing.T) {
	svc, sessions := newTestService(t)
	slot := connectAndLogin(t, svc, sessions, "alice", "pw")

	events, err := svc.Ping(slot)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if len(events) != 1 || events[0].Action != "PONG" {
		t.Fatalf("unexpected ping events: %+v", events)
	}
}

// Package server implements the TCP transport and request router of spec
// §6: an accept loop handing each connection to the Session Registry, a
// newline-framed read loop per connection, and a Router dispatching each
// decoded envelope into internal/app and sending back whatever Events come
// out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"go.uber.org/zap"

	"chessserver/internal/app"
	"chessserver/internal/session"
	"chessserver/internal/wire"
)

// Server owns the listener and wires accepted connections to the Router.
type Server struct {
	Router   *Router
	Sessions *session.Registry
	Log      *zap.Logger

	listener net.Listener
}

// NewServer constructs a Server over an already-built Router and Session
// Registry.
func NewServer(router *Router, sessions *session.Registry, log *zap.Logger) *Server {
	return &Server{Router: router, Sessions: sessions, Log: log}
}

// ListenAndServe binds addr and accepts connections until ctx is canceled.
// The backlog (spec §6: 10) is left to the platform default via net.Listen,
// as Go's net package does not expose the raw listen() backlog argument the
// original C server tunes directly.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	if s.Log != nil {
		s.Log.Info("listening", zap.String("addr", addr))
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if s.Log != nil {
				s.Log.Warn("accept failed", zap.Error(err))
			}
			continue
		}
		go s.handleConn(conn)
	}
}

// handleConn is the per-connection worker: one goroutine per client,
// mirroring the original server's one-thread-per-client model. It occupies
// a session slot, reads newline-framed envelopes until EOF or a fatal
// error, dispatches each through the Router, and sends the resulting
// events, then frees the slot on disconnect.
func (s *Server) handleConn(conn net.Conn) {
	slot, err := s.Sessions.Accept(conn)
	if err != nil {
		if s.Log != nil {
			s.Log.Warn("connection rejected: registry at capacity", zap.Error(err))
		}
		_ = conn.Close()
		return
	}
	defer s.Sessions.Close(slot)

	reader := session.NewLineReader(conn)
	for {
		line, truncated, err := session.ReadFramedLine(reader)
		switch {
		case truncated:
			s.send(app.Event{
				Action:     wire.OutError,
				Payload:    wire.ErrorPayload{Reason: "Invalid JSON payload"},
				Recipients: []int{slot},
			})
		case len(line) > 0:
			s.dispatchLine(slot, line)
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) dispatchLine(slot int, line []byte) {
	var env wire.Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		s.send(app.Event{
			Action:     wire.OutError,
			Payload:    wire.ErrorPayload{Reason: "Invalid JSON payload"},
			Recipients: []int{slot},
		})
		return
	}

	for _, ev := range s.Router.Dispatch(slot, env) {
		s.send(ev)
	}
}

// send delivers one Event to every recipient slot, logging (never
// panicking on) a closed or vanished recipient — a disconnect racing a
// send is expected, not exceptional.
func (s *Server) send(ev app.Event) {
	payload, err := wire.Message(ev.Action, ev.Payload)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("encode event failed", zap.String("action", ev.Action), zap.Error(err))
		}
		return
	}
	for _, recipient := range ev.Recipients {
		if err := s.Sessions.Send(recipient, payload); err != nil && s.Log != nil && !errors.Is(err, session.ErrSlotClosed) {
			s.Log.Warn("send failed", zap.Int("slot", recipient), zap.Error(err))
		}
	}
}

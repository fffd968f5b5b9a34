// Command chessserver runs the chess TCP server: it loads configuration,
// builds every registry, and serves connections until SIGINT/SIGTERM,
// mirroring the original C server's main() (module init, then listen,
// then accept loop until a signal closes the listener).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"chessserver/internal/app"
	"chessserver/internal/config"
	"chessserver/internal/match"
	"chessserver/internal/matchmaking"
	"chessserver/internal/recorder"
	"chessserver/internal/server"
	"chessserver/internal/session"
	"chessserver/internal/store"
	"chessserver/internal/wire"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "chessserver: load config:", err)
		os.Exit(1)
	}

	log := buildLogger(cfg)
	defer log.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("create data dir", zap.Error(err))
	}

	users := store.New(filepath.Join(cfg.DataDir, "users.json"), cfg.UserCapacity, log)
	if err := users.Load(); err != nil {
		log.Fatal("load user store", zap.Error(err))
	}

	matches := match.New(cfg.MatchCapacity, cfg.RecentMatchCapacity)
	queue := matchmaking.New(cfg.QueueCapacity, cfg.EloThreshold)
	rec := recorder.New(cfg.DataDir, cfg.MatchCapacity)

	sessions := session.New(cfg.SessionCapacity, func(username string, slotIdx int) {
		if username != "" {
			if err := users.Logout(username); err != nil {
				log.Warn("logout on disconnect failed", zap.String("user", username), zap.Error(err))
			}
		}
		queue.Dequeue(slotIdx)
	})

	svc := app.New(users, sessions, matches, queue, rec, log)
	router := server.NewRouter(svc, log)
	srv := server.NewServer(router, sessions, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go runMatchmakingLoop(ctx, svc, sessions, cfg.MatchmakingIntervalSeconds, log)

	log.Info("chess server starting", zap.String("listen_addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("chess server shut down")
}

// runMatchmakingLoop drives the matchmaking tick on a fixed interval,
// translating spec §4.5's background matchmaking thread into a ticker
// goroutine, and sends whatever Events each tick produces.
func runMatchmakingLoop(ctx context.Context, svc *app.Service, sessions *session.Registry, intervalSeconds int, log *zap.Logger) {
	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ev := range svc.Tick() {
				payload, _ := wire.Message(ev.Action, ev.Payload)
				for _, slot := range ev.Recipients {
					if err := sessions.Send(slot, payload); err != nil {
						log.Warn("matchmaking send failed", zap.Int("slot", slot), zap.Error(err))
					}
				}
			}
		}
	}
}

// buildLogger constructs a zap logger writing JSON lines to stderr and,
// when cfg.LogPath is set, to a lumberjack-rotated file — the same
// zap+lumberjack pairing the nakama host process this server's teacher
// plugs into already depends on.
func buildLogger(cfg config.ServerConfig) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zapcore.InfoLevel),
	}

	if cfg.LogPath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), zapcore.InfoLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}

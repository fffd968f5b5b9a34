// Package config loads the server's JSON configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerConfig holds every tunable the server reads at startup. Fields left
// zero in the JSON file fall back to the defaults in Default().
type ServerConfig struct {
	// ListenAddr is the TCP address to accept connections on, e.g. ":8888".
	ListenAddr string `json:"listen_addr"`

	// DataDir holds users.json and the matches/ history directory.
	DataDir string `json:"data_dir"`

	// LogPath is the rotating log file path. Empty disables file logging
	// (stderr only).
	LogPath string `json:"log_path"`

	// SessionCapacity bounds the number of simultaneously connected clients.
	SessionCapacity int `json:"session_capacity"`
	// UserCapacity bounds the number of registered accounts.
	UserCapacity int `json:"user_capacity"`
	// MatchCapacity bounds simultaneously active matches.
	MatchCapacity int `json:"match_capacity"`
	// RecentMatchCapacity bounds the rematch window ring.
	RecentMatchCapacity int `json:"recent_match_capacity"`
	// QueueCapacity bounds the matchmaking waiting pool.
	QueueCapacity int `json:"queue_capacity"`

	// MatchmakingIntervalSeconds is how often the matchmaking tick runs.
	MatchmakingIntervalSeconds int `json:"matchmaking_interval_seconds"`
	// EloThreshold is the strict pairing distance (spec: < 100).
	EloThreshold int `json:"elo_threshold"`
}

// Default returns the configuration used when no file is supplied and the
// fallback values for any zero field left by a partially-filled file.
func Default() ServerConfig {
	return ServerConfig{
		ListenAddr:                 ":8888",
		DataDir:                    "./data",
		LogPath:                    "",
		SessionCapacity:            100,
		UserCapacity:               1000,
		MatchCapacity:              50,
		RecentMatchCapacity:        50,
		QueueCapacity:              100,
		MatchmakingIntervalSeconds: 2,
		EloThreshold:               100,
	}
}

// Load reads a JSON configuration file at path and overlays it onto
// Default(), so a config file only needs to list the fields it overrides.
func Load(path string) (ServerConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *ServerConfig) {
	def := Default()
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.SessionCapacity == 0 {
		cfg.SessionCapacity = def.SessionCapacity
	}
	if cfg.UserCapacity == 0 {
		cfg.UserCapacity = def.UserCapacity
	}
	if cfg.MatchCapacity == 0 {
		cfg.MatchCapacity = def.MatchCapacity
	}
	if cfg.RecentMatchCapacity == 0 {
		cfg.RecentMatchCapacity = def.RecentMatchCapacity
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.MatchmakingIntervalSeconds == 0 {
		cfg.MatchmakingIntervalSeconds = def.MatchmakingIntervalSeconds
	}
	if cfg.EloThreshold == 0 {
		cfg.EloThreshold = def.EloThreshold
	}
}

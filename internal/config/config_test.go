package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/callmenick/sun-venus-earth/internal/scene"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.Mode != scene.Animated {
		t.Errorf("Mode = %v, want animated", cfg.Mode)
	}
	if cfg.FrameInterval != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 16ms", cfg.FrameInterval)
	}
	if cfg.StreamMax != 10 || cfg.StreamMaxTotal != 1000 {
		t.Errorf("stream limits = %d/%d, want 10/1000", cfg.StreamMax, cfg.StreamMaxTotal)
	}
	if cfg.KeepaliveInterval != 30*time.Second {
		t.Errorf("KeepaliveInterval = %v, want 30s", cfg.KeepaliveInterval)
	}
	if cfg.AuthEnabled || cfg.TrustProxy {
		t.Error("auth and proxy trust should default to off")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORRERY_HTTP_ADDR", ":9090")
	t.Setenv("ORRERY_MODE", "static")
	t.Setenv("ORRERY_FRAME_INTERVAL", "50ms")
	t.Setenv("ORRERY_STREAM_MAX_CONCURRENT", "3")
	t.Setenv("ORRERY_HTTP_TRUST_PROXY", "true")
	t.Setenv("ORRERY_AUTH_ENABLED", "1")
	t.Setenv("ORRERY_AUTH_TOKEN", "secret")
	t.Setenv("ORRERY_LOG_LEVEL", "debug")

	cfg, err := Load(New())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Mode != scene.Static {
		t.Errorf("Mode = %v, want static", cfg.Mode)
	}
	if cfg.FrameInterval != 50*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 50ms", cfg.FrameInterval)
	}
	if cfg.StreamMax != 3 {
		t.Errorf("StreamMax = %d, want 3", cfg.StreamMax)
	}
	if !cfg.TrustProxy {
		t.Error("TrustProxy should be true")
	}
	if !cfg.AuthEnabled || cfg.AuthToken != "secret" {
		t.Errorf("auth = %v/%q", cfg.AuthEnabled, cfg.AuthToken)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{"unknown mode", map[string]string{"ORRERY_MODE": "spinning"}, nil},
		{"zero frame interval", map[string]string{"ORRERY_FRAME_INTERVAL": "0s"}, ErrFrameInterval},
		{"zero keepalive", map[string]string{"ORRERY_STREAM_KEEPALIVE_INTERVAL": "0s"}, ErrKeepaliveInterval},
		{"negative keepalive", map[string]string{"ORRERY_STREAM_KEEPALIVE_INTERVAL": "-5s"}, ErrKeepaliveInterval},
		{"bad frame interval", map[string]string{"ORRERY_FRAME_INTERVAL": "soon"}, nil},
		{"zero streams", map[string]string{"ORRERY_STREAM_MAX_CONCURRENT": "0"}, nil},
		{"bad auth flag", map[string]string{"ORRERY_AUTH_ENABLED": "maybe"}, nil},
		{"auth without token", map[string]string{"ORRERY_AUTH_ENABLED": "true"}, ErrAuthToken},
		{"bad log level", map[string]string{"ORRERY_LOG_LEVEL": "loud"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New())
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("ORRERY_HTTP_ADDR", ":9090")
	t.Setenv("ORRERY_MODE", "static")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--addr", ":7070"}); err != nil {
		t.Fatal(err)
	}

	v := New()
	if err := BindFlags(v, fs); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want flag value :7070", cfg.HTTPAddr)
	}
	// Unset flags leave env values alone.
	if cfg.Mode != scene.Static {
		t.Errorf("Mode = %v, want static from env", cfg.Mode)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	data := []byte("mode: static\nframe:\n  interval: 40ms\nstream:\n  max_concurrent: 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	v := New()
	if err := ReadFile(v, path); err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != scene.Static || cfg.FrameInterval != 40*time.Millisecond || cfg.StreamMax != 2 {
		t.Errorf("cfg = %+v", cfg)
	}

	if err := ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if err := ReadFile(New(), ""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}

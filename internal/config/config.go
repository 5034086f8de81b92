// Package config loads server settings from defaults, an optional config
// file, ORRERY_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/callmenick/sun-venus-earth/internal/scene"
)

// EnvPrefix is prepended to every environment variable, e.g. ORRERY_HTTP_ADDR.
const EnvPrefix = "ORRERY"

// Keys.
const (
	KeyHTTPAddr          = "http.addr"
	KeyTrustProxy        = "http.trust_proxy"
	KeyMode              = "mode"
	KeyFrameInterval     = "frame.interval"
	KeyStreamMax         = "stream.max_concurrent"
	KeyStreamMaxTotal    = "stream.max_total"
	KeyKeepaliveInterval = "stream.keepalive_interval"
	KeyAuthEnabled       = "auth.enabled"
	KeyAuthToken         = "auth.token"
	KeyLogLevel          = "log.level"
)

var (
	ErrAuthToken         = errors.New("auth.token is required when auth is enabled")
	ErrFrameInterval     = errors.New("frame.interval must be positive")
	ErrKeepaliveInterval = errors.New("stream.keepalive_interval must be positive")
)

// Config is the validated server configuration.
type Config struct {
	HTTPAddr          string
	TrustProxy        bool
	Mode              scene.Mode
	FrameInterval     time.Duration
	StreamMax         int
	StreamMaxTotal    int
	KeepaliveInterval time.Duration
	AuthEnabled       bool
	AuthToken         string
	LogLevel          slog.Level
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyTrustProxy, false)
	v.SetDefault(KeyMode, scene.Animated.String())
	v.SetDefault(KeyFrameInterval, 16*time.Millisecond)
	v.SetDefault(KeyStreamMax, 10)
	v.SetDefault(KeyStreamMaxTotal, 1000)
	v.SetDefault(KeyKeepaliveInterval, 30*time.Second)
	v.SetDefault(KeyAuthEnabled, false)
	v.SetDefault(KeyAuthToken, "")
	v.SetDefault(KeyLogLevel, "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterFlags adds the server flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("mode", scene.Animated.String(), "static or animated")
	fs.Duration("frame-interval", 16*time.Millisecond, "default animation frame interval")
	fs.String("log-level", "info", "debug, info, warn or error")
}

// BindFlags maps the flags from RegisterFlags onto config keys. Only flags
// the user actually set override env and file values.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		KeyHTTPAddr:      "addr",
		KeyMode:          "mode",
		KeyFrameInterval: "frame-interval",
		KeyLogLevel:      "log-level",
	}
	for key, name := range bindings {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load reads and validates every key.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	var err error

	cfg.HTTPAddr = v.GetString(KeyHTTPAddr)

	if cfg.Mode, err = scene.ParseMode(v.GetString(KeyMode)); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyMode, err)
	}

	if cfg.FrameInterval, err = cast.ToDurationE(v.Get(KeyFrameInterval)); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyFrameInterval, err)
	}
	if cfg.FrameInterval <= 0 {
		return cfg, ErrFrameInterval
	}

	if cfg.KeepaliveInterval, err = cast.ToDurationE(v.Get(KeyKeepaliveInterval)); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyKeepaliveInterval, err)
	}
	if cfg.KeepaliveInterval <= 0 {
		return cfg, ErrKeepaliveInterval
	}

	if cfg.StreamMax, err = cast.ToIntE(v.Get(KeyStreamMax)); err != nil || cfg.StreamMax < 1 {
		return cfg, fmt.Errorf("%s must be a positive integer, got %v", KeyStreamMax, v.Get(KeyStreamMax))
	}
	if cfg.StreamMaxTotal, err = cast.ToIntE(v.Get(KeyStreamMaxTotal)); err != nil || cfg.StreamMaxTotal < 1 {
		return cfg, fmt.Errorf("%s must be a positive integer, got %v", KeyStreamMaxTotal, v.Get(KeyStreamMaxTotal))
	}

	if cfg.TrustProxy, err = cast.ToBoolE(v.Get(KeyTrustProxy)); err != nil {
		return cfg, fmt.Errorf("%s must be a boolean value (true/false/1/0): %w", KeyTrustProxy, err)
	}

	if cfg.AuthEnabled, err = cast.ToBoolE(v.Get(KeyAuthEnabled)); err != nil {
		return cfg, fmt.Errorf("%s must be a boolean value (true/false/1/0): %w", KeyAuthEnabled, err)
	}
	if cfg.AuthEnabled {
		cfg.AuthToken = v.GetString(KeyAuthToken)
		if cfg.AuthToken == "" {
			return cfg, ErrAuthToken
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString(KeyLogLevel))); err != nil {
		return cfg, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	return cfg, nil
}

// LogValue keeps the auth token out of logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTPAddr),
		slog.Bool("trust_proxy", c.TrustProxy),
		slog.String("mode", c.Mode.String()),
		slog.Int64("frame_interval_ms", c.FrameInterval.Milliseconds()),
		slog.Int("stream_max_concurrent", c.StreamMax),
		slog.Int("stream_max_total", c.StreamMaxTotal),
		slog.Float64("keepalive_interval_seconds", c.KeepaliveInterval.Seconds()),
		slog.Bool("auth_enabled", c.AuthEnabled),
		slog.String("log_level", c.LogLevel.String()),
	)
}

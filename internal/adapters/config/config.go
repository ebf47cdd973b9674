package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/teamboard/internal/adapters/fsutil"
	"github.com/bnema/teamboard/internal/application"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "teamboard"
	envPrefix  = "TEAMBOARD"
	fileMode   = 0o644

	KeyProjectDir        = "project_dir"
	KeySessionID         = "session_id"
	KeyNotifyURL         = "notify_url"
	KeyPollInterval      = "poll_interval"
	KeyHeartbeatInterval = "heartbeat_interval"
	KeyWaitTimeout       = "wait_timeout"
	KeyLogLevel          = "log_level"
)

var ErrConfigExists = errors.New("config file already exists")

// Config is the per-user client configuration. Project state lives in the
// project directory, not here.
type Config struct {
	ProjectDir        string
	SessionID         string
	NotifyURL         string
	PollInterval      time.Duration
	HeartbeatInterval time.Duration
	WaitTimeout       time.Duration
	LogLevel          string
	// File is the config file viper read, empty when none was found.
	File string
}

// fileSchema is the on-disk shape; durations are written as "3s" strings.
type fileSchema struct {
	ProjectDir        string `toml:"project_dir"`
	SessionID         string `toml:"session_id"`
	NotifyURL         string `toml:"notify_url"`
	PollInterval      string `toml:"poll_interval"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
	WaitTimeout       string `toml:"wait_timeout"`
	LogLevel          string `toml:"log_level"`
}

func (c Config) toSchema() fileSchema {
	return fileSchema{
		ProjectDir:        c.ProjectDir,
		SessionID:         c.SessionID,
		NotifyURL:         c.NotifyURL,
		PollInterval:      c.PollInterval.String(),
		HeartbeatInterval: c.HeartbeatInterval.String(),
		WaitTimeout:       c.WaitTimeout.String(),
		LogLevel:          c.LogLevel,
	}
}

func Defaults() Config {
	return Config{
		PollInterval:      application.DefaultPollInterval,
		HeartbeatInterval: application.DefaultHeartbeatInterval,
		WaitTimeout:       application.DefaultWaitTimeout,
		LogLevel:          "warn",
	}
}

// DefaultPath honours XDG_CONFIG_HOME and falls back to ~/.config.
func DefaultPath() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, configDir, configName+"."+configType), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDir, configName+"."+configType), nil
}

// Load resolves the effective configuration from defaults, the config file
// and TEAMBOARD_* environment variables, in increasing precedence. Values
// already set on v (bound flags, explicit Set calls) win over all of them.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	defaults := Defaults()
	v.SetDefault(KeyProjectDir, defaults.ProjectDir)
	v.SetDefault(KeySessionID, defaults.SessionID)
	v.SetDefault(KeyNotifyURL, defaults.NotifyURL)
	v.SetDefault(KeyPollInterval, defaults.PollInterval)
	v.SetDefault(KeyHeartbeatInterval, defaults.HeartbeatInterval)
	v.SetDefault(KeyWaitTimeout, defaults.WaitTimeout)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		path, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Dir(path))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		ProjectDir:        strings.TrimSpace(v.GetString(KeyProjectDir)),
		SessionID:         strings.TrimSpace(v.GetString(KeySessionID)),
		NotifyURL:         strings.TrimSpace(v.GetString(KeyNotifyURL)),
		PollInterval:      v.GetDuration(KeyPollInterval),
		HeartbeatInterval: v.GetDuration(KeyHeartbeatInterval),
		WaitTimeout:       v.GetDuration(KeyWaitTimeout),
		LogLevel:          strings.TrimSpace(v.GetString(KeyLogLevel)),
		File:              v.ConfigFileUsed(),
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Encode renders the effective configuration in config-file form.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c.toSchema())
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}

// ServiceOptions maps the timing knobs onto the application options.
func (c Config) ServiceOptions() application.Options {
	return application.Options{
		PollInterval:      c.PollInterval,
		HeartbeatInterval: c.HeartbeatInterval,
		WaitTimeout:       c.WaitTimeout,
	}
}

// WriteDefault writes the default config to path. An existing file is left
// alone unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	data, err := Defaults().Encode()
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, fileMode)
}

func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(raw) == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyLogLevel, raw, err)
	}

	return level, nil
}

// NewLogger builds the text logger used by every command. Logs go to w,
// which is stderr in practice, so stdout stays clean for tool output.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

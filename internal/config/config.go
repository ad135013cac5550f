// Package config resolves runtime settings from defaults, an optional TOML
// file, DAYTODO_* environment variables and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	"github.com/sandeepkv93/daytodo/internal/storage"
)

const (
	DefaultDataDir    = "~/.local/share/daytodo"
	DefaultConfigPath = "~/.config/daytodo/config.toml"
	LogFileName       = "daytodo.log"
)

var (
	ErrInvalidConfig = errors.New("config: invalid value")
	ErrUnknownKey    = errors.New("config: unknown key")
)

type RuntimeConfig struct {
	DataDir              string `toml:"data_dir"`
	Backend              string `toml:"backend"`
	LogLevel             string `toml:"log_level"`
	LogFormat            string `toml:"log_format"`
	LogFile              string `toml:"log_file"`
	DesktopNotifications bool   `toml:"desktop_notifications"`
	SchedulerBuffer      int    `toml:"scheduler_buffer"`
	WeekStart            string `toml:"week_start"`
}

func Default() RuntimeConfig {
	return RuntimeConfig{
		DataDir:              DefaultDataDir,
		Backend:              string(storage.KindFile),
		LogLevel:             "info",
		LogFormat:            "text",
		DesktopNotifications: false,
		SchedulerBuffer:      64,
		WeekStart:            "monday",
	}
}

// FromFile overlays the keys present in a TOML file onto base. A missing
// file is not an error unless required is set.
func FromFile(base RuntimeConfig, path string, required bool) (RuntimeConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return base, fmt.Errorf("expand %s: %w", path, err)
	}
	cfg := base
	md, err := toml.DecodeFile(expanded, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", expanded, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return base, fmt.Errorf("%w in %s: %s", ErrUnknownKey, expanded, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func FromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("DAYTODO_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("DAYTODO_BACKEND"); ok {
		cfg.Backend = v
	}
	if v, ok := getEnvString("DAYTODO_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvString("DAYTODO_LOG_FORMAT"); ok {
		cfg.LogFormat = v
	}
	if v, ok := getEnvString("DAYTODO_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvBool("DAYTODO_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("DAYTODO_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString("DAYTODO_WEEK_START"); ok {
		cfg.WeekStart = v
	}
	return cfg
}

// Override adjusts the layered config before it is resolved.
type Override func(*RuntimeConfig)

// Load applies defaults, the config file, the environment and then
// overrides, and resolves the result. An empty path means
// DefaultConfigPath, which may be absent.
func Load(path string, overrides ...Override) (RuntimeConfig, error) {
	required := path != ""
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, err := FromFile(Default(), path, required)
	if err != nil {
		return Default(), err
	}
	cfg = FromEnv(cfg)
	for _, o := range overrides {
		o(&cfg)
	}
	return cfg.Resolve()
}

// Resolve expands "~" in paths, fills the default log file and validates
// every enumerated field.
func (c RuntimeConfig) Resolve() (RuntimeConfig, error) {
	dir, err := homedir.Expand(strings.TrimSpace(c.DataDir))
	if err != nil {
		return c, fmt.Errorf("expand data dir: %w", err)
	}
	if dir == "" {
		return c, fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	c.DataDir = filepath.Clean(dir)

	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, LogFileName)
	} else if c.LogFile != "-" {
		if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
			return c, fmt.Errorf("expand log file: %w", err)
		}
	}

	kind, err := storage.ParseKind(c.Backend)
	if err != nil {
		return c, fmt.Errorf("%w: backend: %w", ErrInvalidConfig, err)
	}
	c.Backend = string(kind)

	if _, err := c.FirstWeekday(); err != nil {
		return c, err
	}
	if c.SchedulerBuffer <= 0 {
		return c, fmt.Errorf("%w: scheduler_buffer must be positive", ErrInvalidConfig)
	}
	return c, nil
}

func (c RuntimeConfig) StorageKind() storage.Kind {
	kind, err := storage.ParseKind(c.Backend)
	if err != nil {
		return storage.KindFile
	}
	return kind
}

func (c RuntimeConfig) FirstWeekday() (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(c.WeekStart)) {
	case "", "monday", "mon":
		return time.Monday, nil
	case "sunday", "sun":
		return time.Sunday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	default:
		return time.Monday, fmt.Errorf("%w: week_start %q", ErrInvalidConfig, c.WeekStart)
	}
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

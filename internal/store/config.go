package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"toolbar-cli/internal/reorder"

	"github.com/spf13/viper"
)

// Config keys, as they appear in config.json and (upper-cased, dots as underscores) in
// TOOLBAR_* environment variables.
const (
	KeyPressThresholdMs    = "reorder.pressThresholdMs"
	KeyMoveCancelThreshold = "reorder.moveCancelThreshold"
	KeyTolerance           = "reorder.tolerance"
	KeyFrameIntervalMs     = "reorder.frameIntervalMs"
	KeyToolbarWidth        = "toolbar.width"
	KeyGlyphs              = "tui.glyphs"
	KeyLogLevel            = "log.level"
)

// Defaults are in terminal cells for distances: rows are two lines tall.
var configDefaults = map[string]any{
	KeyPressThresholdMs:    300,
	KeyMoveCancelThreshold: 0.5,
	KeyTolerance:           1.0,
	KeyFrameIntervalMs:     16,
	KeyToolbarWidth:        40,
	KeyGlyphs:              "unicode",
	KeyLogLevel:            "info",
}

type Config struct {
	Reorder ReorderConfig `mapstructure:"reorder" json:"reorder"`
	Toolbar ToolbarConfig `mapstructure:"toolbar" json:"toolbar"`
	TUI     TUIConfig     `mapstructure:"tui" json:"tui"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
}

type ReorderConfig struct {
	PressThresholdMs    int     `mapstructure:"pressThresholdMs" json:"pressThresholdMs" validate:"gte=50,lte=5000"`
	MoveCancelThreshold float64 `mapstructure:"moveCancelThreshold" json:"moveCancelThreshold" validate:"gt=0"`
	Tolerance           float64 `mapstructure:"tolerance" json:"tolerance" validate:"gt=0"`
	FrameIntervalMs     int     `mapstructure:"frameIntervalMs" json:"frameIntervalMs" validate:"gte=1,lte=1000"`
}

type ToolbarConfig struct {
	// Width is the number of cells the toolbar row has before buttons overflow.
	Width int `mapstructure:"width" json:"width" validate:"gte=4,lte=400"`
}

type TUIConfig struct {
	Glyphs string `mapstructure:"glyphs" json:"glyphs" validate:"oneof=unicode ascii"`
}

type LogConfig struct {
	Level string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error"`
}

// Core converts the persisted tunables to the reorder package's config.
func (c ReorderConfig) Core() reorder.Config {
	return reorder.Config{
		PressThreshold:      time.Duration(c.PressThresholdMs) * time.Millisecond,
		MoveCancelThreshold: c.MoveCancelThreshold,
		Tolerance:           c.Tolerance,
	}
}

func (c ReorderConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.toolbar).
	if v := strings.TrimSpace(os.Getenv("TOOLBAR_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".toolbar"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ConfigKeys lists every settable key in sorted order.
func ConfigKeys() []string {
	out := make([]string, 0, len(configDefaults))
	for k := range configDefaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newConfigViper(path string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for k, d := range configDefaults {
		v.SetDefault(k, d)
	}
	if withEnv {
		v.SetEnvPrefix("toolbar")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// Missing file: defaults (and env) only.
	}
	return v, nil
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig merges defaults, config.json and TOOLBAR_* environment overrides.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	v, err := newConfigViper(path, true)
	if err != nil {
		return nil, err
	}
	return decodeConfig(v)
}

// SetConfigValue sets one key in config.json. Environment overrides are not written back.
func SetConfigValue(key, value string) (*Config, error) {
	if _, ok := configDefaults[key]; !ok {
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(ConfigKeys(), ", "))
	}
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	v, err := newConfigViper(path, false)
	if err != nil {
		return nil, err
	}
	v.Set(key, strings.TrimSpace(value))
	cfg, err := decodeConfig(v)
	if err != nil {
		return nil, err
	}
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	if err := ValidateConfig(*cfg); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Keep the previous config around; failures here never block the save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.json.bak.*.tmp", path+".bak", prev, 0o644)
	}

	// The TUI and CLI can write concurrently; a unique temp name plus rename keeps the file whole.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

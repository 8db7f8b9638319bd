package cask

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const (
	// defaultSyncInterval is filled into SyncInterval by validate when
	// SyncOnPut is true and no interval is set. The background sync loop
	// runs only when SyncOnPut is false, so this default never starts it.
	defaultSyncInterval = 1 * time.Second
	// defaultRotationCheckInterval governs how often the background
	// rotation tracker polls the active datafile's size.
	defaultRotationCheckInterval = 5 * time.Minute
)

// Config controls how Open behaves. DataDir is the only required field;
// everything else has a workable zero value or default.
type Config struct {
	// DataDir is the directory all datafiles and hint files live under.
	// Required.
	DataDir string

	// SyncOnPut, when true, fsyncs the active datafile and its hint file
	// after every Put. Default false (durability is "the kernel received
	// the bytes", not "the platter has them").
	SyncOnPut bool

	// SyncInterval, when positive and SyncOnPut is false, runs a
	// background fsync of the active datafile on this cadence instead.
	SyncInterval time.Duration

	// MaxFileSize, when positive, rotates the active datafile into the
	// read-only set once its size has reached this many bytes; the check
	// runs in the background every RotationCheckInterval, not on each Put,
	// so the file can grow past the limit between checks. Reserved: zero
	// (the default) disables rotation entirely, which is a valid revision
	// of this store.
	MaxFileSize int64

	// RotationCheckInterval governs how often the background rotation
	// tracker polls the active datafile's size. Only consulted when
	// MaxFileSize is set.
	RotationCheckInterval time.Duration

	// Logger receives structured logs from the façade. A production JSON
	// logger is used when nil.
	Logger *zap.SugaredLogger
}

// fileConfig is the on-disk shape of config.yml.
type fileConfig struct {
	DataDir              string `yaml:"data_dir"`
	SyncOnPut            bool   `yaml:"sync_on_put"`
	SyncIntervalSeconds  int64  `yaml:"sync_interval_seconds"`
	MaxFileSize          int64  `yaml:"max_file_size"`
	RotationCheckSeconds int64  `yaml:"rotation_check_seconds"`
	LogLevel             string `yaml:"log_level"`
}

// LoadConfigFile reads a YAML config file at path, expanding ${VAR} against
// the process environment (optionally populated from a .env file in the
// current working directory).
// Missing .env files are not an error — godotenv.Load is best-effort here,
// matching how config is loaded elsewhere in the retrieved corpus.
func LoadConfigFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg := &Config{
		DataDir:               fc.DataDir,
		SyncOnPut:             fc.SyncOnPut,
		SyncInterval:          time.Duration(fc.SyncIntervalSeconds) * time.Second,
		MaxFileSize:           fc.MaxFileSize,
		RotationCheckInterval: time.Duration(fc.RotationCheckSeconds) * time.Second,
	}
	if fc.LogLevel != "" {
		logger, err := newLeveledLogger(fc.LogLevel)
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger
	}
	return cfg, nil
}

// validate fills in defaults and checks required fields. It never
// overwrites a value the caller explicitly set.
func (cfg *Config) validate() error {
	if cfg.DataDir == "" {
		return fmt.Errorf("%w: DataDir is required", ErrIO)
	}
	if cfg.SyncOnPut && cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}
	if cfg.MaxFileSize > 0 && cfg.RotationCheckInterval <= 0 {
		cfg.RotationCheckInterval = defaultRotationCheckInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = newDefaultLogger()
	}
	return nil
}

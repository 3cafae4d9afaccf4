package aocdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration file and directory names.
const (
	appDirName     = "aocdata"
	configFileName = "aoc_settings.toml"

	// Config values equal to this placeholder are treated as unset so example
	// files can be copied without their stub values taking effect.
	placeholderValue = "REPLACE_ME"
)

// Environment variables consulted during config resolution.
const (
	envSession     = "AOC_SESSION"
	envPassphrase  = "AOC_PASSPHRASE"
	envPuzzleDir   = "AOC_PUZZLE_DIR"
	envSessionsDir = "AOC_SESSIONS_DIR"
	envConfigPath  = "AOC_CONFIG_PATH"
)

// Config is the resolved client configuration. It is built once by
// ResolveConfig and never mutated afterwards; every component receives it
// explicitly instead of reading files or environment variables itself.
type Config struct {
	// SessionToken authenticates requests to the puzzle service. May be empty
	// if a token was previously saved in the session store.
	SessionToken string
	// Passphrase derives the cache encryption key. Empty disables encryption.
	Passphrase string
	// PuzzleDir is where encrypted puzzle inputs and answer logs are cached.
	PuzzleDir string
	// SessionsDir is where per-host session state is persisted.
	SessionsDir string
	// ConfigSource is the explicit config file path, if one replaced the
	// default search order.
	ConfigSource string
	// Clock supplies the current time. Overridable for tests.
	Clock func() time.Time
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// partialConfig holds the fields one configuration source explicitly set.
// Empty strings mean "not set by this source".
type partialConfig struct {
	sessionToken string
	passphrase   string
	puzzleDir    string
	sessionsDir  string
}

// merge overlays q on top of p: only fields q explicitly set overwrite.
func (p partialConfig) merge(q partialConfig) partialConfig {
	if q.sessionToken != "" {
		p.sessionToken = q.sessionToken
	}
	if q.passphrase != "" {
		p.passphrase = q.passphrase
	}
	if q.puzzleDir != "" {
		p.puzzleDir = q.puzzleDir
	}
	if q.sessionsDir != "" {
		p.sessionsDir = q.sessionsDir
	}
	return p
}

// resolver accumulates explicit overrides and policy switches before the
// merge runs.
type resolver struct {
	overrides        partialConfig
	clock            func() time.Time
	hostnameFallback bool
}

// Option customizes config resolution. Options are the highest-priority
// configuration source.
type Option func(*resolver)

// WithSessionToken sets the session token, overriding files and environment.
func WithSessionToken(token string) Option {
	return func(r *resolver) { r.overrides.sessionToken = strings.TrimSpace(token) }
}

// WithPassphrase sets the cache encryption passphrase, overriding files and
// environment.
func WithPassphrase(passphrase string) Option {
	return func(r *resolver) { r.overrides.passphrase = passphrase }
}

// WithPuzzleDir sets the puzzle cache directory, overriding files and
// environment.
func WithPuzzleDir(dir string) Option {
	return func(r *resolver) { r.overrides.puzzleDir = dir }
}

// WithSessionsDir sets the session state directory, overriding files and
// environment.
func WithSessionsDir(dir string) Option {
	return func(r *resolver) { r.overrides.sessionsDir = dir }
}

// WithClock overrides the current-time source, typically for tests.
func WithClock(clock func() time.Time) Option {
	return func(r *resolver) { r.clock = clock }
}

// WithHostnamePassphrase controls the passphrase fallback policy. When
// enabled (the default) and no passphrase is configured anywhere, a
// passphrase is derived from the machine hostname, provided the puzzle
// directory is the platform default. Disable to require an explicit
// passphrase instead.
func WithHostnamePassphrase(enabled bool) Option {
	return func(r *resolver) { r.hostnameFallback = enabled }
}

// ResolveConfig merges configuration from, in ascending priority: the
// user-level config file, a project-local aoc_settings.toml in the current
// directory, environment variables, and explicit options. Setting
// AOC_CONFIG_PATH replaces both file steps with the named file. Each source
// overwrites only the fields it explicitly sets. Missing files are treated
// as empty; unparsable files are a ConfigError.
func ResolveConfig(opts ...Option) (Config, error) {
	// Pick up a .env file if the working directory has one, so AOC_* vars in
	// it are visible to the environment step below.
	_ = godotenv.Load()

	r := &resolver{hostnameFallback: true}
	for _, opt := range opts {
		opt(r)
	}

	var merged partialConfig
	var source string

	if custom := strings.TrimSpace(os.Getenv(envConfigPath)); custom != "" {
		p, err := readConfigFile(custom)
		if err != nil {
			return Config{}, err
		}
		merged = merged.merge(p)
		source = custom
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			p, err := readConfigFile(filepath.Join(dir, appDirName, configFileName))
			if err != nil {
				return Config{}, err
			}
			merged = merged.merge(p)
		}
		p, err := readConfigFile(configFileName)
		if err != nil {
			return Config{}, err
		}
		merged = merged.merge(p)
	}

	merged = merged.merge(envConfig())
	merged = merged.merge(r.overrides)

	cfg := Config{
		SessionToken: merged.sessionToken,
		Passphrase:   merged.passphrase,
		PuzzleDir:    merged.puzzleDir,
		SessionsDir:  merged.sessionsDir,
		ConfigSource: source,
		Clock:        r.clock,
	}

	customPuzzleDir := cfg.PuzzleDir != ""
	if cfg.PuzzleDir == "" || cfg.SessionsDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return Config{}, &ConfigError{Err: fmt.Errorf("no cache directory available: %w", err)}
		}
		if cfg.PuzzleDir == "" {
			cfg.PuzzleDir = filepath.Join(cacheDir, appDirName, "puzzles")
		}
		if cfg.SessionsDir == "" {
			cfg.SessionsDir = filepath.Join(cacheDir, appDirName, "sessions")
		}
	}

	if cfg.Passphrase == "" {
		// A hostname-derived passphrase is only acceptable for the default
		// cache location. A custom puzzle dir is often a checked-in project
		// directory, where silently picking a machine-local key would
		// produce a cache nobody else can read.
		if customPuzzleDir {
			return Config{}, &ConfigError{Err: errors.New(
				"a passphrase is required when puzzle_dir is overridden; set passphrase or " + envPassphrase)}
		}
		if !r.hostnameFallback {
			return Config{}, &ConfigError{Err: errors.New(
				"a passphrase is required; set passphrase or " + envPassphrase)}
		}
		passphrase, err := hostnamePassphrase()
		if err != nil {
			return Config{}, err
		}
		cfg.Passphrase = passphrase
	}

	return cfg, nil
}

// readConfigFile loads the [client] table from a TOML config file. A missing
// file yields an empty partial; a malformed file is a ConfigError.
func readConfigFile(path string) (partialConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return partialConfig{}, nil
		}
		return partialConfig{}, &ConfigError{Path: path, Err: err}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return partialConfig{}, &ConfigError{Path: path, Err: err}
	}

	read := func(key string) string {
		v := strings.TrimSpace(k.String("client." + key))
		if v == placeholderValue {
			return ""
		}
		return v
	}
	return partialConfig{
		sessionToken: read("session_id"),
		passphrase:   read("passphrase"),
		puzzleDir:    read("puzzle_dir"),
		sessionsDir:  read("sessions_dir"),
	}, nil
}

// envConfig reads the AOC_* environment variables into a partial.
func envConfig() partialConfig {
	k := koanf.New(".")
	_ = k.Load(env.Provider("AOC_", ".", func(name string) string {
		switch name {
		case envSession:
			return "session_id"
		case envPassphrase:
			return "passphrase"
		case envPuzzleDir:
			return "puzzle_dir"
		case envSessionsDir:
			return "sessions_dir"
		}
		return "" // skip unrelated AOC_* variables
	}), nil)

	return partialConfig{
		sessionToken: strings.TrimSpace(k.String("session_id")),
		passphrase:   k.String("passphrase"),
		puzzleDir:    k.String("puzzle_dir"),
		sessionsDir:  k.String("sessions_dir"),
	}
}

// hostnamePassphrase derives the fallback passphrase from the machine
// hostname. Documented policy: the cache is then readable on this machine
// only, which is acceptable for the default per-user cache directory.
func hostnamePassphrase() (string, error) {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "", &ConfigError{Err: fmt.Errorf("cannot derive passphrase from hostname: %w", err)}
	}
	return appDirName + ":" + host, nil
}

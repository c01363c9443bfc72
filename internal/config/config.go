package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"grammarcheck/internal/languagetool"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ServerLocal  = "local"
	ServerRemote = "remote"

	IgnoreStoreFile     = "file"
	IgnoreStorePostgres = "postgres"

	defaultSettingsFile = "grammarcheck.toml"
)

type Config struct {
	ServerLocal        string        `toml:"server_local"`
	ServerRemote       string        `toml:"server_remote"`
	DefaultServer      string        `toml:"default_server"`
	DisplayMode        string        `toml:"display_mode"`
	HighlightScope     string        `toml:"highlight_scope"`
	IgnoredScopes      []string      `toml:"ignored_scopes"`
	Language           string        `toml:"language"`
	ResponseFormat     string        `toml:"response_format"`
	RequestMethod      string        `toml:"request_method"`
	SplitReplacements  bool          `toml:"split_replacements"`
	CheckSelectionOnly bool          `toml:"check_selection_only"`
	SkipPlaceholders   bool          `toml:"skip_placeholders"`
	CheckTimeout       time.Duration `toml:"check_timeout"`
	IgnoreStore        string        `toml:"ignore_store"`
	IgnoreFile         string        `toml:"ignore_file"`
	DatabaseURL        string        `toml:"database_url"`
	CacheDir           string        `toml:"cache_dir"`
	WorkerCount        int           `toml:"worker_count"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerLocal:       "http://localhost:8081/v2/check",
		ServerRemote:      "https://api.languagetool.org/v2/check",
		DefaultServer:     ServerRemote,
		DisplayMode:       "panel",
		HighlightScope:    "comment",
		Language:          languagetool.Auto,
		ResponseFormat:    languagetool.FormatAuto,
		RequestMethod:     "POST",
		SplitReplacements: true,
		IgnoreStore:       IgnoreStoreFile,
		IgnoreFile:        "grammarcheck-ignored.json",
		DatabaseURL:       "postgres://localhost:5432/grammarcheck?sslmode=disable",
		WorkerCount:       4,
	}
}

// Load builds the configuration from defaults, the settings file named by
// GRAMMARCHECK_SETTINGS (default grammarcheck.toml, optional), then .env and
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := Defaults()
	path := getEnv("GRAMMARCHECK_SETTINGS", defaultSettingsFile)
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("path", path).Msg("No settings file, using defaults")
			return nil
		}
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		log.Warn().Str("path", path).Interface("keys", undecoded).Msg("Unknown settings ignored")
	}
	log.Debug().Str("path", path).Msg("Loaded settings file")
	return nil
}

func (c *Config) applyEnv() {
	c.ServerLocal = getEnv("LANGUAGETOOL_SERVER_LOCAL", c.ServerLocal)
	c.ServerRemote = getEnv("LANGUAGETOOL_SERVER_REMOTE", c.ServerRemote)
	c.DefaultServer = getEnv("LANGUAGETOOL_DEFAULT_SERVER", c.DefaultServer)
	c.DisplayMode = getEnv("GRAMMARCHECK_DISPLAY_MODE", c.DisplayMode)
	c.HighlightScope = getEnv("GRAMMARCHECK_HIGHLIGHT_SCOPE", c.HighlightScope)
	c.IgnoredScopes = getEnvList("GRAMMARCHECK_IGNORED_SCOPES", c.IgnoredScopes)
	c.Language = getEnv("LANGUAGETOOL_LANGUAGE", c.Language)
	c.ResponseFormat = getEnv("LANGUAGETOOL_RESPONSE_FORMAT", c.ResponseFormat)
	c.RequestMethod = getEnv("LANGUAGETOOL_REQUEST_METHOD", c.RequestMethod)
	c.SplitReplacements = getEnvBool("LANGUAGETOOL_SPLIT_REPLACEMENTS", c.SplitReplacements)
	c.CheckSelectionOnly = getEnvBool("GRAMMARCHECK_CHECK_SELECTION_ONLY", c.CheckSelectionOnly)
	c.SkipPlaceholders = getEnvBool("GRAMMARCHECK_SKIP_PLACEHOLDERS", c.SkipPlaceholders)
	c.CheckTimeout = getEnvDuration("LANGUAGETOOL_CHECK_TIMEOUT", c.CheckTimeout)
	c.IgnoreStore = getEnv("GRAMMARCHECK_IGNORE_STORE", c.IgnoreStore)
	c.IgnoreFile = getEnv("GRAMMARCHECK_IGNORE_FILE", c.IgnoreFile)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.CacheDir = getEnv("GRAMMARCHECK_CACHE_DIR", c.CacheDir)
	c.WorkerCount = getEnvInt("WORKER_COUNT", c.WorkerCount)
}

// Validate checks enumerated settings and canonicalizes the language tag.
func (c *Config) Validate() error {
	lang, err := languagetool.NormalizeLanguage(c.Language)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Language = lang

	if err := oneOf("default_server", c.DefaultServer, ServerLocal, ServerRemote); err != nil {
		return err
	}
	if err := oneOf("display_mode", c.DisplayMode, "panel", "statusbar"); err != nil {
		return err
	}
	if err := oneOf("response_format", c.ResponseFormat,
		languagetool.FormatAuto, languagetool.FormatJSON, languagetool.FormatXML); err != nil {
		return err
	}
	c.RequestMethod = strings.ToUpper(c.RequestMethod)
	if err := oneOf("request_method", c.RequestMethod, "POST", "GET"); err != nil {
		return err
	}
	if err := oneOf("ignore_store", c.IgnoreStore, IgnoreStoreFile, IgnoreStorePostgres); err != nil {
		return err
	}
	if c.CheckTimeout < 0 {
		return fmt.Errorf("config: check_timeout must not be negative")
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = 1
	}
	return nil
}

// ServerURL resolves force ("local", "remote" or empty for default_server)
// to a check endpoint.
func (c *Config) ServerURL(force string) (string, error) {
	which := force
	if which == "" {
		which = c.DefaultServer
	}
	switch which {
	case ServerLocal:
		return c.ServerLocal, nil
	case ServerRemote:
		return c.ServerRemote, nil
	}
	return "", fmt.Errorf("unknown server %q (want %s or %s)", force, ServerLocal, ServerRemote)
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("config: %s must be one of %s, got %q", key, strings.Join(allowed, "|"), value)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

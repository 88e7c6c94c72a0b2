package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Config represents the comet configuration.
type Config struct {
	Provider           string      `json:"provider"`
	Model              string      `json:"model"`
	Language           string      `json:"language"`
	Format             string      `json:"format"`
	AutoReview         bool        `json:"autoReview"`
	MaxChunkSize       int         `json:"maxChunkSize"`
	MaxContextLength   int         `json:"maxContextLength"`
	MaxFileSizeMB      float64     `json:"maxFileSizeMB"`
	DebounceDelayMS    int         `json:"debounceDelayMS"`
	AdaptiveMultiplier float64     `json:"adaptiveMultiplier"`
	MaxRetries         int         `json:"maxRetries"`
	RetryDelayMS       int         `json:"retryDelayMS"`
	MaxConcurrency     int         `json:"maxConcurrency"`
	IgnorePatterns     []string    `json:"ignorePatterns"`
	CredentialKeywords []string    `json:"credentialKeywords"`
	Cache              CacheConfig `json:"cache"`
}

// CacheConfig controls result caching behavior.
type CacheConfig struct {
	Enabled    bool   `json:"enabled"`
	Dir        string `json:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:           "ollama",
		Model:              "gemma3:1b",
		Language:           "english",
		Format:             "text",
		AutoReview:         false,
		MaxChunkSize:       2000,
		MaxContextLength:   4000,
		MaxFileSizeMB:      5.0,
		DebounceDelayMS:    3000,
		AdaptiveMultiplier: 5.0,
		MaxRetries:         3,
		RetryDelayMS:       1000,
		MaxConcurrency:     4,
		IgnorePatterns: []string{
			".git/", "__pycache__/", ".pyc", ".pyo", ".DS_Store",
			"node_modules/", "vendor/", "dist/",
		},
		CredentialKeywords: []string{
			"password", "passwd", "secret", "api_key", "apikey", "token",
			"auth", "credential", "private", "session", "jwt", "bearer",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 300,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for comet.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "comet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "comet"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "comet"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "comet"), nil
	default:
		return filepath.Join(home, ".config", "comet"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and nil error if file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

func mergeFile(dst *Config, src Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.Language != "" {
		dst.Language = src.Language
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.MaxChunkSize > 0 {
		dst.MaxChunkSize = src.MaxChunkSize
	}
	if src.MaxContextLength > 0 {
		dst.MaxContextLength = src.MaxContextLength
	}
	if src.MaxFileSizeMB > 0 {
		dst.MaxFileSizeMB = src.MaxFileSizeMB
	}
	if src.DebounceDelayMS > 0 {
		dst.DebounceDelayMS = src.DebounceDelayMS
	}
	if src.AdaptiveMultiplier > 0 {
		dst.AdaptiveMultiplier = src.AdaptiveMultiplier
	}
	if src.MaxRetries > 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if src.RetryDelayMS > 0 {
		dst.RetryDelayMS = src.RetryDelayMS
	}
	if src.MaxConcurrency > 0 {
		dst.MaxConcurrency = src.MaxConcurrency
	}
	if len(src.IgnorePatterns) > 0 {
		dst.IgnorePatterns = src.IgnorePatterns
	}
	if len(src.CredentialKeywords) > 0 {
		dst.CredentialKeywords = src.CredentialKeywords
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	// JSON zero value for bool can't be told apart from unset, so bool
	// fields from the file only ever turn features on.
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
	dst.AutoReview = src.AutoReview || dst.AutoReview
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("COMET_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("COMET_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("COMET_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("COMET_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("COMET_AUTO_REVIEW"); v != "" {
		cfg.AutoReview = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("COMET_MAX_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkSize = n
		}
	}
	if v := os.Getenv("COMET_MAX_CONTEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxContextLength = n
		}
	}
	if v := os.Getenv("COMET_MAX_FILE_SIZE_MB"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MaxFileSizeMB = f
		}
	}
	if v := os.Getenv("COMET_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DebounceDelayMS = n
		}
	}
	if v := os.Getenv("COMET_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}
	if v := os.Getenv("COMET_IGNORE_PATTERNS"); v != "" {
		cfg.IgnorePatterns = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["language"]; ok && v != "" {
		cfg.Language = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["maxChunkSize"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxChunkSize = n
		}
	}
	if v, ok := overrides["debounceDelayMS"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DebounceDelayMS = n
		}
	}
	if v, ok := overrides["maxConcurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConcurrency = n
		}
	}
	if v, ok := overrides["cacheTTLSeconds"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "language":
		cfg.Language = value
	case "format":
		cfg.Format = value
	case "autoReview":
		cfg.AutoReview = strings.EqualFold(value, "true") || value == "1"
	case "maxChunkSize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxChunkSize must be an integer: %w", err)
		}
		cfg.MaxChunkSize = n
	case "maxContextLength":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxContextLength must be an integer: %w", err)
		}
		cfg.MaxContextLength = n
	case "maxFileSizeMB":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("maxFileSizeMB must be a number: %w", err)
		}
		cfg.MaxFileSizeMB = f
	case "debounceDelayMS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("debounceDelayMS must be an integer: %w", err)
		}
		cfg.DebounceDelayMS = n
	case "adaptiveMultiplier":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("adaptiveMultiplier must be a number: %w", err)
		}
		cfg.AdaptiveMultiplier = f
	case "maxRetries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxRetries must be an integer: %w", err)
		}
		cfg.MaxRetries = n
	case "retryDelayMS":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("retryDelayMS must be an integer: %w", err)
		}
		cfg.RetryDelayMS = n
	case "maxConcurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxConcurrency must be an integer: %w", err)
		}
		cfg.MaxConcurrency = n
	case "cacheTTLSeconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cacheTTLSeconds must be an integer: %w", err)
		}
		cfg.Cache.TTLSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

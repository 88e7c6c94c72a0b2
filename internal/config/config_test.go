package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, 2000, cfg.MaxChunkSize)
	assert.Equal(t, 4000, cfg.MaxContextLength)
	assert.Equal(t, 3000, cfg.DebounceDelayMS)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.True(t, cfg.Cache.Enabled)
	assert.NotEmpty(t, cfg.IgnorePatterns)
	assert.NotEmpty(t, cfg.CredentialKeywords)
}

func TestMergeFile(t *testing.T) {
	dst := Default()
	src := Config{
		Provider:        "gemini",
		Model:           "gemini-2.0-flash",
		MaxChunkSize:    5000,
		DebounceDelayMS: 1500,
		AutoReview:      true,
	}
	mergeFile(&dst, src)

	assert.Equal(t, "gemini", dst.Provider)
	assert.Equal(t, "gemini-2.0-flash", dst.Model)
	assert.Equal(t, 5000, dst.MaxChunkSize)
	assert.Equal(t, 1500, dst.DebounceDelayMS)
	assert.True(t, dst.AutoReview)
	// Untouched fields keep defaults.
	assert.Equal(t, "english", dst.Language)
	assert.Equal(t, 4000, dst.MaxContextLength)
}

func TestMergeFileEmptyKeepsDefaults(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{})
	assert.Equal(t, Default(), dst)
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("COMET_PROVIDER", "openrouter")
	t.Setenv("COMET_MODEL", "openai/gpt-4o-mini")
	t.Setenv("COMET_DEBOUNCE_MS", "750")
	t.Setenv("COMET_IGNORE_PATTERNS", "build/, tmp/ ,")

	cfg := Default()
	mergeEnv(&cfg)

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "openai/gpt-4o-mini", cfg.Model)
	assert.Equal(t, 750, cfg.DebounceDelayMS)
	assert.Equal(t, []string{"build/", "tmp/"}, cfg.IgnorePatterns)
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	mergeOverrides(&cfg, map[string]string{
		"provider":        "gemini",
		"maxChunkSize":    "1234",
		"debounceDelayMS": "200",
	})

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 1234, cfg.MaxChunkSize)
	assert.Equal(t, 200, cfg.DebounceDelayMS)
}

func TestSetField(t *testing.T) {
	cfg := Default()

	require.NoError(t, SetField(&cfg, "provider", "openrouter"))
	require.NoError(t, SetField(&cfg, "maxChunkSize", "8000"))
	require.NoError(t, SetField(&cfg, "maxFileSizeMB", "2.5"))
	require.NoError(t, SetField(&cfg, "autoReview", "true"))

	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, 8000, cfg.MaxChunkSize)
	assert.Equal(t, 2.5, cfg.MaxFileSizeMB)
	assert.True(t, cfg.AutoReview)
}

func TestSetFieldErrors(t *testing.T) {
	cfg := Default()

	assert.Error(t, SetField(&cfg, "maxChunkSize", "not-a-number"))
	assert.Error(t, SetField(&cfg, "noSuchKey", "x"))
}

// Package config loads and merges comet configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (COMET_PROVIDER, COMET_MODEL, COMET_DEBOUNCE_MS, etc.)
//  3. Config file ($XDG_CONFIG_HOME/comet/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a single
// key from the `comet config set` command. All numeric limits that govern
// the chunking pipeline (MaxChunkSize, MaxContextLength, MaxFileSizeMB) and
// the watch loop (DebounceDelayMS, AdaptiveMultiplier, IgnorePatterns) live
// here so that every component receives an explicitly constructed Config
// rather than reading ambient state.
package config

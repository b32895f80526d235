// Package config loads the reconciliation configuration: the provider
// priority order, disabled providers, model exclusion rules, and per-model
// payload overrides.
package config

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/pricewatch/pkg/errors"
)

// DefaultPath is where the configuration is looked up when no explicit
// path is given.
const DefaultPath = "config/config.yaml"

// Config is the top-level reconciliation configuration.
type Config struct {
	Providers  ProviderSettings          `yaml:"providers"`
	Exclusions Exclusions                `yaml:"exclusions"`
	Overrides  map[string]map[string]any `yaml:"overrides"`
}

// ProviderSettings controls provider evaluation order and availability.
type ProviderSettings struct {
	// Priority is the provider evaluation and selection order.
	Priority []string `yaml:"priority"`

	// Disabled lists providers whose mappings are switched off; they are
	// classified as disabled during evaluation and never selected.
	Disabled []string `yaml:"disabled"`
}

// Exclusions filters models out of enrichment and changelog diffs.
// All matching is case-insensitive.
type Exclusions struct {
	IDContains []string `yaml:"id_contains"`
	IDSuffixes []string `yaml:"id_suffixes"`
	IDPrefixes []string `yaml:"id_prefixes"`
	OwnedBy    []string `yaml:"owned_by"`
}

// ShouldExclude reports whether a decoded model payload matches any
// exclusion rule.
func (e *Exclusions) ShouldExclude(model map[string]any) bool {
	if e == nil {
		return false
	}

	modelID, _ := model["id"].(string)
	ownedBy, _ := model["owned_by"].(string)

	loweredID := strings.ToLower(modelID)
	loweredOwned := strings.ToLower(ownedBy)

	for _, prefix := range e.IDPrefixes {
		if strings.HasPrefix(loweredID, strings.ToLower(prefix)) {
			return true
		}
	}
	for _, suffix := range e.IDSuffixes {
		if strings.HasSuffix(loweredID, strings.ToLower(suffix)) {
			return true
		}
	}
	for _, fragment := range e.IDContains {
		if strings.Contains(loweredID, strings.ToLower(fragment)) {
			return true
		}
	}
	for _, owner := range e.OwnedBy {
		if loweredOwned == strings.ToLower(owner) {
			return true
		}
	}
	return false
}

// Default returns an empty configuration.
func Default() *Config {
	return &Config{}
}

// Load reads the configuration from a YAML file. A missing file yields the
// default configuration rather than an error; a malformed file does not.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.NewIOError(path, "reading config", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError("config", "parsing "+path, err)
	}

	cfg.Providers.Priority = cleanList(cfg.Providers.Priority)
	cfg.Providers.Disabled = cleanList(cfg.Providers.Disabled)

	return &cfg, nil
}

// cleanList trims entries and drops empties.
func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "APP_"

// Load reads configuration from DefaultDir. See LoadFrom.
func Load(profile string) (*Config, error) {
	return LoadFrom(DefaultDir, profile)
}

// LoadFrom layers, lowest first: the built-in defaults, {dir}/base.yaml,
// {dir}/{profile}.yaml, APP_ environment variables and finally overrides
// given as key=value pairs (the CLI's --set). Missing files are skipped.
//
// In environment variables "__" separates sections: APP_ADMIN__SESSION_TTL
// sets admin.session_ttl.
func LoadFrom(dir, profile string, overrides ...string) (*Config, error) {
	set, err := parseOverrides(overrides)
	if err != nil {
		return nil, err
	}

	layers := []struct {
		name string
		load func(*koanf.Koanf) error
	}{
		{"defaults", func(k *koanf.Koanf) error { return k.Load(confmap.Provider(defaults(), "."), nil) }},
		{"base config", yamlFile(filepath.Join(dir, "base.yaml"))},
		{fmt.Sprintf("profile config %q", profile), yamlFile(profileFile(dir, profile))},
		{"env vars", func(k *koanf.Koanf) error { return k.Load(env.Provider(envPrefix, ".", envKey), nil) }},
		{"overrides", func(k *koanf.Koanf) error { return k.Load(confmap.Provider(set, "."), nil) }},
	}

	k := koanf.New(".")

	for _, layer := range layers {
		if err := layer.load(k); err != nil {
			return nil, fmt.Errorf("loading %s: %w", layer.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_SERVER__READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

func profileFile(dir, profile string) string {
	if profile == "" {
		return ""
	}

	return filepath.Join(dir, profile+".yaml")
}

// yamlFile loads path when it exists. An empty path loads nothing.
func yamlFile(path string) func(*koanf.Koanf) error {
	return func(k *koanf.Koanf) error {
		if path == "" {
			return nil
		}

		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return k.Load(file.Provider(path), yaml.Parser())
	}
}

// parseOverrides turns "admin.session_ttl=1h" pairs into a flat key map.
func parseOverrides(pairs []string) (map[string]any, error) {
	set := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")

		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("override %q: want key=value", pair)
		}

		set[key] = strings.TrimSpace(value)
	}

	return set, nil
}

package config

const (
	// DefaultDir is where base.yaml and the profile files are looked up.
	DefaultDir = "configs"

	// DefaultMaxRequestSize caps request bodies and imports at 1 MiB.
	DefaultMaxRequestSize = 1 << 20
)

// defaults is the lowest layer of the configuration: a bare checkout runs a
// bolt-backed service on :8080 with the picsum background service.
func defaults() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":        "verse-service",
			"version":     "dev",
			"environment": "local",
		},
		"server": map[string]any{
			"host":             "0.0.0.0",
			"port":             8080,
			"read_timeout":     "30s",
			"write_timeout":    "30s",
			"idle_timeout":     "120s",
			"shutdown_timeout": "10s",
			"max_request_size": DefaultMaxRequestSize,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
			"file": map[string]any{
				"enabled":     false,
				"path":        "./logs/verse.log",
				"max_size":    100,
				"max_backups": 3,
				"max_age":     28,
				"compress":    true,
			},
		},
		"telemetry": map[string]any{
			"enabled":       false,
			"service_name":  "verse-service",
			"sampling_rate": 1.0,
		},
		"client": map[string]any{
			"timeout": "30s",
			"retry": map[string]any{
				"max_attempts":     3,
				"initial_interval": "100ms",
				"max_interval":     "5s",
				"multiplier":       2.0,
				"jitter_factor":    0.25,
			},
			"circuit_breaker": map[string]any{
				"max_failures":    5,
				"timeout":         "30s",
				"half_open_limit": 3,
			},
			"transport": map[string]any{
				"max_idle_conns":          100,
				"max_idle_conns_per_host": 10,
				"idle_conn_timeout":       "90s",
			},
		},
		"services": map[string]any{
			"images": map[string]any{
				"name":     "picsum",
				"base_url": "https://picsum.photos",
				"width":    1920,
				"height":   1080,
			},
		},
		"storage": map[string]any{
			"driver": "bolt",
			"path":   "./data/verses.db",
		},
		"admin": map[string]any{
			"default_password":    "admin123",
			"min_password_length": 4,
			"session_ttl":         "12h",
			"strict_import":       false,
			"max_import_size":     DefaultMaxRequestSize,
			"secure_cookie":       false,
		},
		"viewer": map[string]any{
			"default_verses_file": "",
			"backdrop_timeout":    "10s",
		},
	}
}

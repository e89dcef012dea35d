package config

import "strings"

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppLogFormat     = "text"
	defaultAppHTTPAddr      = ":8080"
	defaultFetchTimeout     = 5
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = 30
	defaultDashboardTitle   = "Farmer Updates Dashboard"
	defaultPreviewPoints    = 10
	defaultRefreshCooldown  = 600
	defaultSnapshotWidth    = 1440
	defaultSnapshotHeight   = 1100
	defaultSnapshotTimeout  = 20
)

// Defaults returns a config populated only with defaults, used when no file exists.
func Defaults() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Metrics.applyDefaults(keys)
	c.Dashboard.applyDefaults(keys)
	c.Snapshot.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (m *MetricsConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("metrics.fetch_timeout_seconds", &m.FetchTimeoutSeconds, defaultFetchTimeout),
		intFieldDefault("metrics.breaker_threshold", &m.BreakerThreshold, defaultBreakerThreshold),
		intFieldDefault("metrics.breaker_cooldown_seconds", &m.BreakerCooldownSeconds, defaultBreakerCooldown),
	)
}

func (d *DashboardConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("dashboard.title", &d.Title, defaultDashboardTitle),
		intFieldDefault("dashboard.preview_points", &d.PreviewPoints, defaultPreviewPoints),
		intFieldDefault("dashboard.refresh_cooldown_ms", &d.RefreshCooldownMS, defaultRefreshCooldown),
		boolFieldDefault("dashboard.show_preview_chart", &d.ShowPreviewChart, true),
		boolFieldDefault("dashboard.show_segments_chart", &d.ShowSegmentsChart, true),
	)
}

func (s *SnapshotConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("snapshot.width", &s.Width, defaultSnapshotWidth),
		intFieldDefault("snapshot.height", &s.Height, defaultSnapshotHeight),
		intFieldDefault("snapshot.timeout_seconds", &s.TimeoutSeconds, defaultSnapshotTimeout),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// boolFieldDefault only applies when the key is absent, so an explicit false sticks.
func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

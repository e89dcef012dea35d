package config

import (
	"fmt"
	"net/url"
	"strings"

	"fieldpulse/internal/scheduler"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Metrics.validate(); err != nil {
		return err
	}
	if err := c.Dashboard.validate(); err != nil {
		return err
	}
	return c.Snapshot.validate()
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (m *MetricsConfig) validate() error {
	if raw := strings.TrimSpace(m.SourceURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("metrics.source_url invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("metrics.source_url must use http or https")
		}
	}
	if m.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("metrics.fetch_timeout_seconds must be > 0")
	}
	if m.BreakerThreshold < 0 {
		return fmt.Errorf("metrics.breaker_threshold must be >= 0")
	}
	if m.BreakerCooldownSeconds < 0 {
		return fmt.Errorf("metrics.breaker_cooldown_seconds must be >= 0")
	}
	return nil
}

func (d *DashboardConfig) validate() error {
	if d.PreviewPoints <= 0 {
		return fmt.Errorf("dashboard.preview_points must be > 0")
	}
	if d.RefreshCooldownMS < 0 {
		return fmt.Errorf("dashboard.refresh_cooldown_ms must be >= 0")
	}
	if raw := strings.TrimSpace(d.AutoRefreshInterval); raw != "" {
		if _, ok := scheduler.ParseIntervalDuration(raw); !ok {
			return fmt.Errorf("dashboard.auto_refresh_interval invalid: %q", raw)
		}
	}
	return nil
}

func (s *SnapshotConfig) validate() error {
	if !s.Enabled {
		return nil
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("snapshot.width and snapshot.height must be > 0")
	}
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("snapshot.timeout_seconds must be > 0")
	}
	return nil
}

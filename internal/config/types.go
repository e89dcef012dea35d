package config

import "strings"

// Config 是 fieldpulse 的主配置载体。
type Config struct {
	App       AppConfig       `toml:"app"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Snapshot  SnapshotConfig  `toml:"snapshot"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogPath   string `toml:"log_path"`
	HTTPAddr  string `toml:"http_addr"`
}

// MetricsConfig 描述 metrics 文档的来源。source_url 优先于 source_file；
// 两者都为空时看板始终使用合成数据。
type MetricsConfig struct {
	SourceURL              string `toml:"source_url"`
	SourceFile             string `toml:"source_file"`
	DataDir                string `toml:"data_dir"`
	FetchTimeoutSeconds    int    `toml:"fetch_timeout_seconds"`
	BreakerThreshold       int    `toml:"breaker_threshold"`
	BreakerCooldownSeconds int    `toml:"breaker_cooldown_seconds"`
	Seed                   int64  `toml:"seed"`
}

type DashboardConfig struct {
	Title               string `toml:"title"`
	TemplatesPath       string `toml:"templates_path"`
	PreviewPoints       int    `toml:"preview_points"`
	ShowPreviewChart    bool   `toml:"show_preview_chart"`
	ShowSegmentsChart   bool   `toml:"show_segments_chart"`
	RefreshCooldownMS   int    `toml:"refresh_cooldown_ms"`
	AutoRefreshInterval string `toml:"auto_refresh_interval"`
}

// SnapshotConfig 控制 headless Chrome 截图导出。
type SnapshotConfig struct {
	Enabled        bool `toml:"enabled"`
	Width          int  `toml:"width"`
	Height         int  `toml:"height"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// SourceKind reports which metrics source the config selects.
func (m MetricsConfig) SourceKind() string {
	switch {
	case strings.TrimSpace(m.SourceURL) != "":
		return "http"
	case strings.TrimSpace(m.SourceFile) != "":
		return "file"
	default:
		return "none"
	}
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	_, ok := k[path]
	return ok
}

// collect marks every leaf key under node, so defaults skip values the file set explicitly.
func (k keySet) collect(prefix string, node any) {
	switch val := node.(type) {
	case map[string]any:
		for name, child := range val {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			if prefix != "" {
				name = prefix + "." + name
			}
			k.collect(name, child)
		}
	default:
		k.mark(prefix)
	}
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, 5, cfg.Metrics.FetchTimeoutSeconds)
	assert.Equal(t, 3, cfg.Metrics.BreakerThreshold)
	assert.Equal(t, 10, cfg.Dashboard.PreviewPoints)
	assert.Equal(t, 600, cfg.Dashboard.RefreshCooldownMS)
	assert.True(t, cfg.Dashboard.ShowPreviewChart)
	assert.True(t, cfg.Dashboard.ShowSegmentsChart)
	assert.Equal(t, "none", cfg.Metrics.SourceKind())
}

func TestLoadRespectsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
dashboard:
  show_segments_chart: false
  refresh_cooldown_ms: 0
  preview_points: "4"
metrics:
  source_file: data/metrics.json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Dashboard.ShowSegmentsChart)
	assert.True(t, cfg.Dashboard.ShowPreviewChart)
	assert.Equal(t, 0, cfg.Dashboard.RefreshCooldownMS)
	assert.Equal(t, 4, cfg.Dashboard.PreviewPoints)
	assert.Equal(t, "file", cfg.Metrics.SourceKind())
}

func TestLoadIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "app:\n  http_addr: \":9000\"\n  log_level: debug\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - base.yaml\napp:\n  log_level: warn\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.App.HTTPAddr)
	assert.Equal(t, "warn", cfg.App.LogLevel)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")
	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"bad url":      "metrics:\n  source_url: ftp://example.com/metrics.json\n",
		"bad interval": "dashboard:\n  auto_refresh_interval: soon\n",
		"bad format":   "app:\n  log_format: xml\n",
		"bad preview":  "dashboard:\n  preview_points: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "Farmer Updates Dashboard", cfg.Dashboard.Title)
	assert.Equal(t, 1440, cfg.Snapshot.Width)
	assert.NoError(t, validate(cfg))
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadSingleInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "dashboard:\n  title: Paddy Board\n")
	path := writeFile(t, dir, "config.yaml", "include: base.yaml\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Paddy Board", cfg.Dashboard.Title)
}

func TestResolveIncludesSharedBase(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "app:\n  env: base\n")
	left := writeFile(t, dir, "left.yaml", "include: base.yaml\n")
	right := writeFile(t, dir, "right.yaml", "include: [base.yaml]\n")
	root := writeFile(t, dir, "root.yaml", "include:\n  - left.yaml\n  - right.yaml\n")

	files, err := resolveIncludes(root)
	require.NoError(t, err)
	assert.Equal(t, []string{base, left, right, root}, files)
}

func TestKeySetCollect(t *testing.T) {
	keys := make(keySet)
	keys.collect("", map[string]any{
		"dashboard": map[string]any{"Show_Segments_Chart": false, "title": ""},
		"include":   []any{"base.yaml"},
	})
	assert.True(t, keys.isSet("dashboard.show_segments_chart"))
	assert.True(t, keys.isSet("dashboard.title"))
	assert.True(t, keys.isSet("include"))
	assert.False(t, keys.isSet("dashboard"))
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fieldpulse/internal/config"
	"fieldpulse/internal/dashboard"
	"fieldpulse/internal/logger"
	"fieldpulse/internal/metrics"
	"fieldpulse/internal/pkg/circuit"
	"fieldpulse/internal/refresh"
	"fieldpulse/internal/scheduler"
	"fieldpulse/internal/snapshot"
	dashhttp "fieldpulse/internal/transport/http/dashboard"
)

type AppBuilder struct {
	cfg *config.Config

	sourceFn    func(config.MetricsConfig) (metrics.Source, error)
	templatesFn func(string) ([]dashboard.Template, error)
	serverFn    func(dashhttp.ServerConfig) (*dashhttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithSource replaces the configured metrics source.
func WithSource(src metrics.Source) AppBuilderOption {
	return func(b *AppBuilder) {
		b.sourceFn = func(config.MetricsConfig) (metrics.Source, error) { return src, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		sourceFn:    buildSource,
		templatesFn: loadTemplates,
		serverFn:    dashhttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg

	src, err := b.sourceFn(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("build metrics source: %w", err)
	}
	src = wrapBreaker(src, cfg.Metrics)

	templates, err := b.templatesFn(cfg.Dashboard.TemplatesPath)
	if err != nil {
		return nil, err
	}

	dash := dashboard.New(dashboard.Layout{
		Title:             cfg.Dashboard.Title,
		PreviewPoints:     cfg.Dashboard.PreviewPoints,
		ShowPreviewChart:  cfg.Dashboard.ShowPreviewChart,
		ShowSegmentsChart: cfg.Dashboard.ShowSegmentsChart,
	}, templates)
	loader := metrics.NewLoader(src, metrics.NewSynthesizer(cfg.Metrics.Seed))
	refresher := refresh.New(loader, dash, refreshCooldown(cfg.Dashboard.RefreshCooldownMS))

	snap := snapshot.NewRenderer(snapshot.Options{
		Enabled: cfg.Snapshot.Enabled,
		Width:   cfg.Snapshot.Width,
		Height:  cfg.Snapshot.Height,
		Timeout: time.Duration(cfg.Snapshot.TimeoutSeconds) * time.Second,
	})

	server, err := b.serverFn(dashhttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Dashboard: dash,
		Refresher: refresher,
		Snapshot:  snap,
		DataDir:   cfg.Metrics.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("build http server: %w", err)
	}

	autoRefresh, _ := scheduler.ParseIntervalDuration(cfg.Dashboard.AutoRefreshInterval)
	app := &App{
		cfg:         cfg,
		dash:        dash,
		refresher:   refresher,
		server:      server,
		autoRefresh: autoRefresh,
	}
	app.Summary = &StartupSummary{
		Env:         cfg.App.Env,
		HTTPAddr:    server.Addr(),
		Source:      describeSource(cfg.Metrics),
		DataDir:     cfg.Metrics.DataDir,
		Templates:   len(templates),
		Layout:      cfg.Dashboard,
		AutoRefresh: autoRefresh,
		Snapshot:    cfg.Snapshot.Enabled,
	}
	return app, nil
}

// buildSource 根据配置选择 metrics 来源；都未配置时返回 nil，看板只用合成数据。
func buildSource(cfg config.MetricsConfig) (metrics.Source, error) {
	switch cfg.SourceKind() {
	case "http":
		return metrics.NewHTTPSource(cfg.SourceURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
	case "file":
		return metrics.NewFileSource(cfg.SourceFile)
	default:
		return nil, nil
	}
}

func wrapBreaker(src metrics.Source, cfg config.MetricsConfig) metrics.Source {
	if src == nil || cfg.BreakerThreshold <= 0 {
		return src
	}
	breaker := circuit.New("metrics-fetch", cfg.BreakerThreshold, time.Duration(cfg.BreakerCooldownSeconds)*time.Second)
	breaker.SetStateChangeHandler(func(name string, from, to circuit.State) {
		logger.Warnf("circuit %s: %s -> %s", name, from, to)
	})
	return metrics.NewBreakerSource(src, breaker)
}

func loadTemplates(path string) ([]dashboard.Template, error) {
	if strings.TrimSpace(path) == "" {
		return dashboard.DefaultTemplates(), nil
	}
	items, err := dashboard.LoadTemplates(path)
	if err != nil {
		return nil, fmt.Errorf("load campaign templates: %w", err)
	}
	logger.Infof("✓ 已加载 %d 个活动模板: %s", len(items), path)
	return items, nil
}

// refreshCooldown maps the configured milliseconds onto refresh.New: 0 in the
// file means "no cooldown".
func refreshCooldown(ms int) time.Duration {
	if ms <= 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

func describeSource(cfg config.MetricsConfig) string {
	switch cfg.SourceKind() {
	case "http":
		return "http " + cfg.SourceURL
	case "file":
		return "file " + cfg.SourceFile
	default:
		return "synthetic only"
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fieldpulse/internal/config"
	"fieldpulse/internal/dashboard"
	"fieldpulse/internal/logger"
	"fieldpulse/internal/refresh"
	dashhttp "fieldpulse/internal/transport/http/dashboard"
	webassets "fieldpulse/internal/transport/web"
)

// App 负责应用级编排：加载配置→初始化依赖→启动看板服务。
type App struct {
	cfg         *config.Config
	dash        *dashboard.Dashboard
	refresher   *refresh.Refresher
	server      *dashhttp.Server
	autoRefresh time.Duration
	Summary     *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务、首次刷新以及可选的定时刷新。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	defer a.refresher.Close()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("dashboard http server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if _, err := a.refresher.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warnf("initial refresh failed: %v", err)
		}
		return nil
	})
	if a.autoRefresh > 0 {
		group.Go(func() error {
			a.refresher.RunEvery(ctx, a.autoRefresh)
			return nil
		})
	}
	return group.Wait()
}

// RenderStatic runs one load cycle and returns the self-contained dashboard page.
func (a *App) RenderStatic(ctx context.Context) ([]byte, error) {
	if a == nil || a.refresher == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	defer a.refresher.Close()
	res, err := a.refresher.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return webassets.StaticPage(a.dash, dashboard.ScaleFor(1, 1), res.RefreshedAt.Format("2006-01-02 15:04:05"))
}

// Refresher exposes the refresh controller (for tests and embedding).
func (a *App) Refresher() *refresh.Refresher {
	if a == nil {
		return nil
	}
	return a.refresher
}

func (a *App) Server() *dashhttp.Server {
	if a == nil {
		return nil
	}
	return a.server
}

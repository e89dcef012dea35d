package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fieldpulse/internal/app"
	"fieldpulse/internal/config"
	"fieldpulse/internal/logger"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "fieldpulse",
		Short:         "Farmer-update campaign dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (env FIELDPULSE_CONFIG, default "+defaultConfigPath+")")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	})

	var out string
	render := &cobra.Command{
		Use:   "render",
		Short: "Run one load cycle and write a static dashboard page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), cfgPath, out)
		},
	}
	render.Flags().StringVarP(&out, "output", "o", "dashboard.html", "output html file")
	root.AddCommand(render)
	return root
}

func resolveConfigPath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv("FIELDPULSE_CONFIG")); p != "" {
		return p
	}
	return defaultConfigPath
}

// loadConfig 读取配置；默认路径不存在时回落到内置默认值。
func loadConfig(flag string) (*config.Config, string, error) {
	path := resolveConfigPath(flag)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		logger.Warnf("config %s not found, using built-in defaults", path)
		return config.Defaults(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("读取配置失败: %w", err)
	}
	return cfg, path, nil
}

func runServe(ctx context.Context, flag string) error {
	cfg, path, err := loadConfig(flag)
	if err != nil {
		return err
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetFormat(cfg.App.LogFormat)
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ 配置加载成功（环境=%s，metrics=%s）", cfg.App.Env, cfg.Metrics.SourceKind())

	if path != "" {
		if err := config.Watch(path, config.ApplyRuntime); err != nil {
			logger.Warnf("config watch disabled: %v", err)
		}
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}

func runRender(ctx context.Context, flag, out string) error {
	cfg, _, err := loadConfig(flag)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.App.LogLevel)
	application, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	page, err := application.RenderStatic(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, page, 0o644); err != nil {
		return err
	}
	logger.Infof("dashboard written to %s", out)
	return nil
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}

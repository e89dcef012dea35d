package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"fieldpulse/internal/logger"
)

// ChangeListener 在配置文件变更并成功重新解析后被调用。
type ChangeListener func(*Config)

// Watch reloads path whenever the file changes on disk and hands the new
// config to fn. Invalid edits are logged and ignored.
func Watch(path string, fn ChangeListener) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config watch requires path")
	}
	if fn == nil {
		return fmt.Errorf("config watch requires listener")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config failed: %w", err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load(path)
		if err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("config listener panic: %v", r)
			}
		}()
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}

// ApplyRuntime pushes the settings that may change without a restart.
func ApplyRuntime(cfg *Config) {
	if cfg == nil {
		return
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config reloaded: log_level=%s", cfg.App.LogLevel)
}

package app

import (
	"fmt"
	"strings"
	"time"

	"fieldpulse/internal/config"
	"fieldpulse/internal/logger"
)

type StartupSummary struct {
	Env         string
	HTTPAddr    string
	Source      string
	DataDir     string
	Templates   int
	Layout      config.DashboardConfig
	AutoRefresh time.Duration
	Snapshot    bool
}

func (s *StartupSummary) Print() {
	logger.InfoBlock(s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("启动配置摘要 (STARTUP SUMMARY)\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")

	b.WriteString("[服务 (SERVER)]\n")
	fmt.Fprintf(&b, "  环境: %s\n", orDash(s.Env))
	fmt.Fprintf(&b, "  监听: %s\n", orDash(s.HTTPAddr))
	fmt.Fprintf(&b, "  截图导出: %s\n", onOff(s.Snapshot))

	b.WriteString("[数据 (METRICS)]\n")
	fmt.Fprintf(&b, "  来源: %s\n", orDash(s.Source))
	fmt.Fprintf(&b, "  /data 目录: %s\n", orDash(s.DataDir))

	b.WriteString("[看板 (DASHBOARD)]\n")
	fmt.Fprintf(&b, "  标题: %s\n", orDash(s.Layout.Title))
	fmt.Fprintf(&b, "  活动模板: %d\n", s.Templates)
	fmt.Fprintf(&b, "  预览图: %s (points=%d)\n", onOff(s.Layout.ShowPreviewChart), s.Layout.PreviewPoints)
	fmt.Fprintf(&b, "  分群图: %s\n", onOff(s.Layout.ShowSegmentsChart))
	fmt.Fprintf(&b, "  刷新冷却: %dms\n", s.Layout.RefreshCooldownMS)
	if s.AutoRefresh > 0 {
		fmt.Fprintf(&b, "  自动刷新: %s\n", s.AutoRefresh)
	} else {
		b.WriteString("  自动刷新: off\n")
	}
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Package dashhttp serves the dashboard page, its charts and the refresh API.
package dashhttp

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldpulse/internal/dashboard"
	"fieldpulse/internal/logger"
	"fieldpulse/internal/refresh"
	"fieldpulse/internal/snapshot"
	webassets "fieldpulse/internal/transport/web"
)

const requestIDHeader = "X-Request-ID"

// Server 提供看板页面与 /api 接口。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr      string
	Dashboard *dashboard.Dashboard
	Refresher *refresh.Refresher
	Snapshot  *snapshot.Renderer
	// DataDir, when set, is served under /data so the dashboard can fetch
	// its own metrics.json.
	DataDir string
}

// NewServer 构建 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Dashboard == nil || cfg.Refresher == nil {
		return nil, errors.New("dashboard http server requires dashboard and refresher")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if err := loadTemplates(router); err != nil {
		return nil, err
	}
	if err := serveStatic(router); err != nil {
		return nil, err
	}
	serveData(router, cfg.DataDir)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	NewRouter(cfg.Dashboard, cfg.Refresher, cfg.Snapshot).Register(router)

	return &Server{addr: cfg.Addr, router: router}, nil
}

func loadTemplates(router *gin.Engine) error {
	dirs := []string{
		"internal/transport/web/templates",
		"web/templates",
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "web", "templates"))
	}
	for _, base := range dirs {
		stat, err := os.Stat(base)
		if err != nil || !stat.IsDir() {
			continue
		}
		files, _ := filepath.Glob(filepath.Join(base, "*.html"))
		if len(files) == 0 {
			continue
		}
		router.LoadHTMLFiles(files...)
		return nil
	}
	// fallback to embedded templates
	tmpl, err := webassets.ParseTemplates()
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

func serveStatic(router *gin.Engine) error {
	for _, base := range []string{"internal/transport/web/static", "web/static"} {
		stat, err := os.Stat(base)
		if err == nil && stat.IsDir() {
			router.Static("/static", base)
			return nil
		}
	}
	// fallback to embedded static assets
	sub, err := fs.Sub(webassets.Static, "static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(sub))
	return nil
}

func serveData(router *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return
	}
	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		logger.Warnf("metrics data_dir %q not found, /data disabled", dir)
		return
	}
	router.Static("/data", dir)
}

// requestLogger 记录每个请求并分配请求 ID，便于追踪刷新调用。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s id=%s",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), c.ClientIP(), time.Since(start), id)
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("dashboard listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

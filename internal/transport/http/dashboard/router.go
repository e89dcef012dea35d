package dashhttp

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldpulse/internal/dashboard"
	"fieldpulse/internal/logger"
	"fieldpulse/internal/refresh"
	"fieldpulse/internal/snapshot"
	webassets "fieldpulse/internal/transport/web"
)

const refreshedLayout = "2006-01-02 15:04:05"

// Router 挂载看板页面与 /api 路由。
type Router struct {
	dash      *dashboard.Dashboard
	refresher *refresh.Refresher
	snap      *snapshot.Renderer
}

func NewRouter(dash *dashboard.Dashboard, refresher *refresh.Refresher, snap *snapshot.Renderer) *Router {
	return &Router{dash: dash, refresher: refresher, snap: snap}
}

// RefreshResponse is returned by POST /api/refresh.
type RefreshResponse struct {
	refresh.Result
	Cards    dashboard.Cards        `json:"cards"`
	Segments []dashboard.SegmentRow `json:"segments"`
}

func (r *Router) Register(router *gin.Engine) {
	router.GET("/", r.handlePage)
	router.GET("/charts", r.handleCharts)
	api := router.Group("/api")
	api.GET("/metrics", r.handleMetrics)
	api.POST("/refresh", r.handleRefresh)
	api.GET("/templates", r.handleTemplates)
	api.GET("/snapshot.png", r.handleSnapshot)
}

func (r *Router) scaleFrom(c *gin.Context) dashboard.Scale {
	return dashboard.ParseScale(c.Query("dpr"), c.Query("zoom"))
}

func (r *Router) refreshedLabel() string {
	cur, ok := r.refresher.Current()
	if !ok {
		return ""
	}
	return cur.RefreshedAt.Format(refreshedLayout)
}

func (r *Router) handlePage(c *gin.Context) {
	view := r.dash.View(r.scaleFrom(c))
	view.ChartsURL = "/charts"
	view.Refreshed = r.refreshedLabel()
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, webassets.PageTemplate, view)
}

func (r *Router) handleCharts(c *gin.Context) {
	var buf bytes.Buffer
	if err := r.dash.WriteCharts(&buf); err != nil {
		if errors.Is(err, dashboard.ErrNotRendered) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Errorf("render charts failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render charts failed"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) handleMetrics(c *gin.Context) {
	cur, ok := r.refresher.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics not loaded yet"})
		return
	}
	c.JSON(http.StatusOK, cur)
}

func (r *Router) handleRefresh(c *gin.Context) {
	res, err := r.refresher.Refresh(c.Request.Context())
	if err != nil {
		if errors.Is(err, refresh.ErrBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	view := r.dash.View(dashboard.Scale{})
	c.JSON(http.StatusOK, RefreshResponse{Result: res, Cards: view.Cards, Segments: view.Segments})
}

func (r *Router) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": r.dash.Templates()})
}

func (r *Router) handleSnapshot(c *gin.Context) {
	if err := r.snap.Available(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	page, err := webassets.StaticPage(r.dash, r.scaleFrom(c), r.refreshedLabel())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrNotRendered) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	png, err := r.snap.PNG(c.Request.Context(), page)
	if err != nil {
		logger.Warnf("snapshot failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "inline; filename=dashboard-"+time.Now().Format("20060102-150405")+".png")
	c.Data(http.StatusOK, "image/png", png)
}

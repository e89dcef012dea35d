// Package snapshot renders dashboard HTML to PNG through headless Chrome.
package snapshot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrUnavailable is returned when snapshots are disabled or Chrome cannot start.
var ErrUnavailable = errors.New("headless browser unavailable")

const (
	settleDelay = 1500 * time.Millisecond

	// chromedp 仅在 quality 为 100 时输出 PNG，其余值一律编码为 JPEG。
	pngQuality = 100
)

type Options struct {
	Enabled bool
	Width   int
	Height  int
	Timeout time.Duration
}

// Renderer 负责将 HTML 截图为 PNG，首次调用时探测 Chrome 是否可用。
type Renderer struct {
	opts Options

	probeOnce sync.Once
	probeErr  error
	probe     func(ctx context.Context) error
	capture   func(ctx context.Context, html []byte, width, height int) ([]byte, error)
}

func NewRenderer(opts Options) *Renderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Renderer{opts: opts, probe: probeHeadless, capture: captureHTML}
}

// Available reports whether Chrome could be started; the probe runs once.
func (r *Renderer) Available(ctx context.Context) error {
	if r == nil || !r.opts.Enabled {
		return ErrUnavailable
	}
	r.probeOnce.Do(func() {
		if err := r.probe(ctx); err != nil {
			r.probeErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return r.probeErr
}

// PNG renders html and returns the full-page screenshot.
func (r *Renderer) PNG(ctx context.Context, html []byte) ([]byte, error) {
	if err := r.Available(ctx); err != nil {
		return nil, err
	}
	if len(html) == 0 {
		return nil, fmt.Errorf("snapshot requires html")
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	return r.capture(timeoutCtx, html, r.opts.Width, r.opts.Height)
}

func probeHeadless(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()
	return chromedp.Run(parent)
}

func captureHTML(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.FullScreenshot(&screenshot, pngQuality),
	}
	if err := chromedp.Run(parent, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}

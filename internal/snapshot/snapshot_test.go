package snapshot

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledRendererIsUnavailable(t *testing.T) {
	r := NewRenderer(Options{Enabled: false})
	_, err := r.PNG(context.Background(), []byte("<html></html>"))
	assert.ErrorIs(t, err, ErrUnavailable)

	var nilRenderer *Renderer
	assert.ErrorIs(t, nilRenderer.Available(context.Background()), ErrUnavailable)
}

func TestProbeRunsOnce(t *testing.T) {
	r := NewRenderer(Options{Enabled: true, Width: 800, Height: 600})
	probes := 0
	r.probe = func(context.Context) error {
		probes++
		return errors.New("chrome not found")
	}
	for i := 0; i < 3; i++ {
		err := r.Available(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, 1, probes)
}

func TestPNGUsesCapture(t *testing.T) {
	r := NewRenderer(Options{Enabled: true, Width: 800, Height: 600, Timeout: time.Second})
	r.probe = func(context.Context) error { return nil }
	r.capture = func(ctx context.Context, html []byte, width, height int) ([]byte, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		assert.Equal(t, 800, width)
		assert.Equal(t, 600, height)
		return []byte("png"), nil
	}

	out, err := r.PNG(context.Background(), []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), out)

	_, err = r.PNG(context.Background(), nil)
	assert.Error(t, err)
}

func TestScreenshotQualitySelectsPNG(t *testing.T) {
	assert.Equal(t, 100, pngQuality)
}

func TestCaptureProducesPNG(t *testing.T) {
	if testing.Short() {
		t.Skip("headless chrome capture skipped in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := probeHeadless(ctx); err != nil {
		t.Skipf("chrome not available: %v", err)
	}
	out, err := captureHTML(ctx, []byte("<html><body><h1>Farmer updates</h1></body></html>"), 640, 480)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")), "not a png: % x", out[:min(8, len(out))])
}

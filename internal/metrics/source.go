package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"fieldpulse/internal/logger"
	"fieldpulse/internal/pkg/circuit"
	"fieldpulse/internal/pkg/text"
)

const (
	maxDocumentBytes = 1 << 20
	errorBodyBytes   = 512
)

// Source 提供一份 metrics 文档。
type Source interface {
	Fetch(ctx context.Context) (*Metrics, error)
}

// HTTPSource fetches the metrics document over HTTP, bypassing caches.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource validates rawURL and builds a source with the given timeout.
func NewHTTPSource(rawURL string, timeout time.Duration) (*HTTPSource, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("metrics source url cannot be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse metrics source url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("metrics source url must be http(s): %s", rawURL)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		url:        parsed.String(),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// SetHTTPClient sets the HTTP client for testing.
func (s *HTTPSource) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

func (s *HTTPSource) URL() string { return s.url }

func (s *HTTPSource) Fetch(ctx context.Context) (*Metrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		return nil, fmt.Errorf("metrics response not ok: status=%d body=%q", resp.StatusCode, text.Snippet(body, 120))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read metrics body: %w", err)
	}
	return Decode(raw)
}

// FileSource reads the metrics document from local disk on every fetch.
type FileSource struct {
	path string
}

func NewFileSource(path string) (*FileSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("metrics source file cannot be empty")
	}
	return &FileSource{path: path}, nil
}

func (s *FileSource) Fetch(ctx context.Context) (*Metrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read metrics file: %w", err)
	}
	return Decode(raw)
}

// BreakerSource short-circuits a failing upstream so refreshes fall back to
// synthetic data without waiting on the network.
type BreakerSource struct {
	src     Source
	breaker *circuit.Breaker
}

func NewBreakerSource(src Source, breaker *circuit.Breaker) *BreakerSource {
	return &BreakerSource{src: src, breaker: breaker}
}

func (s *BreakerSource) Fetch(ctx context.Context) (*Metrics, error) {
	if s.breaker == nil {
		return s.src.Fetch(ctx)
	}
	var out *Metrics
	err := s.breaker.Do(func() error {
		m, err := s.src.Fetch(ctx)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	return out, err
}

// FetchOrNil never fails: any error or panic is logged and reported as nil,
// the "no metrics" sentinel that tells Synthesize to generate fresh data.
func FetchOrNil(ctx context.Context, src Source) (m *Metrics) {
	if src == nil {
		logger.Warnf("could not fetch metrics, using defaults: no metrics source configured")
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("metrics fetch panic, using defaults: %v", r)
			m = nil
		}
	}()
	m, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, circuit.ErrOpen) {
			logger.Debugf("metrics source circuit open, using defaults")
		} else {
			logger.Warnf("could not fetch metrics, using defaults: %v", err)
		}
		return nil
	}
	return m
}

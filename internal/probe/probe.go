// Package probe checks that a storefront serves its static product images.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxRedirects = 3

// Result is the outcome of probing one path.
type Result struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Bytes       int    `json:"bytes"`
	Available   bool   `json:"available"`
	Err         string `json:"error,omitempty"`
}

// Prober fetches image URLs. Requests are not retried.
type Prober struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewProber builds a prober with a per-request timeout.
func NewProber(timeout time.Duration, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{timeout: timeout, logger: logger}
}

// Probe requests every path under baseURL in order. It stops early when ctx is done
// and returns the results gathered so far along with the context error.
func (p *Prober) Probe(ctx context.Context, baseURL string, paths []string) ([]Result, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := p.fetch(joinURL(baseURL, path))
		res.Path = path
		results = append(results, res)

		fields := []zap.Field{
			zap.String("url", res.URL),
			zap.Int("status", res.Status),
			zap.String("content_type", res.ContentType),
			zap.Int("bytes", res.Bytes),
		}
		if res.Available {
			p.logger.Info("image available", fields...)
		} else {
			p.logger.Warn("image unavailable", append(fields, zap.String("error", res.Err))...)
		}
	}
	return results, nil
}

func (p *Prober) fetch(url string) Result {
	res := Result{URL: url}

	agent := fiber.Get(url).MaxRedirectsCount(maxRedirects)
	if p.timeout > 0 {
		agent.Timeout(p.timeout)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		res.Err = fmt.Sprintf("parse url: %v", err)
		return res
	}

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		res.Err = errors.Join(errs...).Error()
		return res
	}

	res.Status = status
	res.Bytes = len(body)
	res.ContentType = string(resp.Header.ContentType())
	res.Available = status >= http.StatusOK && status < http.StatusMultipleChoices &&
		strings.HasPrefix(strings.ToLower(res.ContentType), "image/") && len(body) > 0
	if !res.Available {
		res.Err = unavailableReason(status, res.ContentType, len(body))
	}
	return res
}

func unavailableReason(status int, contentType string, size int) string {
	switch {
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return fmt.Sprintf("unexpected status %d", status)
	case size == 0:
		return "empty body"
	default:
		return fmt.Sprintf("unexpected content type %q", contentType)
	}
}

// Missing returns the results that are not available.
func Missing(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Available {
			out = append(out, r)
		}
	}
	return out
}

func joinURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

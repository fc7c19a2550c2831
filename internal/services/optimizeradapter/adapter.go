// Package optimizeradapter is the External Optimizer Adapter: a thin
// HTTP-JSON client to a pluggable remote optimizer that falls back to
// the local Optimizer on any failure (spec.md §4.7). The Plan Service is
// the only caller; it never sees the fallback happen except through
// aiModelInfo.algorithm on the result.
package optimizeradapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/kochimetro/induction-engine/internal/domain"
	"github.com/kochimetro/induction-engine/internal/optimizer"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
	"github.com/kochimetro/induction-engine/internal/platform/metrics"
)

// requestBody is the wire shape the remote optimizer expects.
type requestBody struct {
	Trains      []domain.Train        `json:"trains"`
	Constraints optimizer.Constraints `json:"constraints"`
}

// responseBody mirrors the local Optimizer's Output shape exactly, so a
// well-formed remote response can be consumed without translation.
type responseBody struct {
	RankedTrains []domain.RankedEntry       `json:"rankedTrains"`
	Metrics      domain.OptimizationMetrics `json:"metrics"`
	ModelInfo    domain.AIModelInfo         `json:"modelInfo"`
}

// Adapter invokes a remote optimizer when configured, falling back to
// the local Optimizer on any error. Safe for concurrent use.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// New builds an Adapter. baseURL == "" means "always use local" (spec.md
// §6's documented default). ratePerSec <= 0 disables the client-side
// throttle.
func New(baseURL string, timeout time.Duration, ratePerSec float64, baseLog *logger.Logger) *Adapter {
	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		log:        baseLog.With("component", "optimizeradapter.Adapter"),
	}
}

// Run returns the remote optimizer's output when baseURL is configured
// and reachable, or the local optimizer.Run output otherwise. It never
// errors: any failure is logged at WARN and the local path is used.
func (a *Adapter) Run(ctx context.Context, in optimizer.Input) optimizer.Output {
	if a.baseURL == "" {
		return a.runLocal(in, "no_upstream_configured")
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			a.log.Warn("rate limiter wait failed, falling back to local optimizer", "error", err)
			return a.runLocal(in, "rate_limit_wait_error")
		}
	}

	out, err := a.callRemote(ctx, in)
	if err != nil {
		a.log.Warn("external optimizer unreachable or malformed, falling back to local optimizer", "error", err)
		return a.runLocal(in, classify(err))
	}
	return out
}

func (a *Adapter) runLocal(in optimizer.Input, reason string) optimizer.Output {
	start := time.Now()
	out := optimizer.Run(in)
	metrics.OptimizerDuration.WithLabelValues("local").Observe(time.Since(start).Seconds())
	if reason != "no_upstream_configured" {
		metrics.ExternalOptimizerFallback.WithLabelValues(reason).Inc()
	}
	return out
}

func (a *Adapter) callRemote(ctx context.Context, in optimizer.Input) (optimizer.Output, error) {
	body := requestBody{Trains: in.Trains, Constraints: in.Constraints}
	payload, err := json.Marshal(body)
	if err != nil {
		return optimizer.Output{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewReader(payload))
	if err != nil {
		return optimizer.Output{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return optimizer.Output{}, fmt.Errorf("remote optimizer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return optimizer.Output{}, fmt.Errorf("remote optimizer returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return optimizer.Output{}, fmt.Errorf("read remote optimizer response: %w", err)
	}

	var rb responseBody
	if err := json.Unmarshal(raw, &rb); err != nil {
		return optimizer.Output{}, fmt.Errorf("malformed remote optimizer response: %w", err)
	}
	if rb.ModelInfo.Algorithm == "" {
		return optimizer.Output{}, fmt.Errorf("malformed remote optimizer response: missing modelInfo.algorithm")
	}

	metrics.OptimizerDuration.WithLabelValues("remote").Observe(time.Since(start).Seconds())
	return optimizer.Output{
		RankedTrains: rb.RankedTrains,
		Metrics:      rb.Metrics,
		ModelInfo:    rb.ModelInfo,
	}, nil
}

func classify(err error) string {
	if err == nil {
		return "unknown"
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "request_error"
}

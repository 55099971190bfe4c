// Package api exposes the forecaster over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	forecaster "github.com/aouyang1/go-weibull-forecaster"
	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/aouyang1/go-weibull-forecaster/internal/config"
	"github.com/aouyang1/go-weibull-forecaster/internal/metrics"
	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrFitTimeout     = errors.New("fit exceeded time limit")
	ErrClientCanceled = errors.New("request canceled by client")
)

// statusClientClosedRequest is the non-standard code recorded when the client goes away
// before the fit finishes. The client never sees the response.
const statusClientClosedRequest = 499

// fitOutput is the result of a single fit run off the request goroutine
type fitOutput struct {
	res        *forecaster.Results
	iterations int
	err        error
}

type fitFunc func(obs []timedataset.Observation, opt *forecaster.Options) fitOutput

// settings is the immutable per-config state swapped in on reload
type settings struct {
	forecast     *options.Options
	fitTimeout   time.Duration
	maxBodyBytes int64
	limiter      *rate.Limiter
}

// Handler is the HTTP handler for the forecast API
type Handler struct {
	settings atomic.Pointer[settings]
	metrics  *metrics.Metrics
	fit      fitFunc
	mux      *http.ServeMux
}

// New creates a Handler from the config and registers all routes
func New(cfg *config.Config, m *metrics.Metrics) *Handler {
	if m == nil {
		m = metrics.New()
	}
	h := &Handler{
		metrics: m,
		fit:     runFit,
		mux:     http.NewServeMux(),
	}
	h.Reload(cfg)

	h.mux.HandleFunc("/", h.root)
	h.mux.HandleFunc("/weibull", h.weibull)
	h.mux.HandleFunc("/healthz", h.health)
	h.mux.Handle("/metrics", m.Handler())
	return h
}

// Reload swaps in the settings of a new config. In flight requests finish with the settings
// they started with.
func (h *Handler) Reload(cfg *config.Config) {
	if cfg == nil {
		cfg = config.Default()
	}

	var limiter *rate.Limiter
	if cfg.Server.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit.RPS), cfg.Server.RateLimit.EffectiveBurst())
	}

	h.settings.Store(&settings{
		forecast:     cfg.Forecast,
		fitTimeout:   cfg.Server.FitTimeout,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		limiter:      limiter,
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		jsonErr(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, messageResponse{Message: "Hello World"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, healthResponse{Status: "ok"})
}

// weibull fits the posted observations and returns the forecast records over the horizon
func (h *Handler) weibull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s := h.settings.Load()
	start := time.Now()

	if s.limiter != nil && !s.limiter.Allow() {
		h.fail(w, ErrRateLimited)
		return
	}

	includeDistribution := false
	if v := r.URL.Query().Get("distribution"); v != "" {
		var err error
		includeDistribution, err = strconv.ParseBool(v)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, fmt.Sprintf("invalid distribution query %q", v))
			h.metrics.Requests.WithLabelValues(strconv.Itoa(http.StatusBadRequest)).Inc()
			return
		}
	}

	obs, err := timedataset.DecodeObservations(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			jsonErr(w, http.StatusRequestEntityTooLarge, maxBytesErr.Error())
			h.metrics.Requests.WithLabelValues(strconv.Itoa(http.StatusRequestEntityTooLarge)).Inc()
			return
		}
		h.fail(w, err)
		return
	}
	h.metrics.Observations.Observe(float64(len(obs)))

	opt := &forecaster.Options{
		ForecastOptions:     s.forecast,
		IncludeDistribution: includeDistribution,
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.fitTimeout)
	defer cancel()

	out, err := h.fitWithContext(ctx, obs, opt)
	if err != nil {
		h.fail(w, err)
		return
	}

	duration := time.Since(start)
	h.metrics.FitDuration.Observe(duration.Seconds())
	h.metrics.FitIterations.Observe(float64(out.iterations))

	slog.Info("forecast",
		"observations", len(obs),
		"horizon", out.res.Len(),
		"iterations", out.iterations,
		"duration", duration,
	)

	h.metrics.Requests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	jsonResp(w, http.StatusOK, out.res.Records())
}

// fitWithContext runs the fit on its own goroutine. If ctx ends first the result of the fit
// is discarded when it completes. A deadline is reported as ErrFitTimeout and any other
// cancellation as ErrClientCanceled.
func (h *Handler) fitWithContext(ctx context.Context, obs []timedataset.Observation, opt *forecaster.Options) (fitOutput, error) {
	done := make(chan fitOutput, 1)
	go func() {
		done <- h.fit(obs, opt)
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fitOutput{}, fmt.Errorf("%w, %w", ErrFitTimeout, ctx.Err())
		}
		return fitOutput{}, fmt.Errorf("%w, %w", ErrClientCanceled, ctx.Err())
	case out := <-done:
		if out.err != nil {
			return fitOutput{}, out.err
		}
		return out, nil
	}
}

func runFit(obs []timedataset.Observation, opt *forecaster.Options) fitOutput {
	f, err := forecaster.New(opt)
	if err != nil {
		return fitOutput{err: err}
	}
	if err := f.Fit(obs); err != nil {
		return fitOutput{err: err}
	}
	res, err := f.Forecast()
	if err != nil {
		return fitOutput{err: err}
	}
	m, err := f.Model()
	if err != nil {
		return fitOutput{err: err}
	}
	return fitOutput{res: res, iterations: m.Forecast.Iterations}
}

// fail maps a pipeline error to its status code, records it and writes the error body
func (h *Handler) fail(w http.ResponseWriter, err error) {
	code, reason := statusFromError(err)
	h.metrics.Requests.WithLabelValues(strconv.Itoa(code)).Inc()
	h.metrics.FitFailures.WithLabelValues(reason).Inc()

	if code >= http.StatusInternalServerError {
		slog.Warn("unable to forecast", "error", err.Error(), "code", code)
	} else {
		slog.Debug("rejected forecast request", "error", err.Error(), "code", code)
	}
	jsonErr(w, code, err.Error())
}

func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, timedataset.ErrMalformedRecord):
		return http.StatusBadRequest, metrics.ReasonMalformed
	case errors.Is(err, timedataset.ErrEmptyInput):
		return http.StatusUnprocessableEntity, metrics.ReasonEmpty
	case errors.Is(err, forecaster.ErrFitDivergence):
		return http.StatusUnprocessableEntity, metrics.ReasonDivergence
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, metrics.ReasonRateLimited
	case errors.Is(err, ErrFitTimeout):
		return http.StatusServiceUnavailable, metrics.ReasonTimeout
	case errors.Is(err, ErrClientCanceled):
		return statusClientClosedRequest, metrics.ReasonCanceled
	default:
		return http.StatusInternalServerError, metrics.ReasonInternal
	}
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/riskhub/notify/pkg/logger"
)

// Probe reports whether a dependency is usable.
type Probe func(context.Context) error

// RouterOptions configures the ops router. Every field is optional.
type RouterOptions struct {
	Logger *slog.Logger
	// Probes are run by /readyz, keyed by dependency name.
	Probes map[string]Probe
	// ProbeTimeout bounds each probe. Zero means no extra deadline.
	ProbeTimeout time.Duration
	// Sweep is exposed as POST /sweep when set.
	Sweep func(context.Context) error
	// IgnoreSweepError reports sweep errors that should not fail the request.
	IgnoreSweepError func(error) bool
}

// ReadinessReport is the body of /readyz.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const (
	statusOK    = "ok"
	statusReady = "ready"
	statusDown  = "not_ready"
)

// NewRouter builds the ops router:
//
//	GET  /healthz  liveness, always 200 "ALIVE"
//	GET  /readyz   readiness, 200 or 503 with a ReadinessReport
//	POST /sweep    runs one sweep when RouterOptions.Sweep is set
func NewRouter(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/readyz", readinessHandler(log, opts.Probes, opts.ProbeTimeout))

	if opts.Sweep != nil {
		r.Post("/sweep", sweepHandler(log, opts.Sweep, opts.IgnoreSweepError))
	}

	return r
}

func readinessHandler(log *slog.Logger, probes map[string]Probe, timeout time.Duration) http.HandlerFunc {
	names := slices.Sorted(maps.Keys(probes))

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		report := ReadinessReport{Status: statusReady, Checks: make(map[string]string, len(names))}
		code := http.StatusOK

		for _, name := range names {
			if err := runProbe(ctx, probes[name], timeout); err != nil {
				log.LogAttrs(ctx, slog.LevelError, "readiness check failed",
					logger.Component(name),
					slog.String("request_id", middleware.GetReqID(ctx)),
					logger.Error(err),
				)
				report.Checks[name] = err.Error()
				report.Status = statusDown
				code = http.StatusServiceUnavailable
				continue
			}
			report.Checks[name] = statusOK
		}

		writeJSON(w, code, report)
	}
}

func runProbe(ctx context.Context, probe Probe, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return probe(ctx)
}

func sweepHandler(log *slog.Logger, sweep func(context.Context) error, ignore func(error) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		err := sweep(ctx)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"status": statusOK})
		case ignore != nil && ignore(err):
			writeJSON(w, http.StatusConflict, map[string]string{"status": "skipped", "reason": err.Error()})
		case errors.Is(err, context.Canceled):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cancelled"})
		default:
			log.LogAttrs(ctx, slog.LevelError, "manual sweep failed",
				slog.String("request_id", middleware.GetReqID(ctx)),
				logger.Duration(time.Since(start)),
				logger.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
			return
		}

		log.LogAttrs(ctx, slog.LevelInfo, "manual sweep finished",
			slog.String("request_id", middleware.GetReqID(ctx)),
			logger.Duration(time.Since(start)),
		)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

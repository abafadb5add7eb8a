package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vk/routecost/internal/costing"
	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/material"
	"github.com/vk/routecost/internal/report"
	"github.com/vk/routecost/internal/route"
)

// Serve loads the route once and serves health, metrics and cost requests
// on the configured address until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	ctx = a.context(ctx)

	ws, err := a.LoadWorkspace(ctx)
	if err != nil {
		return err
	}
	// Fail at startup rather than on the first request.
	if err := ws.Graph.Validate(ws.Registry); err != nil {
		return fmt.Errorf("route is not costable: %w", err)
	}

	ln, err := net.Listen("tcp", a.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.config.ListenAddr, err)
	}
	return a.serve(ctx, ln, a.Handler(ws))
}

func (a *App) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	logger := ctxlog.FromContext(ctx)
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Cost server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("cost server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	logger.Info("Shutting down cost server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Cost server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Cost server shut down gracefully.")
	return nil
}

// Handler returns the HTTP routes of the serve mode for ws.
func (a *App) Handler(ws *Workspace) http.Handler {
	m := newServeMetrics(ws.Target)
	m.routeSteps.Set(float64(ws.Graph.Len()))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /v1/cost", a.costHandler(ws, m))
	return mux
}

// healthHandler logs the request and answers OK.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// costHandler serves GET /v1/cost?target=&quantity=&steps=.
func (a *App) costHandler(ws *Workspace, m *serveMetrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		logger := a.logger.With("request_id", requestID)
		ctx := ctxlog.WithLogger(r.Context(), logger)
		w.Header().Set("X-Request-Id", requestID)

		reply := func(code int, body any) {
			m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			if err := json.NewEncoder(w).Encode(body); err != nil {
				logger.Warn("Writing cost response failed.", "error", err)
			}
		}

		q := r.URL.Query()
		target := q.Get("target")
		if target == "" {
			target = ws.Target
		}
		quantity := ws.Quantity
		if s := q.Get("quantity"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				reply(http.StatusBadRequest, errorResponse{Error: "quantity: " + err.Error(), RequestID: requestID})
				return
			}
			quantity = v
		}
		steps, _ := strconv.ParseBool(q.Get("steps"))

		start := time.Now()
		res, err := costing.Calculate(ctx, ws.Graph, ws.Registry, target, quantity)
		m.duration.Observe(time.Since(start).Seconds())
		if err != nil {
			logger.Info("Cost request rejected.", "target", target, "error", err)
			reply(statusFor(err), errorResponse{Error: err.Error(), RequestID: requestID})
			return
		}

		if res.Target == ws.Target {
			m.lastUnitCost.Set(res.UnitCost)
		}
		logger.Debug("Cost request served.", "target", res.Target, "quantity", res.Quantity, "total_cost", res.TotalCost)
		reply(http.StatusOK, report.NewReport(res, steps))
	})
}

// statusFor maps costing failures onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, costing.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, route.ErrNoTarget),
		errors.Is(err, route.ErrUnresolvedRawMaterial),
		errors.Is(err, route.ErrCycleDetected),
		errors.Is(err, costing.ErrMissingPrice),
		errors.Is(err, costing.ErrMissingMolarMass),
		errors.Is(err, costing.ErrMissingDensity),
		errors.Is(err, material.ErrNotFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/henkwiedig/msposd/internal/logging"
)

// Serve exposes /metrics on addr in the background. The returned shutdown
// function stops the server; an empty addr disables metrics and returns a
// no-op.
func Serve(addr string) func(context.Context) error {
	if addr == "" {
		return func(context.Context) error { return nil }
	}

	log := logging.GetLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "error", err)
		}
	}()

	return srv.Shutdown
}

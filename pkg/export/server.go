package export

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srodi/memlens/pkg/logging"
)

// ListenAndServe exposes the exporter at metricsPath plus a small
// landing page at /, and shuts the server down when ctx is cancelled.
func ListenAndServe(ctx context.Context, addr, metricsPath string, exporter *Exporter) error {
	logger := logging.Component("export")

	registry := prometheus.NewRegistry()
	registry.MustRegister(exporter)

	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>
<head><title>memlens</title></head>
<body>
<h1>memlens</h1>
<p>Physical memory accounting exporter.</p>
<p><a href="` + metricsPath + `">Metrics</a></p>
</body>
</html>`))
	})

	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("path", metricsPath).Msg("serving metrics")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// internal/server/run.go
//
// Serve-until-signalled helper.
//
// Run blocks on ListenAndServe and shuts the server down cleanly when
// the process receives SIGINT or SIGTERM, giving in-flight requests a
// grace period to finish.  A visit append interrupted mid-save is the
// failure mode graceful shutdown exists to avoid.
//

package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout caps how long in-flight requests may run after a
// signal arrives.
const shutdownTimeout = 10 * time.Second

// Run serves srv until ctx is cancelled or a termination signal
// arrives, then drains connections.  It returns nil on a clean
// shutdown.
func Run(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Infow("shutting down", "grace", shutdownTimeout)

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(drainCtx)
}

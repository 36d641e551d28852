package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may take after a signal.
const ShutdownTimeout = 5 * time.Second

// Serve runs the HTTP API until ctx is done. With the file backend it also
// forwards external edits of the saved directories as library events.
func Serve(ctx context.Context, app *App, addr string) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Handler().Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end with ctx instead of holding Shutdown up.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	if w, ok := app.Watcher(); ok {
		events, err := w.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch library: %w", err)
		}
		g.Go(func() error {
			for event := range events {
				app.Streams.PublishLibrary(event)
			}
			return nil
		})
	}

	g.Go(func() error {
		app.Logger.Info("Starting PromptDrafter Server", "address", srv.Addr, "backend", app.Config.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			return srv.Close()
		}
		app.Logger.Info("PromptDrafter Server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// Addr joins an optional host with a port.
func Addr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Command target serves the local endpoints the sample suites benchmark.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/micrologger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	port := pflag.Int("port", 8080, "Listening port")
	maxDelay := pflag.Duration("max-delay", 10*time.Second, "Upper bound for /delay requests")
	pflag.Parse()

	logger, err := micrologger.New(micrologger.Config{IOWriter: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *port <= 0 {
		logger.Log("level", "error", "message", "port must be > 0")
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           newRouter(*maxDelay),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Log("level", "info", "message", "target server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log("level", "error", "message", "server stopped", "stack", err.Error())
		os.Exit(1)
	}
}

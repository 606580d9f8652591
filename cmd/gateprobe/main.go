// Command gateprobe walks the complete gate flow against a running gated
// server and verifies every response shape.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keelan/gated/internal/gateprobe"
	"github.com/keelan/gated/pkg/logger"
)

func main() {
	cfg := gateprobe.NewConfig()
	flag.StringVar(&cfg.BaseURL, "base-url", gateprobe.DefaultBaseURL, "base URL of the gate server")
	flag.DurationVar(&cfg.Timeout, "timeout", gateprobe.DefaultTimeout, "per-request timeout")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log every response body")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := gateprobe.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "gate probe failed",
			logger.Error(err),
			logger.String("elapsed", time.Since(start).String()))
		os.Exit(1)
	}
}

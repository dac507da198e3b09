// Command httpbin serves the HTTP testing endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/WhileEndless/go-httpbin/pkg/config"
	"github.com/WhileEndless/go-httpbin/pkg/httpbin"
	"github.com/WhileEndless/go-httpbin/pkg/logging"
	"github.com/WhileEndless/go-httpbin/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (or set HTTPBIN_CONFIG)")
	listen := flag.String("listen", "", "listen address, overrides config")
	validateOnly := flag.Bool("validate", false, "load config and exit")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("HTTPBIN_CONFIG")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("config load: %v", err)
	}
	if *listen != "" {
		cfg.ListenAddr = *listen
	}
	if *validateOnly {
		color.Green("config ok")
		color.White("  listen:       %s", cfg.ListenAddr)
		color.White("  h2c:          %t", cfg.EnableH2C)
		color.White("  max duration: %s", cfg.MaxDuration)
		return
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.RedString(format, args...))
	os.Exit(1)
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}

	logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("version", version.Version),
		zap.Bool("h2c", cfg.EnableH2C),
	)
	srv := httpbin.NewServer(cfg, logger)
	if err := httpbin.Run(ctx, srv, ln, cfg.ShutdownTimeout); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/R366Y/async-http-server/config"
	"github.com/R366Y/async-http-server/filesystem"
	"github.com/R366Y/async-http-server/http"
	"github.com/R366Y/async-http-server/telemetry"
)

const serviceName = "async-http-server"

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if cfg.Telemetry.Endpoint != "" {
		shutdown, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry.Endpoint)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()

		logger = otelslog.NewLogger(serviceName)
	}

	resolver, err := filesystem.NewResolver(cfg.Server.Root, logger)
	if err != nil {
		return err
	}

	server := http.NewServer(serviceName, resolver, logger)
	server.ConnDeadline = cfg.Server.ConnDeadline

	return server.ListenAndServe(ctx, cfg.Server.Addr)
}

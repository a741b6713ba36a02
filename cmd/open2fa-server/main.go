package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"

	"github.com/cc-d/open2fa/pkg/config"
	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/ratelimiter"
	"github.com/cc-d/open2fa/pkg/syncserver"
)

var (
	flagAddr = &cli.StringFlag{
		Name:  "addr",
		Usage: "Listen address (overrides OPEN2FA_SERVER_ADDR)",
	}
	flagStorage = &cli.StringFlag{
		Name:  "storage",
		Usage: "Storage backend: memory, redis or postgres (overrides OPEN2FA_SERVER_STORAGE)",
	}
	flagEnvFile = &cli.StringSliceFlag{
		Name:  "env-file",
		Usage: "Dotenv file to read settings from instead of ./.env (repeatable)",
	}
	flagDev = &cli.BoolFlag{
		Name:  "dev",
		Usage: "Human readable debug logs",
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:   "open2fa-server",
		Usage:  "Reference sync endpoint for open2fa clients",
		Flags:  []cli.Flag{flagAddr, flagStorage, flagEnvFile, flagDev},
		Action: serve,
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func serve(cCtx *cli.Context) error {
	var loadOpts []config.Option
	if files := cCtx.StringSlice(flagEnvFile.Name); len(files) > 0 {
		loadOpts = append(loadOpts, config.WithEnvFiles(files...))
	}
	var cfg syncserver.Config
	if err := config.Load(&cfg, loadOpts...); err != nil {
		return err
	}
	if cCtx.IsSet(flagAddr.Name) {
		cfg.Addr = cCtx.String(flagAddr.Name)
	}
	if cCtx.IsSet(flagStorage.Name) {
		cfg.Storage = cCtx.String(flagStorage.Name)
	}

	mode := logger.WithProduction("open2fa-server")
	if cCtx.Bool(flagDev.Name) {
		mode = logger.WithDevelopment("open2fa-server")
	}
	log := logger.New(
		mode,
		logger.WithOutput(os.Stdout),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)

	st, closeStorage, err := syncserver.OpenStorage(cCtx.Context, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	var opts []syncserver.HandlerOption
	if cfg.RateLimit.Enabled() {
		limits := ratelimiter.NewMemoryStore()
		defer limits.Close()
		limiter, err := ratelimiter.New(limits, cfg.RateLimit)
		if err != nil {
			return err
		}
		opts = append(opts, syncserver.WithRateLimit(limiter))
	}

	srv := syncserver.NewServer(cfg, syncserver.NewHandler(st, log, opts...), log)
	log.InfoContext(cCtx.Context, "starting", logger.Storage(cfg.Storage))
	return srv.Run(cCtx.Context)
}

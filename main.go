package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/soocke/leaf-health-go/app"
	"github.com/soocke/leaf-health-go/app/headless"
	"github.com/soocke/leaf-health-go/config"
	"github.com/soocke/leaf-health-go/domain/capture"
	"github.com/soocke/leaf-health-go/domain/predict"
	"github.com/soocke/leaf-health-go/domain/scan"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the JSON config file")
	apiURL := flag.String("api", "", "prediction service base URL (overrides config and "+config.EnvAPIBaseURL+")")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	imagePath := flag.String("image", "", "analyse this image file without starting the GUI")
	check := flag.Bool("check", false, "check that the prediction service is reachable and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	bootLogger := NewLogger(slog.LevelInfo)
	if err != nil {
		bootLogger.Warn("config load failed, using defaults", "path", *cfgPath, "error", err)
	}
	cfg.ApplyEnv()
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *debugFlag {
		cfg.Debug = true
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	if *check || *imagePath != "" {
		os.Exit(runHeadless(cfg, newLoggerTo(os.Stderr, level), *imagePath, *check))
	}
	logger := NewLogger(level)

	c, err := app.BuildContainer(cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application := app.NewApp("Cocoa Leaf Health", 720, 640, c)
	application.Start()
}

func runHeadless(cfg *config.Config, logger *slog.Logger, path string, check bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	client, err := predict.NewClient(cfg.APIBaseURL, predict.NewHTTPClient(cfg.RequestTimeout()), logger)
	if err != nil {
		logger.Error("prediction client", "error", err)
		return 2
	}
	if check {
		if err := headless.Check(ctx, client, client.BaseURL(), os.Stdout); err != nil {
			logger.Error("health check failed", "error", err)
			return 1
		}
		if path == "" {
			return 0
		}
	}
	ctrl := scan.NewController(client, logger)
	defer ctrl.Close()
	err = headless.Run(ctx, capture.NewFileSelector(cfg.MaxUploadBytes, logger), ctrl, path, os.Stdout, logger)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, headless.ErrNotImage):
		logger.Error("invalid input", "error", err)
		return 2
	default:
		logger.Error("scan failed", "error", err)
		return 1
	}
}

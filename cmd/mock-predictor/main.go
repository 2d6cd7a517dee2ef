// Command mock-predictor serves the leaf prediction HTTP contract backed by a
// colour heuristic, for running the client without the model server.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soocke/leaf-health-go/assets"
	"github.com/soocke/leaf-health-go/predictserver"
)

func main() {
	addr := flag.String("addr", getEnv("PREDICT_ADDR", ":8000"), "listen address")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	labels, err := assets.Labels()
	if err != nil {
		logger.Error("load labels", "error", err)
		os.Exit(1)
	}
	srv := predictserver.New(predictserver.NewColorClassifier(labels.Labels), labels, logger)
	server := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock predictor listening", "addr", *addr, "labels", len(labels.Labels))
	if err := predictserver.Serve(server, 10*time.Second, logger, nil, nil); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Package main is the entry point for the code execution service.
package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ataljudge/executor/internal/executor"
	"github.com/ataljudge/executor/internal/executor/local"
	"github.com/ataljudge/executor/internal/metrics"
	"github.com/ataljudge/executor/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	}))

	port := 3000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	execCfg := local.DefaultConfig()
	if root := os.Getenv("WORKSPACE_ROOT"); root != "" {
		execCfg.WorkspaceRoot = root
	}
	if maxOut := os.Getenv("MAX_OUTPUT_BYTES"); maxOut != "" {
		n, err := strconv.ParseInt(maxOut, 10, 64)
		if err != nil || n <= 0 {
			logger.Error("invalid MAX_OUTPUT_BYTES value", slog.String("value", maxOut))
			os.Exit(1)
		}
		execCfg.MaxOutputBytes = n
	}
	if par := os.Getenv("BATCH_PARALLELISM"); par != "" {
		n, err := strconv.Atoi(par)
		if err != nil || n <= 0 {
			logger.Error("invalid BATCH_PARALLELISM value", slog.String("value", par))
			os.Exit(1)
		}
		execCfg.BatchParallelism = n
	}

	languages := executor.BuiltinLanguages()
	if path := os.Getenv("LANGUAGES_FILE"); path != "" {
		if err := languages.MergeFile(path); err != nil {
			logger.Error("failed to load languages file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("loaded languages file", slog.String("path", path))
	}

	stats := metrics.New()
	exec, err := local.New(execCfg, languages, logger, stats)
	if err != nil {
		logger.Error("failed to create executor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("executor ready",
		slog.String("workspaceRoot", execCfg.WorkspaceRoot),
		slog.Int64("maxOutputBytes", execCfg.MaxOutputBytes),
	)

	srv := server.New(server.Config{Port: port}, logger, exec, stats)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

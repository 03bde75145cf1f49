package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/matchsync/internal/app"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

func main() {
	days := flag.Int("days", 7, "number of past days to re-fetch, 1..365")
	competitions := flag.Bool("competitions", false, "sync the competition catalogue before the backfill")
	flag.Parse()
	os.Exit(run(*days, *competitions))
}

func run(days int, competitions bool) int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	logger := logging.NewConsole(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ing, err := app.NewIngestion(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		if err := ing.Close(context.Background()); err != nil {
			logger.Error("close ingestion", "error", err)
		}
	}()

	if competitions {
		if code := report(ing.Orchestrator.SyncCompetitions(ctx)); code != 0 {
			return code
		}
	}
	return report(ing.Orchestrator.Backfill(ctx, days))
}

func report(summary usecase.RunSummary) int {
	out, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err == nil {
		fmt.Println(string(out))
	}

	switch summary.Status {
	case usecase.RunStatusFailed, usecase.RunStatusSkipped:
		return 1
	default:
		return 0
	}
}

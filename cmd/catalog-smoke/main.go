package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/order-lifecycle/internal/catalog"
	"github.com/corray333/order-lifecycle/internal/catalog/smoke"
	"github.com/corray333/order-lifecycle/internal/config"
	"github.com/spf13/viper"
)

func main() {
	config.MustInit("catalog-smoke")

	if !run() {
		os.Exit(1)
	}
}

// run executes the smoke scenarios, prints the report and reports success.
func run() bool {
	timeout := 5 * time.Minute
	if seconds := viper.GetInt("catalog.run_timeout_seconds"); seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := smoke.NewRunner(catalog.MustNewClient()).Run(ctx)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		slog.Error("Failed to write report", "error", err)
	}

	if !report.Passed() {
		slog.Error("Catalog smoke run failed")
		return false
	}
	slog.Info("Catalog smoke run passed")

	return true
}

// Package main runs the analysis HTTP service: transfer fetching,
// the analysis pipeline, and persisted results behind a JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"conversion-insight/internal/normalization"
	"conversion-insight/internal/observability"
	"conversion-insight/internal/pipeline"
	"conversion-insight/internal/pricing"
	"conversion-insight/internal/server"
	"conversion-insight/internal/storage"
	chstore "conversion-insight/internal/storage/clickhouse"
	"conversion-insight/internal/storage/memory"
	"conversion-insight/internal/storage/migrations"
	pgstore "conversion-insight/internal/storage/postgres"
	"conversion-insight/internal/transfers"
)

const rateCacheEntries = 8192

func main() {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("TRANSFER_RPC_ENDPOINT"), "Transfer API JSON-RPC endpoint (optional; requests must carry transfers inline without it)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	rateSeed := flag.Int64("rate-seed", pipeline.DefaultRateSeed, "Seed for the synthetic rate model")
	timestampPolicy := flag.String("missing-timestamp-policy", "current-time", "Handling of transfers without timestamps: current-time, exclude, sort-last")
	logJSON := flag.Bool("log-json", false, "Log as JSON instead of console output")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	logger := setupLogger(*logJSON, *logLevel)

	policy, err := parseTimestampPolicy(*timestampPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid flag")
	}

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal().Msg("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("")

	analyses, archive, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("create stores")
	}
	defer cleanup()

	rates := pricing.NewCachingSource(pricing.NewSyntheticModel(*rateSeed), rateCacheEntries)

	analyzer := pipeline.NewAnalyzer(pipeline.Options{
		Rates:                  rates,
		MissingTimestampPolicy: policy,
		Metrics:                metrics,
	})

	var fetcher server.TransferFetcher
	if *rpcEndpoint != "" {
		fetcher = transfers.NewClient(*rpcEndpoint, transfers.WithMetrics(metrics))
		logger.Info().Str("endpoint", *rpcEndpoint).Msg("Transfer source configured")
	} else {
		logger.Info().Msg("No transfer source configured; requests must carry transfers inline")
	}

	srv := server.New(server.Config{
		Addr:     *addr,
		Log:      logger,
		Analyzer: analyzer,
		Analyses: analyses,
		Archive:  archive,
		Fetcher:  fetcher,
		Metrics:  metrics,
	})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Initiating graceful shutdown")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		go func() {
			// Second signal forces immediate exit
			select {
			case sig := <-sigCh:
				logger.Warn().Str("signal", sig.String()).Msg("Forcing immediate shutdown")
				os.Exit(1)
			case <-done:
			}
		}()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Shutdown error")
		}
		close(done)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("Server error")
	}

	<-done
	logger.Info().Msg("Shutdown complete")
}

// createStores wires the persistence layer, running migrations on real
// backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.AnalysisStore, storage.TransferArchiveStore, func(), error) {
	if useMemory {
		return memory.NewAnalysisStore(), memory.NewTransferArchiveStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		pool.Close()
		conn.Close()
		return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	cleanup := func() {
		pool.Close()
		conn.Close()
	}
	return pgstore.NewAnalysisStore(pool), chstore.NewTransferArchiveStore(conn), cleanup, nil
}

func setupLogger(jsonOut bool, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if jsonOut {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(lvl).With().Timestamp().Logger()
}

func parseTimestampPolicy(raw string) (normalization.MissingTimestampPolicy, error) {
	switch strings.ToLower(raw) {
	case "current-time":
		return normalization.UseCurrentTime, nil
	case "exclude":
		return normalization.ExcludeEvent, nil
	case "sort-last":
		return normalization.SortLast, nil
	default:
		return 0, fmt.Errorf("unknown missing-timestamp-policy %q", raw)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

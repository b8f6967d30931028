// Package main watches wallets for live transfers over WebSocket and
// archives them to ClickHouse, so later analyses can run without
// refetching history.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/observability"
	"conversion-insight/internal/storage"
	chstore "conversion-insight/internal/storage/clickhouse"
	"conversion-insight/internal/storage/memory"
	"conversion-insight/internal/storage/migrations"
	"conversion-insight/internal/transfers"
)

// flushInterval bounds how long a received transfer waits before being
// written to the archive.
const flushInterval = 10 * time.Second

// flushBatchSize triggers an early flush once this many transfers queue up.
const flushBatchSize = 100

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	wsEndpoint := flag.String("ws-endpoint", os.Getenv("TRANSFER_WS_ENDPOINT"), "Transfer API WebSocket endpoint")
	wallets := flag.String("wallets", "", "Comma-separated wallet addresses to watch")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of ClickHouse")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")

	flag.Parse()

	logger := setupLogger(*logLevel)

	if *wsEndpoint == "" {
		logger.Fatal().Msg("--ws-endpoint is required")
	}
	walletList := splitWallets(*wallets)
	if len(walletList) == 0 {
		logger.Fatal().Msg("--wallets is required")
	}
	if !*useMemory && *clickhouseDSN == "" {
		logger.Fatal().Msg("--clickhouse-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
	}()

	metrics := observability.NewMetrics("")

	archive, cleanup, err := createArchive(ctx, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatal().Err(err).Msg("create archive store")
	}
	defer cleanup()

	sub, err := transfers.NewWSSubscriber(ctx, *wsEndpoint, nil, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect websocket")
	}
	defer sub.Close()

	for _, wallet := range walletList {
		ch, err := sub.SubscribeWallet(ctx, wallet)
		if err != nil {
			logger.Fatal().Err(err).Str("wallet", wallet).Msg("subscribe")
		}
		go watchWallet(ctx, logger, archive, wallet, ch)
		logger.Info().Str("wallet", wallet).Msg("Watching wallet")
	}

	<-ctx.Done()
	logger.Info().Msg("Shutdown complete")
}

// watchWallet batches incoming transfers and flushes them to the archive.
func watchWallet(ctx context.Context, logger zerolog.Logger, archive storage.TransferArchiveStore, wallet string, ch <-chan domain.RawTransfer) {
	log := logger.With().Str("wallet", wallet).Logger()

	var pending []domain.RawTransfer
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := archive.InsertBulk(ctx, wallet, pending); err != nil {
			log.Error().Err(err).Int("count", len(pending)).Msg("archive flush failed")
			return
		}
		log.Info().Int("count", len(pending)).Msg("Archived transfers")
		pending = pending[:0]
	}

	for {
		select {
		case <-ctx.Done():
			// Final flush gets a short grace period past cancellation.
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if len(pending) > 0 {
				if err := archive.InsertBulk(flushCtx, wallet, pending); err != nil {
					log.Error().Err(err).Msg("final archive flush failed")
				}
			}
			cancel()
			return
		case t, ok := <-ch:
			if !ok {
				flush()
				return
			}
			pending = append(pending, t)
			if len(pending) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func createArchive(ctx context.Context, dsn string, useMemory bool) (storage.TransferArchiveStore, func(), error) {
	if useMemory {
		return memory.NewTransferArchiveStore(), func() {}, nil
	}

	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	return chstore.NewTransferArchiveStore(conn), func() { conn.Close() }, nil
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func splitWallets(raw string) []string {
	var out []string
	for _, w := range strings.Split(raw, ",") {
		w = strings.TrimSpace(w)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

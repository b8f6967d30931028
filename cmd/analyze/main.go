// Package main provides a one-shot CLI: analyze a wallet's conversion
// history from a JSON file or the transfer API and print the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/normalization"
	"conversion-insight/internal/pipeline"
	"conversion-insight/internal/pricing"
	"conversion-insight/internal/reporting"
	"conversion-insight/internal/transfers"
)

func main() {
	wallet := flag.String("wallet", "", "Wallet address to analyze (required)")
	input := flag.String("input", "", "Path to JSON file with raw transfers; '-' for stdin")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("TRANSFER_RPC_ENDPOINT"), "Transfer API JSON-RPC endpoint (used when --input is not set)")
	balance := flag.Float64("balance", 0, "Current stablecoin balance")
	currency := flag.String("currency", "USD", "Fiat currency (USD, EUR)")
	format := flag.String("format", "markdown", "Output format: markdown, json, csv")
	seed := flag.Int64("seed", pipeline.DefaultRateSeed, "Seed for the synthetic rate model")
	timestampPolicy := flag.String("missing-timestamp-policy", "current-time", "Handling of transfers without timestamps: current-time, exclude, sort-last")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")

	flag.Parse()

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "--wallet is required")
		flag.Usage()
		os.Exit(2)
	}
	if *input == "" && *rpcEndpoint == "" {
		fmt.Fprintln(os.Stderr, "either --input or --rpc-endpoint is required")
		os.Exit(2)
	}

	policy, err := parseTimestampPolicy(*timestampPolicy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rawTransfers, err := loadTransfers(ctx, *input, *rpcEndpoint, *wallet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load transfers: %v\n", err)
		os.Exit(1)
	}

	analyzer := pipeline.NewAnalyzer(pipeline.Options{
		Rates:                  pricing.NewSyntheticModel(*seed),
		MissingTimestampPolicy: policy,
	})

	outcome := analyzer.Analyze(ctx, pipeline.Request{
		Wallet:    *wallet,
		Transfers: rawTransfers,
		Balance:   *balance,
		Currency:  *currency,
	})

	if err := render(os.Stdout, outcome, *format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadTransfers reads transfers from a file, stdin, or the transfer API.
func loadTransfers(ctx context.Context, input, rpcEndpoint, wallet string) ([]domain.RawTransfer, error) {
	if input == "" {
		client := transfers.NewClient(rpcEndpoint)
		return client.FetchOutbound(ctx, wallet, transfers.FetchParams{})
	}

	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, err
	}

	var rawTransfers []domain.RawTransfer
	if err := json.Unmarshal(data, &rawTransfers); err != nil {
		return nil, fmt.Errorf("parse transfers: %w", err)
	}
	return rawTransfers, nil
}

func render(out *os.File, outcome *domain.AnalysisOutcome, format string) error {
	switch strings.ToLower(format) {
	case "markdown":
		fmt.Fprint(out, reporting.RenderMarkdown(outcome))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	case "csv":
		fmt.Fprint(out, reporting.RenderScheduleCSV(outcome.Simulation))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
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

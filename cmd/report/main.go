// Package main renders a Markdown report for a wallet from stored
// analyses, including a score trend across past runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"conversion-insight/internal/reporting"
	"conversion-insight/internal/storage"
	pgstore "conversion-insight/internal/storage/postgres"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	wallet := flag.String("wallet", "", "Wallet address to report on (required)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	output := flag.String("output", "", "Output file; stdout when empty")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")

	flag.Parse()

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "--wallet is required")
		flag.Usage()
		os.Exit(2)
	}
	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "--postgres-dsn is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	gen := reporting.NewGenerator(pgstore.NewAnalysisStore(pool))

	md, err := gen.Generate(ctx, *wallet)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "no analyses stored for wallet %s\n", *wallet)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "generate report: %v\n", err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(md)
		return
	}
	if err := os.WriteFile(*output, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", *output)
}

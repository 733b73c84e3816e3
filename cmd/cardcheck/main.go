package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	config "github.com/avvvet/cardcheck-services/configs"
	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/binlist"
	svcconfig "github.com/avvvet/cardcheck-services/internal/checksvc/config"
	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/paypal"
	"github.com/avvvet/cardcheck-services/internal/probe"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "run":
		code := runBatch(ctx, os.Args[2:])
		stop()
		os.Exit(code)
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runBatch(ctx context.Context, args []string) int {
	log.SetOutput(os.Stderr)
	config.LoadEnv("cardcheck")

	cfg, err := svcconfig.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", err)
		return 2
	}

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var inputPath string
	var validPath string
	var invalidPath string
	var workers int

	fs.StringVar(&inputPath, "input", "", "Input CSV file path (card_number, exp_month, exp_year, cvc)")
	fs.StringVar(&validPath, "valid", "valid_cards.csv", "Output CSV for cards that can purchase")
	fs.StringVar(&invalidPath, "invalid", "invalid_cards.csv", "Output CSV for every other card")
	fs.IntVar(&workers, "workers", cfg.Workers, "Number of cards evaluated at once (env: BATCH_WORKERS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "run requires --input")
		return 2
	}

	payClient, err := paypal.NewClient(cfg.PayPal)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "payment processor config error: %s\n", err)
		return 2
	}
	prober := probe.New(payClient, binlist.NewResolver(cfg.Binlist))
	processor := batch.NewProcessor(prober, batch.Options{Workers: workers})

	records, err := readInput(inputPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "read %s: %s\n", inputPath, err)
		return 1
	}

	valid, invalid := processor.Process(ctx, records)

	if err := writeOutput(validPath, valid); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write %s: %s\n", validPath, err)
		return 1
	}
	if err := writeOutput(invalidPath, invalid); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write %s: %s\n", invalidPath, err)
		return 1
	}

	_, _ = fmt.Fprintf(os.Stdout, "processed %d cards: %d valid -> %s, %d invalid -> %s\n",
		len(records), len(valid), validPath, len(invalid), invalidPath)
	return 0
}

func readInput(path string) ([]models.CardRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return batch.ReadRecords(f)
}

func writeOutput(path string, reports []models.CardReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := batch.WriteReports(f, reports); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "cardcheck validates a CSV of cards and splits it by purchase capability.")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  cardcheck run --input cards.csv [--valid valid_cards.csv] [--invalid invalid_cards.csv] [--workers N]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Payment processor and lookup settings come from the environment (PAYPAL_*, BINLIST_*).")
}

// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

// Command sync runs one full data.gov.in sync against the configured store
// and prints a summary. It reads the same configuration as the server.
//
//	sync                         fetch every financial year from sync.start_year
//	sync -years 2023-2024        fetch only the listed years (comma-separated)
//	sync -reset                  delete every record first
//	sync -backfill               fill missing record dates and exit
//
// Exit status is 1 when configuration or the store cannot be loaded, and 2
// when the sync itself fails or some years could not be fetched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mgnrega-dashboard/internal/bootstrap"
	"github.com/tomtom215/mgnrega-dashboard/internal/config"
	"github.com/tomtom215/mgnrega-dashboard/internal/fiscal"
	"github.com/tomtom215/mgnrega-dashboard/internal/logging"
	"github.com/tomtom215/mgnrega-dashboard/internal/registry"
	"github.com/tomtom215/mgnrega-dashboard/internal/store"
	"github.com/tomtom215/mgnrega-dashboard/internal/sync"
)

const (
	exitConfig = 1
	exitSync   = 2
)

type options struct {
	reset    bool
	backfill bool
	years    []string
	jsonOut  bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitConfig)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(exitConfig)
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, opts, os.Stdout))
}

func parseFlags(args []string) (options, error) {
	var (
		opts  options
		years string
	)
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	fs.BoolVar(&opts.reset, "reset", false, "delete all stored records before syncing")
	fs.BoolVar(&opts.backfill, "backfill", false, "only backfill missing record dates")
	fs.StringVar(&years, "years", "", "comma-separated financial years to fetch, e.g. 2023-2024,2024-2025")
	fs.BoolVar(&opts.jsonOut, "json", false, "print the summary as JSON")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.reset && opts.backfill {
		return opts, errors.New("-reset and -backfill are mutually exclusive")
	}

	for _, y := range strings.Split(years, ",") {
		y = strings.TrimSpace(y)
		if y == "" {
			continue
		}
		if _, err := fiscal.ParseFinancialYear(y); err != nil {
			return opts, fmt.Errorf("invalid -years entry %q: %w", y, err)
		}
		opts.years = append(opts.years, y)
	}
	return opts, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, out io.Writer) int {
	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store error: %v\n", err)
		return exitConfig
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	if opts.backfill {
		n, err := st.BackfillRecordDates(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
			return exitSync
		}
		fmt.Fprintf(out, "Backfilled record dates on %d records\n", n)
		return 0
	}

	source := bootstrap.NewSource(&cfg.DataGov)
	if !source.Configured() {
		fmt.Fprintln(os.Stderr, "configuration error: DATA_GOV_API_KEY, DATA_GOV_API_BASE and DATA_GOV_RESOURCE_ID must be set")
		return exitConfig
	}

	var syncOpts []sync.Option
	if len(opts.years) > 0 {
		syncOpts = append(syncOpts, sync.WithYears(opts.years))
	}
	manager, err := sync.NewManager(source, st, registry.Default(), &cfg.Sync, syncOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return exitConfig
	}

	if opts.reset {
		n, err := st.DeleteAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
			return exitSync
		}
		logging.Warn().Int64("deleted", n).Msg("Deleted all stored records")
	}

	res, err := manager.RunFullSync(ctx)
	if res != nil {
		printSummary(ctx, out, st, res, opts.jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync failed: %v\n", err)
		return exitSync
	}
	if len(res.YearsFailed) > 0 {
		return exitSync
	}
	return 0
}

func printSummary(ctx context.Context, out io.Writer, st store.Store, res *sync.Result, asJSON bool) {
	total, err := st.Count(ctx)
	if err != nil {
		total = -1
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(struct {
			*sync.Result
			TotalRecords int64 `json:"totalRecords"`
		}{res, total})
		return
	}

	fmt.Fprintf(out, "Sync %s finished in %dms\n", res.RunID, res.DurationMs)
	fmt.Fprintf(out, "  years attempted: %s\n", strings.Join(res.YearsAttempted, ", "))
	if len(res.YearsFailed) > 0 {
		fmt.Fprintf(out, "  years failed:    %s\n", strings.Join(res.YearsFailed, ", "))
	}
	if len(res.YearsEmpty) > 0 {
		fmt.Fprintf(out, "  years empty:     %s\n", strings.Join(res.YearsEmpty, ", "))
	}
	fmt.Fprintf(out, "  fetched:   %d\n", res.RecordsFetched)
	fmt.Fprintf(out, "  upserted:  %d\n", res.RecordsUpserted)
	fmt.Fprintf(out, "  unmatched: %d\n", res.RecordsUnmatched)
	fmt.Fprintf(out, "  malformed: %d\n", res.RecordsMalformed)
	fmt.Fprintf(out, "  failed:    %d\n", res.RecordsFailed)
	if len(res.UnmatchedNames) > 0 {
		fmt.Fprintf(out, "  unmatched names: %s\n", strings.Join(res.UnmatchedNames, ", "))
	}
	if total >= 0 {
		fmt.Fprintf(out, "  total records in store: %d\n", total)
	}
}

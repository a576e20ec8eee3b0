// Package main provides the symbol-indexer CLI. It scans a source tree,
// queues one indexing task per (file, build configuration) and drains the
// queue into the on-disk symbol store.
//
// Usage:
//
//	symbol-indexer [flags] <src_dir>
//
// Build configurations come from INDEXER_CONFIGURATIONS (see internal/config);
// flags select a subset of them or evict configurations that went away.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"symbol-indexer/internal/config"
	"symbol-indexer/internal/diff"
	"symbol-indexer/internal/fileid"
	"symbol-indexer/internal/indexer"
	"symbol-indexer/internal/logger"
	"symbol-indexer/internal/scheduler"
	"symbol-indexer/internal/symbols"
	"symbol-indexer/internal/symstore"
	"symbol-indexer/internal/taskqueue"
	"symbol-indexer/internal/walk"
)

type cliConfig struct {
	srcDir       string
	remove       string
	only         string
	showChanges  bool
	dryRun       bool
	diffContext  int
	maxDiffLines int
	workers      int
}

// splitCSV converts a comma-separated list into a slice, dropping empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 8)
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			p := s[start:i]
			if p != "" {
				out = append(out, p)
			}
			start = i + 1
		}
	}
	return out
}

func parseFlags(args []string) (cliConfig, error) {
	var cli cliConfig
	fs := flag.NewFlagSet("symbol-indexer", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] <src_dir>\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	fs.StringVar(&cli.remove, "remove", "", "comma-separated configurations to evict from the queue and the store")
	fs.StringVar(&cli.only, "only", "", "comma-separated configurations to index (default: all configured)")
	fs.BoolVar(&cli.showChanges, "show-changes", false, "print a unified diff of each file's symbols when they change")
	fs.BoolVar(&cli.dryRun, "dry-run", false, "list queued tasks without running them")
	fs.IntVar(&cli.diffContext, "diff-context", 2, "context lines in -show-changes diffs")
	fs.IntVar(&cli.maxDiffLines, "max-diff-lines", 2000, "max symbol lines per diff (0 = no limit)")
	fs.IntVar(&cli.workers, "workers", 0, "parallel indexing tasks (0 = INDEXER_WORKERS)")
	if err := fs.Parse(args); err != nil {
		return cli, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return cli, errors.New("expected exactly one <src_dir>")
	}
	cli.srcDir = filepath.Clean(fs.Arg(0))
	return cli, nil
}

// selectParts keeps the configurations named in only (all when empty) and
// drops the ones being removed.
func selectParts(configs []config.Configuration, only, remove []string, files []walk.File) []indexer.ProjectPart {
	var parts []indexer.ProjectPart
	for _, c := range configs {
		if len(only) > 0 && !slices.Contains(only, c.Name) {
			continue
		}
		if slices.Contains(remove, c.Name) {
			continue
		}
		parts = append(parts, indexer.ProjectPart{Name: c.Name, Defines: c.Defines, Files: files})
	}
	return parts
}

func openStore(cfg *config.Config) (*symstore.Store, error) {
	if cfg.InMemory {
		return symstore.OpenInMemory()
	}
	return symstore.Open(cfg.StorePath)
}

// changePrinter writes symbol diffs to w. Tasks run concurrently, so
// writes are serialized.
func changePrinter(w io.Writer, opt diff.Options) indexer.ChangeFunc {
	var mu sync.Mutex
	return func(config, path string, before, after []symbols.Symbol) {
		body, _ := diff.Symbols(config, path, before, after, opt)
		if body == "" {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(w, body)
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "metrics server stopped", "addr", addr, "error", err)
		}
	}()
	slog.InfoContext(ctx, "serving metrics", "addr", addr)
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func run(ctx context.Context, cli cliConfig, cfg *config.Config, stdout io.Writer) error {
	configs, err := cfg.BuildConfigurations()
	if err != nil {
		return err
	}
	files, err := walk.Collect(cli.srcDir, walk.Options{
		Extensions:   cfg.Extensions,
		Exclude:      cfg.Exclude,
		MaxFileBytes: cfg.MaxFileBytes,
		UseGitignore: cfg.UseGitignore,
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", cli.srcDir, err)
	}
	slog.InfoContext(ctx, "files collected", "root", cli.srcDir, "files", len(files))

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open symbol store: %w", err)
	}
	defer store.Close()

	queue := taskqueue.NewGuarded()
	ids := fileid.NewCache()
	var opts []indexer.Option
	if cli.showChanges {
		opts = append(opts, indexer.WithChangeFunc(changePrinter(stdout, diff.Options{
			MaxLines: cli.maxDiffLines,
			Context:  cli.diffContext,
		})))
	}
	ix := indexer.New(queue, ids, store, opts...)

	remove := splitCSV(cli.remove)
	parts := selectParts(configs, splitCSV(cli.only), remove, files)
	ix.UpdateProjectParts(ctx, parts)
	if len(remove) > 0 {
		if err := ix.RemoveProjectParts(ctx, remove); err != nil {
			return err
		}
	}

	if cli.dryRun {
		for _, t := range queue.Tasks() {
			name, _ := queue.ConfigName(t.ConfigID)
			p, _ := ids.Path(t.FileID)
			fmt.Fprintf(stdout, "%s\t%s\n", name, p)
		}
		return nil
	}

	reg := prometheus.NewRegistry()
	metrics := scheduler.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		stop := serveMetrics(ctx, cfg.MetricsAddr, reg)
		defer stop()
	}

	workers := cfg.Workers
	if cli.workers > 0 {
		workers = cli.workers
	}
	newCollector := func() taskqueue.SymbolsCollector { return symbols.NewCollector() }
	sched := scheduler.New(queue, ids, store, newCollector, workers, metrics)
	stats, err := sched.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "indexed %d files across %d configurations: %d tasks, %d failed\n",
		len(files), len(parts), stats.Executed, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d indexing tasks failed", stats.Failed, stats.Executed)
	}
	return nil
}

func main() {
	cli, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR: config:", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	slog.SetDefault(logger.New(os.Stderr, level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRunID(ctx, logger.NewRunID())

	if err := run(ctx, cli, cfg, os.Stdout); err != nil {
		slog.ErrorContext(ctx, "indexing failed", "error", err)
		stop()
		os.Exit(1)
	}
}

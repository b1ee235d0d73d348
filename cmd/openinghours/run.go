package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rendis/openinghours/internal/config"
	"github.com/rendis/openinghours/internal/engine/adapter"
	"github.com/rendis/openinghours/internal/session"
	"github.com/rendis/openinghours/internal/tui"
)

const autoLog = "auto"

func runPoll(args []string) error {
	var (
		configPath, outputDir, dbPath, logPath string
		apiKey, lang, proxy, numbering         string
		concurrency                            int
		memory, debug                          bool
	)

	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "openinghours.json", "Path to the JSON config file")
	fs.StringVar(&outputDir, "output", ".", "Directory for the state .db and .log files")
	fs.StringVar(&dbPath, "db", "", "State database path (default: new timestamped file in -output)")
	fs.StringVar(&logPath, "log", autoLog, `Log file path ("auto" = next to the db, "" = console)`)
	fs.StringVar(&apiKey, "api-key", "", "Override the configured API key")
	fs.StringVar(&lang, "lang", "", "Override the details language")
	fs.StringVar(&proxy, "proxy", "", "HTTP/SOCKS5 proxy URL")
	fs.StringVar(&numbering, "numbering", "", "Slot numbering: legacy or sequential")
	fs.IntVar(&concurrency, "concurrency", 0, "Max shops processed at once")
	fs.BoolVar(&memory, "memory", false, "Keep state in memory only")
	fs.BoolVar(&debug, "debug", false, "Verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: openinghours run [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  openinghours run -config shops.json -output ./state\n")
		fmt.Fprintf(os.Stderr, "  openinghours run -config shops.json -db ./state/shops.db -log \"\"\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if apiKey != "" {
		os.Setenv(config.APIKeyEnv, apiKey)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if lang != "" {
		cfg.Language = lang
	}
	if proxy != "" {
		cfg.Proxy = proxy
	}
	if numbering != "" {
		cfg.SlotNumbering = numbering
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	params := cfg.RunParams()
	params.Debug = debug

	now := time.Now()
	defDB, defLog := session.Paths(outputDir, now)
	if dbPath == "" {
		dbPath = defDB
	}
	if logPath == autoLog {
		logPath = defLog
	}
	params.DBPath = dbPath

	sess, err := session.Open(session.Options{
		DBPath:  dbPath,
		Memory:  memory,
		LogPath: logPath,
		Debug:   debug,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	if logPath != "" {
		fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)
	}

	// Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "Polling %d shops (concurrency=%d, numbering=%s)\n",
		len(params.Shops), params.Concurrency, params.SlotNumbering)

	var outMu sync.Mutex
	stats, err := sess.Run(ctx, params, &adapter.RunOptions{
		OnShop: func(r adapter.ShopResult) {
			outMu.Lock()
			defer outMu.Unlock()
			fmt.Fprintf(os.Stderr, "  [%d] %-30s %s\n", r.Shop.Index, r.Shop.Name, describe(r))
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("polling: %w", err)
	}

	duration := time.Since(now).Truncate(time.Second)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Opening Hours Poll Complete\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Run:        %s\n", sess.ID)
	fmt.Fprintf(os.Stderr, "  Shops:      %d/%d\n", stats.ShopsDone.Load(), stats.ShopsTotal.Load())
	fmt.Fprintf(os.Stderr, "  Cached id:  %d\n", stats.Cached.Load())
	fmt.Fprintf(os.Stderr, "  Resolved:   %d\n", stats.Resolved.Load())
	fmt.Fprintf(os.Stderr, "  No match:   %d\n", stats.NoMatch.Load())
	fmt.Fprintf(os.Stderr, "  Stored:     %d\n", stats.DetailsStored.Load())
	fmt.Fprintf(os.Stderr, "  Errors:     %d\n", stats.Errors.Load())
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", duration)
	if !memory {
		fmt.Fprintf(os.Stderr, "  Database:   %s\n", dbPath)
	}
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")

	if !memory {
		tui.SaveRecent(dbPath, configPath)
	}
	return nil
}

func describe(r adapter.ShopResult) string {
	switch r.Outcome {
	case adapter.OutcomeStored:
		if r.Cached {
			return "stored (cached id)"
		}
		return "stored"
	case adapter.OutcomeNoMatch:
		return "no match"
	default:
		return "failed: " + r.Err.Error()
	}
}

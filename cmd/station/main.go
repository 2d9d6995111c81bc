package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"scraper-station/pkg/bots"
	"scraper-station/pkg/bots/depositreport"
	"scraper-station/pkg/bots/deposits"
	"scraper-station/pkg/bots/hackernews"
	"scraper-station/pkg/bots/sitemapper"
	"scraper-station/pkg/config"
	"scraper-station/pkg/fetch"
	"scraper-station/pkg/storage"
	"scraper-station/pkg/utils"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		runList(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	case "version":
		fmt.Printf("station %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `station - Web scraping bot station

Usage:
  station <command> [options]

Commands:
  list     List all available bots
  run      Run a bot: station run [options] <bot> [params...]
  history  Show recorded bot runs
  version  Show version info

Run 'station <command> -h' for command-specific help.`)
}

// setupLogger creates the application logger at the requested level
func setupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// mustLoadConfig loads, validates and defaults the config, exiting on error
func mustLoadConfig(path string, logger *logrus.Logger) *config.AppConfig {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("Config file '%s' error: %v", path, err)
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}
	return cfg
}

// buildRegistry wires every bot with its collaborators. Report-producing
// bots write to output; markdown switches the site mapper's report format.
func buildRegistry(cfg *config.AppConfig, fetcher fetch.Getter, snapshots *storage.SnapshotStore, output io.Writer, markdown bool, log *logrus.Entry) *bots.Registry {
	registry := bots.NewRegistry()
	registry.Register(sitemapper.New(fetcher, cfg.Mapper, output, markdown, log))
	registry.Register(hackernews.New(fetcher, snapshots, log))
	registry.Register(deposits.New(fetcher, snapshots, cfg.Deposits, log))
	registry.Register(depositreport.New(snapshots, output, log))
	return registry
}

// runList handles the list subcommand
func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	logLevel := fs.String("loglevel", "warn", "Log level (debug, info, warn, error, fatal)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := setupLogger(*logLevel)
	cfg := mustLoadConfig(*configFile, logger)

	entry := logrus.NewEntry(logger)
	httpClient := fetch.NewClient(cfg.HTTPClientSettings, logger)
	fetcher := fetch.NewFetcher(httpClient, cfg, entry)
	snapshots := storage.NewSnapshotStore(cfg.DataDir, entry)
	registry := buildRegistry(cfg, fetcher, snapshots, os.Stdout, false, entry)

	fmt.Println("\nAvailable Bots:" + strings.Repeat("=", 50))
	for _, m := range registry.List() {
		fmt.Printf("\nName: %s\n", m.Name)
		fmt.Printf("Description: %s\n", m.Description)
		fmt.Printf("Author: %s\n", m.Author)
		fmt.Printf("Version: %s\n", m.Version)
		ops := "No commands defined"
		if len(m.Operations) > 0 {
			ops = strings.Join(m.Operations, ", ")
		}
		fmt.Printf("Available commands: %s\n", ops)
		fmt.Println(strings.Repeat("-", 60))
	}
}

// runRun handles the run subcommand
func runRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	reportFormat := fs.String("report", "text", "Report format for report-producing bots (text, markdown)")
	noHistory := fs.Bool("no-history", false, "Do not record this run in the history database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: station run [options] <bot> [params...]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  station run site_mapper https://example.com 2 true\n")
		fmt.Fprintf(os.Stderr, "  station run -report markdown site_mapper https://example.com\n")
		fmt.Fprintf(os.Stderr, "  station run hackernews_top 25\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: bot name is required")
		fs.Usage()
		os.Exit(1)
	}
	botName := fs.Arg(0)
	params := fs.Args()[1:]

	logger := setupLogger(*logLevel)
	cfg := mustLoadConfig(*configFile, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entry := logrus.NewEntry(logger)
	httpClient := fetch.NewClient(cfg.HTTPClientSettings, logger)
	fetcher := fetch.NewFetcher(httpClient, cfg, entry)
	snapshots := storage.NewSnapshotStore(cfg.DataDir, entry)
	registry := buildRegistry(cfg, fetcher, snapshots, os.Stdout, *reportFormat == "markdown", entry)

	bot, err := registry.Get(botName)
	if err != nil {
		logger.Errorf("Error running bot: %v", err)
		os.Exit(1)
	}

	logger.Infof("Running bot: %s", botName)
	started := time.Now().UTC()
	result, runErr := bot.Run(ctx, params)
	duration := time.Since(started)

	var resultJSON json.RawMessage
	if result != nil {
		resultJSON, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Errorf("Failed to encode bot result: %v", err)
		} else {
			fmt.Printf("Bot completed. Result: %s\n", resultJSON)
		}
	}
	if runErr != nil {
		logger.Errorf("Bot '%s' failed: %v", botName, runErr)
	}

	if !*noHistory {
		recordRun(cfg, entry, &storage.RunRecord{
			Bot:           botName,
			Params:        params,
			StartedAt:     started,
			Duration:      duration,
			Status:        runStatus(runErr),
			ErrorCategory: runCategory(runErr),
			Result:        resultJSON,
		})
	}

	if runErr != nil {
		os.Exit(1)
	}
}

func runStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func runCategory(err error) string {
	if err == nil {
		return ""
	}
	return utils.CategorizeError(err)
}

// recordRun persists a run record; history failures never fail the run
func recordRun(cfg *config.AppConfig, log *logrus.Entry, rec *storage.RunRecord) {
	history, err := storage.NewHistoryStore(cfg.StateDir, log)
	if err != nil {
		log.Warnf("Run history unavailable: %v", err)
		return
	}
	defer history.Close()

	if err := history.Record(rec); err != nil {
		log.Warnf("Failed to record run history: %v", err)
	}
}

// runHistory handles the history subcommand
func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	logLevel := fs.String("loglevel", "warn", "Log level (debug, info, warn, error, fatal)")
	botFilter := fs.String("bot", "", "Only show runs of this bot")
	limit := fs.Int("limit", 20, "Maximum number of runs to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := setupLogger(*logLevel)
	cfg := mustLoadConfig(*configFile, logger)

	history, err := storage.NewHistoryStore(cfg.StateDir, logrus.NewEntry(logger))
	if err != nil {
		logger.Fatalf("Failed to open run history: %v", err)
	}
	defer history.Close()

	// Fetch everything when filtering by bot so the limit applies to
	// matching runs, not to the raw scan.
	fetchLimit := *limit
	if *botFilter != "" {
		fetchLimit = 0
	}
	records, err := history.List(fetchLimit)
	if err != nil {
		logger.Fatalf("Failed to list run history: %v", err)
	}

	shown := 0
	for _, rec := range records {
		if *botFilter != "" && rec.Bot != *botFilter {
			continue
		}
		if *limit > 0 && shown >= *limit {
			break
		}
		category := ""
		if rec.ErrorCategory != "" {
			category = "  [" + rec.ErrorCategory + "]"
		}
		fmt.Printf("%s  %-22s  %-7s  %8s%s  %s\n",
			rec.StartedAt.Format(time.RFC3339), rec.Bot, rec.Status,
			rec.Duration.Round(time.Millisecond), category, rec.ID)
		shown++
	}
	if shown == 0 {
		fmt.Println("No recorded runs.")
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterachavez/focus-flicker-beta-f/internal/check"
	"github.com/peterachavez/focus-flicker-beta-f/internal/config"
	"github.com/peterachavez/focus-flicker-beta-f/internal/export"
	"github.com/peterachavez/focus-flicker-beta-f/internal/report"
	"github.com/peterachavez/focus-flicker-beta-f/internal/scoring"
	"github.com/peterachavez/focus-flicker-beta-f/internal/stats"
	"github.com/peterachavez/focus-flicker-beta-f/internal/store"
	"github.com/peterachavez/focus-flicker-beta-f/internal/trends"
	"github.com/peterachavez/focus-flicker-beta-f/internal/watch"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(cfg, os.Args[2:])

	case "import":
		cmdImport(cfg, os.Args[2:])

	case "watch":
		cmdWatch(cfg)

	case "list":
		cmdList(cfg)

	case "report":
		cmdReport(cfg, os.Args[2:])

	case "export":
		cmdExport(cfg, os.Args[2:])

	case "grant":
		cmdGrant(cfg, os.Args[2:])

	case "stats":
		cmdStats(cfg, os.Args[2:])

	case "trends":
		cmdTrends(cfg, os.Args[2:])

	case "check":
		rep := check.Run(cfg)
		fmt.Print(rep.Format())
		if rep.HasFailures() {
			os.Exit(1)
		}

	case "init":
		path, err := config.WriteDefault(cfg.DataDir)
		if err != nil {
			fatal("init: %v", err)
		}
		fmt.Printf("wrote %s\n", config.CompressHome(path))

	case "version":
		fmt.Printf("flicker v%s (focus-flicker)\n", version)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func cmdImport(cfg config.Config, args []string) {
	db := mustOpenStore(cfg)
	defer db.Close()

	if len(args) == 0 {
		n, err := watch.ImportDir(cfg.InboxDir, db, cfg)
		if err != nil {
			fatal("import: %v", err)
		}
		fmt.Printf("imported %d assessment(s)\n", n)
		return
	}

	for _, path := range args {
		res, err := watch.ImportFile(path, db, cfg)
		if err != nil {
			fatal("import: %v", err)
		}
		if res.Skipped {
			fmt.Printf("skipped %s (%s)\n", res.AssessmentID, res.Reason)
		} else {
			fmt.Printf("imported %s (score %d)\n", res.AssessmentID, res.Score)
		}
	}
}

func cmdWatch(cfg config.Config) {
	db := mustOpenStore(cfg)
	defer db.Close()

	w, err := watch.New(cfg, db)
	if err != nil {
		fatal("watch: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s (ctrl-c to stop)\n", config.CompressHome(cfg.InboxDir))
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		fatal("watch: %v", err)
	}
}

func cmdList(cfg config.Config) {
	db := mustOpenStore(cfg)
	defer db.Close()

	sums, err := db.List()
	if err != nil {
		fatal("list: %v", err)
	}
	if len(sums) == 0 {
		fmt.Println("no assessments stored")
		return
	}
	for _, s := range sums {
		fmt.Printf("%s  %-13s  score %3d  %s\n",
			s.CompletedAt.Format("2006-01-02 15:04"), s.Task, s.Score, s.AssessmentID)
	}
}

func cmdReport(cfg config.Config, args []string) {
	if len(args) < 1 {
		fatal("usage: flicker report <assessment-id> [--markdown] [--tier <name>]")
	}
	id := args[0]

	db := mustOpenStore(cfg)
	defer db.Close()

	sum, err := db.Get(id)
	if err != nil {
		fatal("report: %v", err)
	}
	tierName := flagValue(args[1:], "--tier")
	if tierName == "" {
		tierName, err = db.TierFor(id)
		if err != nil {
			fatal("report: %v", err)
		}
	}
	tier, err := report.ParseTier(tierName)
	if err != nil {
		fatal("report: %v", err)
	}

	if hasFlag(args[1:], "--markdown") {
		fmt.Print(report.Markdown(sum, tier))
		return
	}
	fmt.Print(report.Render(sum, tier))
}

func cmdExport(cfg config.Config, args []string) {
	if len(args) < 1 {
		fatal("usage: flicker export <assessment-id> [--out <file.csv>]")
	}
	id := args[0]

	db := mustOpenStore(cfg)
	defer db.Close()

	sum, err := db.Get(id)
	if err != nil {
		fatal("export: %v", err)
	}

	out := flagValue(args[1:], "--out")
	if out == "" {
		if err := export.WriteCSV(os.Stdout, sum); err != nil {
			fatal("export: %v", err)
		}
		return
	}

	f, err := os.Create(out)
	if err != nil {
		fatal("export: %v", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, sum); err != nil {
		fatal("export: %v", err)
	}
	fmt.Printf("wrote %s\n", out)
}

func cmdGrant(cfg config.Config, args []string) {
	if len(args) < 2 {
		fatal("usage: flicker grant <assessment-id> <free|starter|pro> [--ref <reference>]")
	}
	id := args[0]
	tier, err := report.ParseTier(args[1])
	if err != nil {
		fatal("grant: %v", err)
	}

	db := mustOpenStore(cfg)
	defer db.Close()

	if err := db.SetGrant(id, string(tier), flagValue(args[2:], "--ref")); err != nil {
		fatal("grant: %v", err)
	}
	fmt.Printf("granted %s access to %s\n", tier, id)
}

func cmdStats(cfg config.Config, args []string) {
	db := mustOpenStore(cfg)
	defer db.Close()

	sums, err := db.List()
	if err != nil {
		fatal("stats: %v", err)
	}
	task := parseTaskFlag(args)
	fmt.Print(stats.Format(stats.Compute(sums, task), task))
}

func cmdTrends(cfg config.Config, args []string) {
	db := mustOpenStore(cfg)
	defer db.Close()

	sums, err := db.List()
	if err != nil {
		fatal("trends: %v", err)
	}
	task := parseTaskFlag(args)
	weeks := 12
	if v := flagValue(args, "--weeks"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &weeks); err != nil {
			fatal("trends: bad --weeks value %q", v)
		}
	}
	fmt.Print(trends.Format(trends.Compute(sums, task, weeks)))
}

// parseTaskFlag resolves --task into a variant, or "" for all tasks.
func parseTaskFlag(args []string) scoring.Variant {
	v := flagValue(args, "--task")
	if v == "" {
		return ""
	}
	task, err := scoring.ParseVariant(v)
	if err != nil {
		fatal("%v", err)
	}
	return task
}

func mustOpenStore(cfg config.Config) *store.Store {
	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		fatal("open database: %v", err)
	}
	return db
}

func usage() {
	fmt.Fprintf(os.Stderr, `flicker v%s — cognitive assessment engine

Usage:
  flicker run --task <flex-sort|focus-flicker> [--seed N] [--simulate]
                                  Run an assessment in the terminal
  flicker import [file.jsonl...]  Import session exports (no args: sweep inbox)
  flicker watch                   Watch the inbox and import as files arrive
  flicker list                    List stored assessments
  flicker report <id> [--markdown] [--tier <name>]
                                  Show the tier-gated report for an assessment
  flicker export <id> [--out f]   Export trial history as CSV
  flicker grant <id> <tier>       Record a purchased access tier
  flicker stats [--task t]        Aggregate statistics
  flicker trends [--task t] [--weeks N]
                                  Week-over-week performance trends
  flicker check                   Environment diagnostics
  flicker init                    Write the default config file
  flicker version                 Print version
  flicker help                    Show this help

Configuration: ~/.config/focus-flicker/config.toml
`, version)
}

func flagValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "flicker: "+format+"\n", args...)
	os.Exit(1)
}

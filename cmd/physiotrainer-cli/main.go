package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/claude/physiotrainer/internal/audio"
	"github.com/claude/physiotrainer/internal/catalog"
	"github.com/claude/physiotrainer/internal/config"
	"github.com/claude/physiotrainer/internal/models"
	"github.com/claude/physiotrainer/internal/report"
	"github.com/claude/physiotrainer/internal/runner"
	"github.com/claude/physiotrainer/internal/session"
	"github.com/claude/physiotrainer/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	list := flag.Bool("list", false, "print the exercise catalog and exit")
	category := flag.String("category", "", "exercise category")
	exType := flag.String("type", "", "exercise type within the category")
	exercise := flag.String("exercise", "", "exercise name")
	name := flag.String("name", "", "your name")
	age := flag.Int("age", 18, "age in years (1-100)")
	weight := flag.Float64("weight", 50.0, "weight in kg (10-200)")
	gender := flag.String("gender", models.GenderFemale, "Female, Male or Other")
	csvPath := flag.String("csv", "", "write the session report CSV to this file instead of stdout")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("physiotrainer-cli", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}

	if *list {
		printCatalog(cat)
		return
	}

	if *category == "" || *exType == "" || *exercise == "" {
		fmt.Fprintf(os.Stderr, "Usage: physiotrainer-cli -category <name> -type <name> -exercise <name> [-name N -age A -weight W -gender G] [-csv file]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	user := models.UserInfo{Name: *name, Age: *age, WeightKg: *weight, Gender: *gender}
	if err := user.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ex, err := cat.Lookup(*category, *exType, *exercise)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (use -list to see the catalog)\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(ctx, cfg.Reports.Database)
	if err != nil {
		log.Error("failed to open report store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("%s (%s)\n", ex.Name, ex.Duration)
	for i, step := range ex.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	fmt.Printf("Tip: %s\n\n", ex.Tip)
	fmt.Println("Type p + Enter to pause or resume, s + Enter to stop.")

	timer := session.New(session.Config{
		StartDelay:   cfg.Session.StartDelay,
		HoldDuration: cfg.Session.HoldDuration,
		TargetReps:   cfg.Session.TargetReps,
	}, nil, log)
	r := runner.New(timer, audio.NewBell(os.Stdout), os.Stdout, cfg.Session.TickInterval, log)

	entry, err := r.Run(ctx, session.Selection{
		User:     user,
		Category: *category,
		Type:     *exType,
		Exercise: ex,
	}, runner.ReadCommands(ctx, os.Stdin))
	if err != nil {
		log.Error("session failed", "error", err)
		os.Exit(1)
	}

	if _, err := db.AppendReport(context.Background(), entry); err != nil {
		log.Error("failed to record report", "error", err)
		os.Exit(1)
	}
	entries, err := db.ListReports(context.Background())
	if err != nil {
		log.Error("failed to list reports", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			log.Error("failed to create csv file", "path", *csvPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	} else {
		fmt.Println()
	}
	if err := report.WriteCSV(out, entries); err != nil {
		log.Error("failed to write csv", "error", err)
		os.Exit(1)
	}
	if *csvPath != "" {
		fmt.Printf("Report written to %s\n", *csvPath)
	}
}

func printCatalog(cat *catalog.Catalog) {
	for _, c := range cat.Categories {
		fmt.Println(c.Name)
		for _, t := range c.Types {
			fmt.Printf("  %s\n", t.Name)
			for _, e := range t.Exercises {
				fmt.Printf("    - %s (%s)\n", e.Name, e.Duration)
			}
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/physiotrainer/internal/client"
	"github.com/claude/physiotrainer/internal/report"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "PhysioTrainer server URL (e.g. https://physiotrainer.tail1234.ts.net)")
	outPath := flag.String("out", report.FileName, "output CSV file")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout including retries")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("physiotrainer-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: physiotrainer-export -server <URL> [-out file.csv]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	f, err := os.Create(*outPath)
	if err != nil {
		log.Error("failed to create output file", "path", *outPath, "error", err)
		os.Exit(1)
	}

	n, err := client.NewHTTPClient(*serverURL).ExportCSV(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Error("export failed", "server", *serverURL, "error", err)
		os.Remove(*outPath)
		os.Exit(1)
	}
	log.Info("export written", "path", *outPath, "bytes", n)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/penalty/internal/adapters/source"
	"github.com/okian/penalty/internal/generator"
	"github.com/okian/penalty/pkg/logger"
)

const defaultTimeout = time.Minute

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(os.Args[1:], time.Now()); err != nil {
		os.Stderr.WriteString("generate failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run parses args and writes a synthetic CSV log.
func run(args []string, now time.Time) error {
	def := generator.DefaultConfig(now)

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	var (
		start    = fs.String("start", def.Start.Format(time.DateOnly), "First candidate day (YYYY-MM-DD)")
		end      = fs.String("end", def.End.Format(time.DateOnly), "Last candidate day (YYYY-MM-DD)")
		perDay   = fs.Int("per-day", def.PerDay, "Penalties per shooter per session")
		seed     = fs.Uint64("seed", def.Seed, "Random seed; equal seeds give equal logs")
		shooters = fs.String("shooters", "", "Comma separated shooter names (default: built-in squad)")
		keepers  = fs.String("keepers", "", "Comma separated keeper names (default: built-in squad)")
		output   = fs.String("output", "data/pseudo_penalty.csv", "Output CSV path, - for stdout")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := def
	cfg.PerDay = *perDay
	cfg.Seed = *seed
	var err error
	if cfg.Start, err = source.ParseDate(*start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if cfg.End, err = source.ParseDate(*end); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if names := splitNames(*shooters); len(names) > 0 {
		cfg.Shooters = names
	}
	if names := splitNames(*keepers); len(names) > 0 {
		cfg.Keepers = names
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	events, err := generator.Generate(ctx, cfg)
	if err != nil {
		return err
	}

	if *output == "-" {
		return source.Write(os.Stdout, events)
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := source.Write(f, events); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Get().Info(ctx, "synthetic log written",
		logger.String("output", *output),
		logger.Int("events", len(events)),
		logger.Any("seed", cfg.Seed),
	)
	return nil
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if name := source.NormalizeName(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Command cleancsv loads a raw survey file, applies the configured
// cleaning rules and writes the cleaned table as a UTF-8 CSV. Useful for
// producing an offline copy of exactly what the dashboard serves.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"surveypulse/internal/config"
	"surveypulse/internal/dataset"
	"surveypulse/internal/infrastructure"
	"surveypulse/internal/metrics"
	"surveypulse/internal/services"
)

func main() {
	input := flag.String("in", "", "input survey file (csv or xlsx), defaults to the configured survey file")
	output := flag.String("out", "cleaned.csv", "output CSV path")
	flag.Parse()

	if err := run(*input, *output); err != nil {
		fmt.Fprintf(os.Stderr, "cleancsv: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if input != "" {
		cfg.Survey.File = input
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	svc := services.NewSurveyService(cfg.Survey, logger, metrics.New())
	if err := svc.Load(context.Background()); err != nil {
		return fmt.Errorf("load survey: %w", err)
	}

	data, rows, err := svc.Export(context.Background(), dataset.FilterSpec{})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("wrote %d rows to %s\n", rows, output)
	return nil
}

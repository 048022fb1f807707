// ahss: Algorithmic Harm Screening Scale
//
// Screens clients for psychological harm from automated decision
// systems, interprets the score clinically and simulates how mental
// health and algorithmic standing evolve under different interventions.
//
// Usage:
//
//	ahss serve        # Start MCP server (stdio transport)
//	ahss http         # Start the HTTP/JSON API
//	ahss demo         # Score the sample client and compare interventions
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nyxdynamics/ahss/internal/config"
	ahssserver "github.com/nyxdynamics/ahss/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "serve":
		err = withConfig(runServe)
	case "http":
		err = withConfig(func(cfg config.Config, logger *slog.Logger) error { return runHTTP(cfg, logger, args) })
	case "form":
		err = withConfig(func(cfg config.Config, _ *slog.Logger) error { return runForm(cfg, args) })
	case "score":
		err = withConfig(func(cfg config.Config, logger *slog.Logger) error { return runScore(cfg, logger, args) })
	case "interpret":
		err = withConfig(func(cfg config.Config, _ *slog.Logger) error { return runInterpret(cfg, args) })
	case "simulate":
		err = withConfig(func(cfg config.Config, _ *slog.Logger) error { return runSimulate(cfg, args) })
	case "compare":
		err = withConfig(func(cfg config.Config, _ *slog.Logger) error { return runCompare(cfg, args) })
	case "demo":
		err = withConfig(func(cfg config.Config, _ *slog.Logger) error { return runDemo(cfg) })
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("ahss v%s\n", ahssserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withConfig loads configuration, installs a JSON logger on stderr and
// runs fn. Stdout stays free for command output and the MCP transport.
func withConfig(fn func(config.Config, *slog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return fn(cfg, logger)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ahss v%s - Algorithmic Harm Screening Scale

Usage:
  ahss serve                          Start the MCP server (stdio transport)
  ahss http [-addr :8080]             Start the HTTP/JSON API
  ahss form [-pdf file]               Print the paper form, or write it as PDF
  ahss score -file f.yaml [-client id] [-pdf file] [-save]
                                      Score a completed administration
  ahss interpret <total> [-temporal n]
                                      Interpret a total score
  ahss simulate [-case c | -profile f.yaml] [-intervention t] [-start m] [-months n] [-seed s]
                                      Simulate one trajectory
  ahss compare [-case c | -profile f.yaml] [-start m] [-months n] [-seed s]
                                      Compare every intervention policy
  ahss demo                           Score the sample client and compare interventions
  ahss version                        Print the version

Environment:
  AHSS_DATA_DIR            Records directory (default ~/.ahss)
  AHSS_HTTP_ADDR           HTTP listen address (default :8080)
  AHSS_DURATION_MONTHS     Simulation horizon (default 24)
  AHSS_INTERVENTION_MONTH  Intervention start month (default 3)
  AHSS_SEED                Random seed, 0 = from the clock (default 0)
  AHSS_CATALOG_FILE        YAML item catalog replacing the built-in one
  AHSS_FONT_PATH           TTF font for PDF output
  AHSS_LOG_LEVEL           debug, info, warn or error (default info)

MCP configuration:

  {
    "mcpServers": {
      "ahss": {
        "command": "ahss",
        "args": ["serve"]
      }
    }
  }
`, ahssserver.Version)
}

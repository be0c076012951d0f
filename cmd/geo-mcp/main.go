// geo-mcp serves the brand visibility tools over MCP (stdio transport).
//
// Usage:
//
//	geo-mcp serve    # Start MCP server on stdin/stdout
//	geo-mcp version
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AI-Template-SDK/senso-geo-wizard/internal/app"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/config"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/logger"
	"github.com/AI-Template-SDK/senso-geo-wizard/internal/mcptools"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--version", "-v", "version":
		fmt.Printf("geo-mcp v%s\n", mcptools.Version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load("dev.env")
	_ = godotenv.Load(".env")

	cfg := config.Load()
	if err := logger.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	// stdout carries the MCP protocol
	logger.Log.SetOutput(os.Stderr)

	policy, err := app.LoadPolicy(cfg)
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	svc, err := app.NewServices(cfg, policy, nil)
	if err != nil {
		return err
	}

	s := mcptools.NewServer(svc.Extractor, svc.Topics, svc.Prompts, svc.Analysis)
	logger.Log.Infof("[MCP] geo-mcp v%s serving on stdio", mcptools.Version)
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `geo-mcp - AI answer engine visibility tools over MCP

Usage:
  geo-mcp serve     Start the MCP server (stdio)
  geo-mcp version   Print the version

Tools:
  analyze_visibility   Run the full visibility analysis for a brand
  extract_signals      Read mention, sentiment and rank signals from one answer
`)
}

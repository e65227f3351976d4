package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/polyglot"
	"github.com/aretw0/polyglot/pkg/adapters/mcp"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes annotate, extract_terms and build_filter as MCP tools so agents can
preview how a paragraph would be routed. No broker is contacted.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		a, err := annotate.Load(cfg.ModelName, cfg.ModelDir)
		if err != nil {
			return err
		}

		srv := mcp.NewServer(a,
			mcp.WithExtractor(terms.Extractor{KeepStopwords: cfg.KeepStopwords}),
			mcp.WithFilterLimits(filter.Limits{
				MaxExpressionLength: cfg.MaxFilterLength,
				MaxParameters:       cfg.MaxFilterParameters,
			}),
			mcp.WithVersion(polyglot.Version),
			mcp.WithLogger(logger),
		)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("Starting polyglot MCP Server (Stdio)...")
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, port); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}

package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/formwizard/internal/cli"
	"github.com/aretw0/formwizard/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [definition]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the wizard as MCP tools so agents can fill it in.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger, err := cli.NewLogger(cfg.LogLevel, cfg.LogFormat, false)
		if err != nil {
			return err
		}
		engine, err := cli.NewEngine(cfg, logger)
		if err != nil {
			return err
		}
		p, err := cli.NewPersistence(cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()

		srv := mcp.NewServer(engine, p.Manager, logger)

		switch transport {
		case "stdio":
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			sc := cli.NewSignalContext(cmd.Context())
			defer sc.Cancel()

			if err := srv.ServeSSE(sc, cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8080", "Address to listen on (only for SSE)")
}

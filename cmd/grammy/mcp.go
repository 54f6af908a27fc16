package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/cli"
	"github.com/gabelluardo/grammY/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the bot as an MCP server so AI agents can drive conversations
as tools: send_update and start_scene dispatch into the engine and return
the replies, the session tools inspect and clear persisted conversations.

Supported transports:
- stdio (default): JSON-RPC over standard input/output.
- sse: Server-Sent Events over HTTP, for remote agents.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		storeFlag, _ := cmd.Flags().GetString("store")
		if err := cli.ApplyStoreFlag(&cfg, storeFlag); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		logger, err := cli.BuildLogger(&cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		slog.SetDefault(logger)

		storage, err := cli.BuildStorage(&cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer storage.Close()

		relay := mcp.NewRelay()
		bot, err := cli.BuildBot(&cfg, logger, storage, grammy.WithSink(relay))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		srv := mcp.NewServer(bot, relay)

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC; everything else goes to stderr.
			log.SetOutput(os.Stderr)
			slog.Info("starting mcp server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("mcp server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("starting mcp server (sse)", "addr", addr)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, addr); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("mcp server execution failed", "err", err)
					os.Exit(1)
				}
			}
			slog.Info("mcp server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
	mcpCmd.Flags().String("store", "", "Store backend: memory, sqlite:PATH or redis:ADDR")
}

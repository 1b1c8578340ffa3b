package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tooldex/tooldex"
	"github.com/tooldex/tooldex/internal/config"
	"github.com/tooldex/tooldex/internal/log"
	"github.com/tooldex/tooldex/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants search the tools of all configured MCP servers.
Configuration is loaded from environment variables and the .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Logging must not go to stdout here, stdout carries the MCP stream.
	logger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
	slogger := logger.Slog()

	client, err := tooldex.New(buildClientOptions(cfg, slogger)...)
	if err != nil {
		return fmt.Errorf("create tooldex client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close tooldex client", "error", err)
		}
	}()

	mcpServer := mcp.NewServer(client.Search, version, slogger)
	return mcpServer.ServeStdio()
}

// Command taskbridge serves task management tools over MCP, backed by
// Trello or Jira.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"taskbridge/internal/config"
	"taskbridge/internal/exitcode"
	"taskbridge/internal/factory"
	"taskbridge/internal/feedback"
	"taskbridge/internal/service"
	"taskbridge/internal/tools"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitcode.FromError(err))
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "taskbridge",
		Short:         "Task management tools over MCP, backed by Trello or Jira",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			// stdout carries the stdio transport, so logs go to stderr.
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level: %s", s)
}

func newServeCmd() *cobra.Command {
	var (
		transport   string
		host        string
		port        int
		serviceName string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.Default()
			f := factory.Default(config.NewManager(), log)

			ctx := cmd.Context()
			svc, err := selectService(ctx, f, serviceName)
			if err != nil {
				return err
			}

			s := tools.NewServer(svc, feedback.NewLauncher(), version)

			switch transport {
			case "stdio":
				log.Info("serving on stdio")
				return server.ServeStdio(s)
			case "sse":
				addr := fmt.Sprintf("%s:%d", host, port)
				log.Info("serving SSE", "addr", addr)
				return server.NewSSEServer(s).Start(addr)
			}
			return fmt.Errorf("unknown transport: %s", transport)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "transport to serve on (stdio or sse)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "host to bind for the sse transport")
	cmd.Flags().IntVar(&port, "port", 8765, "port to bind for the sse transport")
	cmd.Flags().StringVar(&serviceName, "service", "", "backend to use (trello or jira); default picks the first configured one")
	return cmd
}

func selectService(ctx context.Context, f *factory.Factory, serviceName string) (service.TaskService, error) {
	if serviceName != "" {
		return f.Create(ctx, serviceName, nil)
	}
	return f.CreateDefault(ctx)
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect backend configuration",
	}
	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [service]",
		Short: "Validate backend configuration from the environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := []string{config.ServiceTrello, config.ServiceJira}
			if len(args) == 1 {
				names = []string{args[0]}
			}

			out := cmd.OutOrStdout()
			var firstErr error
			for _, name := range names {
				if _, err := config.FromEnv(name); err != nil {
					if firstErr == nil {
						firstErr = err
					}
					fmt.Fprintf(out, "%s: INVALID\n  %s\n\n%s\n", name, err, config.Help(name))
				} else {
					fmt.Fprintf(out, "%s: OK\n", name)
				}
			}
			if firstErr != nil {
				return fmt.Errorf("configuration validation failed: %w", firstErr)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "taskbridge", version)
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jadenj13/whippy-mcp/internals/mcpserver"
	"github.com/jadenj13/whippy-mcp/internals/tool"
	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:           "whippy-mcp",
	Short:         "MCP server exposing the Whippy AI API as the whippy_api tool",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over streamable HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = envOr("WHIPPY_MCP_ADDR", ":3000")
		}

		log := newLogger(os.Stdout)
		srv, err := newServer(log)
		if err != nil {
			return err
		}

		httpSrv := &http.Server{
			Addr:         addr,
			Handler:      srv.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 35 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			log.Info("whippy mcp listening", "addr", addr, "endpoint", mcpserver.EndpointPath)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}
		log.Info("shutting down")

		shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	},
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve MCP over stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		srv, err := newServer(newLogger(os.Stderr))
		if err != nil {
			return err
		}
		return srv.ServeStdio()
	},
}

var callCmd = &cobra.Command{
	Use:   "call",
	Short: "Invoke whippy_api once and print the rendered result",
	RunE: func(cmd *cobra.Command, args []string) error {
		callArgs := map[string]any{}
		for _, name := range []string{"resource", "action", "data", "params", "resource-id", "api-key"} {
			v, _ := cmd.Flags().GetString(name)
			if v != "" {
				callArgs[flagToArg(name)] = v
			}
		}

		d := tool.NewDispatcher(whippy.NewClient(envOr("WHIPPY_API_URL", whippy.DefaultBaseURL)), newLogger(os.Stderr))
		resp := d.InvokeArguments(cmd.Context(), callArgs)
		fmt.Fprintln(cmd.OutOrStdout(), resp.Text())
		if resp.IsError {
			return errors.New("whippy_api call failed")
		}
		return nil
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	serveCmd.Flags().String("addr", "", "Listen address (default $WHIPPY_MCP_ADDR or :3000)")
	callCmd.Flags().String("resource", "", "Resource: contacts, messages, conversations, campaigns, sequences, health")
	callCmd.Flags().String("action", "", "Action to perform on the resource")
	callCmd.Flags().String("data", "", "Request body as a JSON object")
	callCmd.Flags().String("params", "", "Query parameters as a JSON object")
	callCmd.Flags().String("resource-id", "", "Resource ID for get/update/send actions")
	callCmd.Flags().String("api-key", "", "Whippy API key")

	rootCmd.AddCommand(serveCmd, stdioCmd, callCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServer(log *slog.Logger) (*mcpserver.Server, error) {
	client := whippy.NewClient(envOr("WHIPPY_API_URL", whippy.DefaultBaseURL))
	return mcpserver.New(tool.NewDispatcher(client, log), version, log)
}

func newLogger(w *os.File) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func flagToArg(name string) string {
	switch name {
	case "resource-id":
		return "resource_id"
	case "api-key":
		return "api_key"
	}
	return name
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

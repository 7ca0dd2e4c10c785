// Command mcp-graphql runs the GraphQL MCP gateway: a Model Context Protocol
// server that exposes one upstream GraphQL API as MCP tools and resources.
//
// Transports:
//   - stdio (default): for IDE integrations (VS Code, Claude Desktop, Cursor)
//   - streamable-http: stateless HTTP for remote/Docker deployments
//   - sse:             legacy session-keyed event streams for older clients
//
// Configuration comes from environment variables (ENDPOINT, ALLOW_MUTATIONS,
// HEADERS, SCHEMA, NAME, TRANSPORT, PORT) with flags taking precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcpgraphql/mcpgraphql/pkg/config"
	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
	"github.com/mcpgraphql/mcpgraphql/pkg/duration"
	"github.com/mcpgraphql/mcpgraphql/pkg/mcpserver"
)

func main() {
	var (
		name           = flag.String("name", envOrDefault("NAME", defaults.ServerName), "MCP server display name")
		endpoint       = flag.String("endpoint", envOrDefault("ENDPOINT", defaults.Endpoint), "Upstream GraphQL endpoint URL")
		allowMutations = flag.Bool("allow-mutations", envBool("ALLOW_MUTATIONS", false), "Permit mutation operations")
		headers        = flag.String("headers", envOrDefault("HEADERS", ""), "Extra upstream headers as a JSON object")
		schema         = flag.String("schema", envOrDefault("SCHEMA", ""), "Schema override: local SDL file path or URL")
		transport      = flag.String("transport", envOrDefault("TRANSPORT", defaults.Transport), "Transport: stdio, streamable-http, or sse")
		port           = flag.Int("port", envInt("PORT", defaults.Port), "HTTP listen port")
	)
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.New(config.Options{
		Name:           *name,
		Endpoint:       *endpoint,
		AllowMutations: *allowMutations,
		Headers:        *headers,
		Schema:         *schema,
		Transport:      *transport,
		Port:           *port,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(defaults.ExitConfigError)
	}

	srv := mcpserver.New(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// All startup output goes to stderr: under the stdio transport, stdout
	// belongs to the protocol stream.
	fmt.Fprintf(os.Stderr, "%s %s\n", defaults.UAMinimal, cfg.Summary())

	switch cfg.Transport {
	case config.TransportStdio:
		if err := srv.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(defaults.ExitServeError)
		}
	case config.TransportHTTP:
		serveHTTP(ctx, srv, srv.HTTPHandler(), cfg)
	case config.TransportSSE:
		serveHTTP(ctx, srv, srv.SSEHTTPHandler(), cfg)
	}
}

// serveHTTP hosts handler on cfg.Port with graceful shutdown on SIGINT/SIGTERM.
func serveHTTP(ctx context.Context, srv *mcpserver.Server, handler http.Handler, cfg *config.Config) {
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: duration.HTTPReadHeader,
		// WriteTimeout intentionally 0: event streams are long-lived and any
		// non-zero value sets an absolute deadline that kills them.
		// ReadHeaderTimeout protects against slowloris.
		IdleTimeout:    duration.HTTPIdle,
		MaxHeaderBytes: defaults.MaxHeaderBytes,
		// Request contexts descend from the signal context, so open event
		// streams unblock on SIGTERM and shutdown drains promptly instead of
		// waiting out the full budget.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), duration.Shutdown)
		defer shutdownCancel()
		fmt.Fprintf(os.Stderr, "%s shutting down gracefully\n", defaults.UAMinimal)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
		}
	}()

	srv.MarkReady()
	fmt.Fprintf(os.Stderr, "%s listening on %s (%s transport)\n",
		defaults.UAMinimal, httpSrv.Addr, cfg.Transport)

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(defaults.ExitServeError)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mcp-graphql [flags]\n\n")
	fmt.Fprintf(os.Stderr, "Expose a GraphQL API to MCP clients as tools and resources.\n\n")
	fmt.Fprintf(os.Stderr, "Environment variables:\n")
	fmt.Fprintf(os.Stderr, "  ENDPOINT         Upstream GraphQL endpoint (default: %s)\n", defaults.Endpoint)
	fmt.Fprintf(os.Stderr, "  ALLOW_MUTATIONS  Permit mutation operations (default: false)\n")
	fmt.Fprintf(os.Stderr, "  HEADERS          Extra upstream headers as a JSON object\n")
	fmt.Fprintf(os.Stderr, "  SCHEMA           Schema override: SDL file path or URL\n")
	fmt.Fprintf(os.Stderr, "  NAME             MCP server display name (default: %s)\n", defaults.ServerName)
	fmt.Fprintf(os.Stderr, "  TRANSPORT        stdio, streamable-http, or sse (default: %s)\n", defaults.Transport)
	fmt.Fprintf(os.Stderr, "  PORT             HTTP listen port (default: %d)\n\n", defaults.Port)
	fmt.Fprintf(os.Stderr, "Flags take precedence over environment variables.\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  mcp-graphql --endpoint https://api.example.com/graphql\n")
	fmt.Fprintf(os.Stderr, "  ENDPOINT=https://api.example.com/graphql mcp-graphql --transport streamable-http\n")
	fmt.Fprintf(os.Stderr, "  HEADERS='{\"Authorization\":\"Bearer TOKEN\"}' mcp-graphql --allow-mutations\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

// envOrDefault returns the environment variable value if set, otherwise the default.
func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// envBool parses a boolean environment variable. Unset or unparseable values
// fall back to the default.
func envBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

// envInt parses an integer environment variable. Unset or unparseable values
// fall back to the default.
func envInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

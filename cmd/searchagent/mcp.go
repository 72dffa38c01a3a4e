package main

import (
	"context"
	"errors"

	"searchagent/internal/adapter/tool"
)

// runMCP serves the registered tools over MCP on stdin/stdout until the
// client disconnects or ctx is cancelled.
func runMCP(ctx context.Context, args []string) error {
	flags, rest, err := parseCommonFlags(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return errors.New("mcp takes no arguments besides --config")
	}

	a, err := newApp(ctx, flags.ConfigPath, appOptions{ProtocolStdout: true})
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := tool.NewMCPServer("searchagent", version, a.tools, a.logger)
	if err != nil {
		return err
	}
	a.logger.Info("serving tools over mcp stdio", "tools", len(a.tools.List()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/oklog/ulid/v2"

	"searchagent/internal/domain"
)

// runQuery performs one search through the tool pipeline and prints the
// answer to out.
func runQuery(ctx context.Context, args []string, out io.Writer) error {
	flags, err := parseQueryFlags(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, flags.ConfigPath, appOptions{Goal: flags.Goal})
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.tools.Get("search")
	if err != nil {
		return err
	}

	params, err := json.Marshal(map[string]string{"query": flags.Query})
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}

	call := domain.ToolCall{ID: ulid.Make().String(), Name: t.Name(), Arguments: params}
	a.logger.Debug("tool call", "call_id", call.ID, "tool", call.Name)

	result, err := t.Execute(ctx, call.Arguments)
	if err != nil {
		return err
	}
	result.ToolCallID = call.ID
	if result.IsError {
		a.logger.Warn("tool call failed", "call_id", result.ToolCallID, "tool", call.Name, "retryable", result.IsRetryable)
		return errors.New(result.Content)
	}

	text := result.Content
	if flags.Render {
		rendered, err := glamour.Render(text, "dark")
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}
		text = rendered
	}

	_, err = fmt.Fprintln(out, text)
	return err
}

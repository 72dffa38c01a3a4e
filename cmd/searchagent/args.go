package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultConfigPath = "config.yaml"

// commonFlags are accepted by every command.
type commonFlags struct {
	ConfigPath string
}

// queryFlags are the flags and positional text of the query command.
type queryFlags struct {
	commonFlags
	Goal   string
	Render bool
	Query  string
}

var errNoQuery = errors.New("missing query text")

// parseCommonFlags extracts --config and returns the remaining arguments.
// SEARCHAGENT_CONFIG is used when the flag is absent.
func parseCommonFlags(args []string) (commonFlags, []string, error) {
	flags := commonFlags{ConfigPath: os.Getenv("SEARCHAGENT_CONFIG")}
	rest := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			if i+1 >= len(args) {
				return flags, nil, fmt.Errorf("--config requires a path")
			}
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			rest = append(rest, arg)
		}
	}

	if flags.ConfigPath == "" {
		flags.ConfigPath = defaultConfigPath
	}
	return flags, rest, nil
}

// parseQueryFlags parses `query [--config P] [--goal G] [--render] TEXT...`.
// Everything after "--" is query text. Remaining words are joined with
// single spaces.
func parseQueryFlags(args []string) (queryFlags, error) {
	common, rest, err := parseCommonFlags(args)
	if err != nil {
		return queryFlags{}, err
	}
	flags := queryFlags{commonFlags: common}

	var words []string
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "--":
			words = append(words, rest[i+1:]...)
			i = len(rest)
		case arg == "--render":
			flags.Render = true
		case arg == "--goal":
			if i+1 >= len(rest) {
				return flags, fmt.Errorf("--goal requires a value")
			}
			flags.Goal = rest[i+1]
			i++
		case strings.HasPrefix(arg, "--goal="):
			flags.Goal = strings.TrimPrefix(arg, "--goal=")
		case strings.HasPrefix(arg, "--"):
			return flags, fmt.Errorf("unknown flag: %s", arg)
		default:
			words = append(words, arg)
		}
	}

	flags.Query = strings.Join(words, " ")
	if strings.TrimSpace(flags.Query) == "" {
		return flags, errNoQuery
	}
	return flags, nil
}

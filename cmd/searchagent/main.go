package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "--help", "-h", "help":
		showUsage()
		return
	case "--version", "version":
		fmt.Println("searchagent", version)
		return
	case "query":
		err = runQuery(ctx, args, os.Stdout)
	case "mcp":
		err = runMCP(ctx, args)
	case "doctor":
		err = runDoctor(ctx, args, os.Stdout)
	case "encrypt":
		err = runEncrypt(args, os.Stdin, os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'searchagent --help' for usage information.\n", cmd)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
		stop()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`searchagent - web search tool for autonomous agents

USAGE:
    searchagent COMMAND [FLAGS]

COMMANDS:
    query [--goal G] [--render] TEXT   Search the web and print the answer
    mcp                                Serve the search tool over MCP (stdio)
    doctor                             Check configuration and connectivity
    encrypt [VALUE]                    Encrypt a secret for config.yaml
                                       (reads stdin when VALUE is omitted)

FLAGS:
    -h, --help         Show this help message
    --config PATH      Config file path (default: ./config.yaml)

CONFIGURATION:
    Environment: SEARCHAGENT_* variables override config.yaml
    Required:    SEARCHAGENT_SEARCH_API_KEY, SEARCHAGENT_SEARCH_ENGINE_ID
    Secrets:     values prefixed "enc:" are decrypted with SEARCHAGENT_CONFIG_KEY

EXAMPLES:
    searchagent query "latest stable Go release"
    searchagent query --goal "plan a trip" --render "weather in Lisbon in May"
    searchagent mcp --config /etc/searchagent/config.yaml
    SEARCHAGENT_CONFIG_KEY=... searchagent encrypt sk-...`)
}

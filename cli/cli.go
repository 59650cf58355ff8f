// Package cli implements the mcpkit command line: capability inspection,
// capability search, one-shot tool calls and the bridge runner. Exit codes
// and human rendering live here; the core packages return typed values.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

// Run dispatches a command line. Errors come back to the caller so main
// owns the exit code.
func Run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	command := args[0]
	rest := args[1:]
	switch command {
	case "info":
		return runInfo(rest)
	case "grep":
		return runGrep(rest)
	case "call":
		return runCall(rest)
	case "proxy":
		return runProxy(rest)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("mcpkit - inspect, search, call and bridge MCP servers")
	fmt.Println()
	fmt.Println("Usage: mcpkit <command> [flags]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  info                    Show the server's tools, prompts and resources")
	fmt.Println("  grep <pattern>          Search capability names, descriptions and schemas")
	fmt.Println("  call <tool> [json]      Call one tool with JSON arguments")
	fmt.Println("  proxy                   Bridge a backend to stdio or HTTP")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  mcpkit info -u http://localhost:5000/mcp")
	fmt.Println("  mcpkit grep -e ./currency-server amount --input")
	fmt.Println("  mcpkit call -u http://localhost:5000/mcp convert_currency '{\"amount\": 10}'")
	fmt.Println("  mcpkit proxy -u http://localhost:5000/mcp --expose stdio")
	fmt.Println()
}

// setupLogging routes operational logs to stderr, keeping stdout for
// command output.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

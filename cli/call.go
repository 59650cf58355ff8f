package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpkit/ref"
)

// CallOptions configure the one-shot tool call command. The tool may be a
// bare name or a namespace/name@version reference.
type CallOptions struct {
	ConnectOptions
}

func runCall(args []string) error {
	options := &CallOptions{}
	rest, err := flags.ParseArgs(options, args)
	if err != nil {
		return err
	}
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("call expects a tool name and optional JSON arguments")
	}
	setupLogging(options.Verbose)

	name := rest[0]
	if reference, err := ref.Parse(name); err == nil {
		name = reference.Name
	}

	var arguments map[string]any
	if len(rest) == 2 {
		if err := json.Unmarshal([]byte(rest[1]), &arguments); err != nil {
			return fmt.Errorf("invalid JSON arguments: %w", err)
		}
	}

	ctx := context.Background()
	session, err := options.session(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	result, err := session.Client().CallTool(ctx, &schema.CallToolRequestParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) {
			return fmt.Errorf("call failed (%d): %s", rpcErr.Code, rpcErr.Message)
		}
		return err
	}
	return renderCallResult(os.Stdout, result)
}

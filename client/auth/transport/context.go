package transport

import (
	"context"
	"strings"

	"github.com/viant/scy/auth/flow"
)

type contextScopeKey string

// ContextFlowOptionKey carries []flow.Option through a request context to
// customize the interactive authorization flow per call.
const ContextFlowOptionKey contextScopeKey = "authFlowOptions"

func getAuthFlowOptions(ctx context.Context) []flow.Option {
	var options []flow.Option
	if value := ctx.Value(ContextFlowOptionKey); value != nil {
		options, _ = value.([]flow.Option)
	}
	options = append(options, flow.WithPKCE(true))
	return options
}

func getScope(ctx context.Context) string {
	options := getAuthFlowOptions(ctx)
	if len(options) == 0 {
		return ""
	}
	return strings.Join(flow.NewOptions(options).Scopes(), " ")
}

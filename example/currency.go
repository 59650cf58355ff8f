package example

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

// rates quotes each supported currency in USD.
var rates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"GBP": 1.27,
	"JPY": 0.0067,
	"CHF": 1.12,
}

// ConvertInput asks for an amount exchanged between two currencies.
type ConvertInput struct {
	Amount float64 `json:"amount"`
	From   string  `json:"from"`
	To     string  `json:"to"`
}

// ConvertOutput carries the converted amount and the applied rate.
type ConvertOutput struct {
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// ListInput is empty; list_currencies takes no arguments.
type ListInput struct{}

// ListOutput enumerates the supported currency codes.
type ListOutput struct {
	Codes []string `json:"codes"`
}

// NewCurrencyHandler builds a handler factory exposing the demo tools:
// convert_currency exchanges an amount between two currencies and
// list_currencies enumerates the supported codes.
func NewCurrencyHandler(ctx context.Context) protoserver.NewHandler {
	return protoserver.WithDefaultHandler(ctx, func(h *protoserver.DefaultHandler) error {
		err := protoserver.RegisterTool[*ConvertInput, *ConvertOutput](h.Registry, "convert_currency", "Convert an amount between two currencies", convert)
		if err != nil {
			return err
		}
		return protoserver.RegisterTool[*ListInput, *ListOutput](h.Registry, "list_currencies", "List supported currency codes", listCurrencies)
	})
}

func convert(ctx context.Context, input *ConvertInput) (*schema.CallToolResult, *jsonrpc.Error) {
	fromRate, ok := rates[input.From]
	if !ok {
		return toolError(fmt.Sprintf("unsupported currency: %s", input.From)), nil
	}
	toRate, ok := rates[input.To]
	if !ok {
		return toolError(fmt.Sprintf("unsupported currency: %s", input.To)), nil
	}
	rate := fromRate / toRate
	return toolResult(&ConvertOutput{Amount: input.Amount * rate, Rate: rate})
}

func listCurrencies(ctx context.Context, _ *ListInput) (*schema.CallToolResult, *jsonrpc.Error) {
	codes := make([]string, 0, len(rates))
	for code := range rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return toolResult(&ListOutput{Codes: codes})
}

// toolResult renders the output as text content plus its structured form.
func toolResult(output interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	data, err := json.Marshal(output)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	structured := map[string]interface{}{}
	if err := json.Unmarshal(data, &structured); err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return &schema.CallToolResult{
		StructuredContent: structured,
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Text: string(data), Type: "text"},
		},
	}, nil
}

func toolError(message string) *schema.CallToolResult {
	isError := true
	return &schema.CallToolResult{
		IsError: &isError,
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Text: message, Type: "text"},
		},
	}
}

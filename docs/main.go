package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	proto "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcpkit"
)

// Minimal end-to-end setup: register one tool and expose it over
// streamable HTTP. Connect with:
//
//	mcpkit info --url http://localhost:4987/mcp
func main() {
	type RateIn struct {
		Code string `json:"code"`
	}
	type RateOut struct {
		Code string  `json:"code"`
		USD  float64 `json:"usd"`
	}
	quotes := map[string]float64{"USD": 1.0, "EUR": 1.09, "GBP": 1.27}

	newHandler := proto.WithDefaultHandler(context.Background(), func(h *proto.DefaultHandler) error {
		return proto.RegisterTool[*RateIn, *RateOut](
			h.Registry,
			"exchange_rate",
			"Quote a currency in USD",
			func(ctx context.Context, in *RateIn) (*schema.CallToolResult, *jsonrpc.Error) {
				usd, ok := quotes[in.Code]
				if !ok {
					return nil, jsonrpc.NewInvalidParamsError(fmt.Sprintf("unknown currency: %s", in.Code), nil)
				}
				data, err := json.Marshal(&RateOut{Code: in.Code, USD: usd})
				if err != nil {
					return nil, jsonrpc.NewInternalError(err.Error(), nil)
				}
				return &schema.CallToolResult{
					Content: []schema.CallToolResultContentElem{
						schema.TextContent{Text: string(data), Type: "text"},
					},
				}, nil
			},
		)
	})

	srv, err := mcpkit.NewServer(newHandler, &mcpkit.ServerOptions{
		Name:      "rate-server",
		Version:   "1.0",
		Transport: &mcpkit.ServerTransport{Type: "streamable"},
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(srv.HTTP(context.Background(), ":4987").ListenAndServe())
}

package server

import (
	"context"
	"encoding/json"
	"github.com/viant/jsonrpc"
	"github.com/viant/jsonrpc/transport"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/mcp-protocol/schema"
)

// Client implements mcp-protocol client.Operations for the handler side,
// letting handler implementations call back into the connected client over
// the transport the request arrived on.
type Client struct {
	implements map[string]bool
	transport.Transport
	transport.Sequencer
}

// Init records which backchannel methods the connected client advertises.
func (c *Client) Init(ctx context.Context, capabilities *schema.ClientCapabilities) {
	if capabilities.Roots != nil {
		c.implements[schema.MethodRootsList] = true
	}
	if capabilities.Sampling != nil {
		c.implements[schema.MethodSamplingCreateMessage] = true
	}
	if capabilities.Elicitation != nil {
		c.implements[schema.MethodElicitationCreate] = true
	}
}

func (c *Client) Implements(method string) bool {
	return c.implements[method]
}

func (c *Client) nextRequestId() uint64 {
	if c.Sequencer != nil {
		id := c.NextRequestID()
		ret, _ := jsonrpc.AsRequestIntId(id)
		return uint64(ret)
	}
	return 0
}

// ListRoots requests the client root list.
func (c *Client) ListRoots(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ListRootsRequest]) (*schema.ListRootsResult, *jsonrpc.Error) {
	if request.Id == 0 {
		request.Id = c.nextRequestId()
	}
	request.Method = schema.MethodRootsList
	return send[schema.ListRootsRequestParams, schema.ListRootsResult](ctx, c, schema.MethodRootsList, request.Id, request.Request.Params)
}

// CreateMessage asks the client to sample a message.
func (c *Client) CreateMessage(ctx context.Context, request *jsonrpc.TypedRequest[*schema.CreateMessageRequest]) (*schema.CreateMessageResult, *jsonrpc.Error) {
	if request.Id == 0 {
		request.Id = c.nextRequestId()
	}
	request.Method = schema.MethodSamplingCreateMessage
	return send[schema.CreateMessageRequestParams, schema.CreateMessageResult](ctx, c, schema.MethodSamplingCreateMessage, request.Id, &request.Request.Params)
}

// Elicit asks the client to collect additional information from the user.
func (c *Client) Elicit(ctx context.Context, request *jsonrpc.TypedRequest[*schema.ElicitRequest]) (*schema.ElicitResult, *jsonrpc.Error) {
	if request.Id == 0 {
		request.Id = c.nextRequestId()
	}
	request.Method = schema.MethodElicitationCreate
	return send[schema.ElicitRequestParams, schema.ElicitResult](ctx, c, schema.MethodElicitationCreate, request.Id, &request.Request.Params)
}

// send marshals parameters, sends the request and unmarshals the result.
func send[P any, R any](ctx context.Context, client *Client, method string, id uint64, parameters *P) (*R, *jsonrpc.Error) {
	req, err := jsonrpc.NewRequest(method, parameters)
	if err != nil {
		return nil, jsonrpc.NewInvalidRequest(err.Error(), nil)
	}
	req.Id = id
	response, err := client.Transport.Send(ctx, req)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), req.Params)
	}
	var result R
	if unmarshalErr := json.Unmarshal(response.Result, &result); unmarshalErr != nil {
		return nil, jsonrpc.NewInternalError(unmarshalErr.Error(), nil)
	}
	return &result, response.Error
}

// NewClient creates a handler-side client over the given transport.
func NewClient(implements map[string]bool, aTransport transport.Transport) *Client {
	if implements == nil {
		implements = make(map[string]bool)
	}
	seq, _ := aTransport.(transport.Sequencer)
	return &Client{implements: implements, Transport: aTransport, Sequencer: seq}
}

var _ protoclient.Operations = &Client{}

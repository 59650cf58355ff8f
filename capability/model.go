// Package capability holds the in-memory snapshot of a server's advertised
// tools, prompts and resources, as produced by a backend session and consumed
// by the proxy, the search engine and output formatters.
package capability

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
)

// Model is a point-in-time capability snapshot. Collections preserve
// discovery order; logical identity is the tool/prompt name or resource URI.
type Model struct {
	Server       schema.Implementation
	Protocol     string
	Instructions string

	Tools     []schema.Tool
	Prompts   []schema.Prompt
	Resources []schema.Resource
}

// Tool returns the descriptor for name.
func (m *Model) Tool(name string) (*schema.Tool, bool) {
	for i := range m.Tools {
		if m.Tools[i].Name == name {
			return &m.Tools[i], true
		}
	}
	return nil, false
}

// Prompt returns the descriptor for name.
func (m *Model) Prompt(name string) (*schema.Prompt, bool) {
	for i := range m.Prompts {
		if m.Prompts[i].Name == name {
			return &m.Prompts[i], true
		}
	}
	return nil, false
}

// Resource returns the descriptor for uri.
func (m *Model) Resource(uri string) (*schema.Resource, bool) {
	for i := range m.Resources {
		if m.Resources[i].Uri == uri {
			return &m.Resources[i], true
		}
	}
	return nil, false
}

// Clone returns a copy safe for read-only consumption alongside later
// refreshes of the original. Descriptor payloads are shared, not copied.
func (m *Model) Clone() *Model {
	ret := *m
	ret.Tools = append([]schema.Tool(nil), m.Tools...)
	ret.Prompts = append([]schema.Prompt(nil), m.Prompts...)
	ret.Resources = append([]schema.Resource(nil), m.Resources...)
	return &ret
}

// Source is the subset of backend client operations Fetch needs.
type Source interface {
	ListTools(ctx context.Context, cursor *string) (*schema.ListToolsResult, error)
	ListPrompts(ctx context.Context, cursor *string) (*schema.ListPromptsResult, error)
	ListResources(ctx context.Context, cursor *string) (*schema.ListResourcesResult, error)
}

// FetchOption adjusts Fetch behavior.
type FetchOption func(f *fetcher)

type fetcher struct {
	server       schema.Implementation
	protocol     string
	instructions string
	toolsOnly    bool
}

// WithServerInfo records the identity negotiated during initialize.
func WithServerInfo(server schema.Implementation, protocol string, instructions *string) FetchOption {
	return func(f *fetcher) {
		f.server = server
		f.protocol = protocol
		if instructions != nil {
			f.instructions = *instructions
		}
	}
}

// WithToolsOnly skips prompt and resource listing.
func WithToolsOnly() FetchOption {
	return func(f *fetcher) {
		f.toolsOnly = true
	}
}

// Fetch lists tools, prompts and resources from source and assembles a Model.
// A tool listing failure is fatal; prompt and resource listings degrade to
// empty collections, since many servers implement neither. Repeated calls
// replace the snapshot rather than merging.
func Fetch(ctx context.Context, source Source, options ...FetchOption) (*Model, error) {
	f := &fetcher{}
	for _, option := range options {
		option(f)
	}
	model := &Model{
		Server:       f.server,
		Protocol:     f.protocol,
		Instructions: f.instructions,
	}

	var cursor *string
	for {
		result, err := source.ListTools(ctx, cursor)
		if err != nil {
			return nil, err
		}
		model.Tools = append(model.Tools, result.Tools...)
		if result.NextCursor == nil || *result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	if f.toolsOnly {
		return model, nil
	}

	cursor = nil
	for {
		result, err := source.ListPrompts(ctx, cursor)
		if err != nil {
			break
		}
		model.Prompts = append(model.Prompts, result.Prompts...)
		if result.NextCursor == nil || *result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	cursor = nil
	for {
		result, err := source.ListResources(ctx, cursor)
		if err != nil {
			break
		}
		model.Resources = append(model.Resources, result.Resources...)
		if result.NextCursor == nil || *result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}
	return model, nil
}

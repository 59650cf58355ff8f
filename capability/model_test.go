package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/mcp-protocol/schema"
)

type testSource struct {
	toolPages   [][]schema.Tool
	prompts     []schema.Prompt
	resources   []schema.Resource
	toolsErr    error
	promptsErr  error
	resourceErr error
}

func strptr(s string) *string { return &s }

func (s *testSource) ListTools(_ context.Context, cursor *string) (*schema.ListToolsResult, error) {
	if s.toolsErr != nil {
		return nil, s.toolsErr
	}
	page := 0
	if cursor != nil {
		page = len(*cursor)
	}
	result := &schema.ListToolsResult{Tools: s.toolPages[page]}
	if page+1 < len(s.toolPages) {
		next := make([]byte, page+1)
		for i := range next {
			next[i] = 'c'
		}
		result.NextCursor = strptr(string(next))
	}
	return result, nil
}

func (s *testSource) ListPrompts(_ context.Context, _ *string) (*schema.ListPromptsResult, error) {
	if s.promptsErr != nil {
		return nil, s.promptsErr
	}
	return &schema.ListPromptsResult{Prompts: s.prompts}, nil
}

func (s *testSource) ListResources(_ context.Context, _ *string) (*schema.ListResourcesResult, error) {
	if s.resourceErr != nil {
		return nil, s.resourceErr
	}
	return &schema.ListResourcesResult{Resources: s.resources}, nil
}

func TestFetch(t *testing.T) {
	source := &testSource{
		toolPages: [][]schema.Tool{
			{{Name: "convert_currency", InputSchema: schema.ToolInputSchema{Type: "object"}}},
			{{Name: "list_rates", InputSchema: schema.ToolInputSchema{Type: "object"}}},
		},
		prompts:   []schema.Prompt{{Name: "exchange-summary"}},
		resources: []schema.Resource{{Name: "rates", Uri: "rates://latest"}},
	}
	ctx := context.Background()

	model, err := Fetch(ctx, source, WithServerInfo(schema.Implementation{Name: "fx", Version: "1.0"}, schema.LatestProtocolVersion, strptr("currency toolkit")))
	assert.NoError(t, err)
	assert.Equal(t, "fx", model.Server.Name)
	assert.Equal(t, "currency toolkit", model.Instructions)
	assert.Len(t, model.Tools, 2)
	assert.Equal(t, "convert_currency", model.Tools[0].Name)
	assert.Equal(t, "list_rates", model.Tools[1].Name)
	assert.Len(t, model.Prompts, 1)
	assert.Len(t, model.Resources, 1)

	// a second fetch with unchanged backend yields an identical snapshot
	again, err := Fetch(ctx, source, WithServerInfo(schema.Implementation{Name: "fx", Version: "1.0"}, schema.LatestProtocolVersion, strptr("currency toolkit")))
	assert.NoError(t, err)
	assert.Equal(t, model, again)
}

func TestFetch_PromptAndResourceFailuresDegrade(t *testing.T) {
	source := &testSource{
		toolPages:   [][]schema.Tool{{{Name: "convert_currency"}}},
		promptsErr:  errors.New("method not found"),
		resourceErr: errors.New("method not found"),
	}
	model, err := Fetch(context.Background(), source)
	assert.NoError(t, err)
	assert.Len(t, model.Tools, 1)
	assert.Empty(t, model.Prompts)
	assert.Empty(t, model.Resources)
}

func TestFetch_ToolFailureIsFatal(t *testing.T) {
	source := &testSource{toolsErr: errors.New("connection closed")}
	_, err := Fetch(context.Background(), source)
	assert.Error(t, err)
}

func TestModel_Lookups(t *testing.T) {
	model := &Model{
		Tools:     []schema.Tool{{Name: "convert_currency"}},
		Prompts:   []schema.Prompt{{Name: "exchange-summary"}},
		Resources: []schema.Resource{{Name: "rates", Uri: "rates://latest"}},
	}
	tool, ok := model.Tool("convert_currency")
	assert.True(t, ok)
	assert.Equal(t, "convert_currency", tool.Name)
	_, ok = model.Tool("missing")
	assert.False(t, ok)

	prompt, ok := model.Prompt("exchange-summary")
	assert.True(t, ok)
	assert.Equal(t, "exchange-summary", prompt.Name)

	resource, ok := model.Resource("rates://latest")
	assert.True(t, ok)
	assert.Equal(t, "rates", resource.Name)
}

func TestModel_Clone(t *testing.T) {
	model := &Model{Tools: []schema.Tool{{Name: "convert_currency"}}}
	clone := model.Clone()
	clone.Tools = append(clone.Tools, schema.Tool{Name: "added"})
	assert.Len(t, model.Tools, 1)
	assert.Len(t, clone.Tools, 2)
}

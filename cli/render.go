package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/mcpkit/capability"
	"github.com/viant/mcpkit/search"
)

// renderModel prints one capability snapshot: identity, tools, prompts and
// resources. Schemas are included when withSchemas is set.
func renderModel(w io.Writer, model *capability.Model, withSchemas bool) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	cyan.Fprintln(w, "Server")
	fmt.Fprintf(w, "  %s %s (protocol %s)\n", model.Server.Name, model.Server.Version, model.Protocol)
	if model.Instructions != "" {
		fmt.Fprintf(w, "  %s\n", model.Instructions)
	}
	fmt.Fprintln(w)

	cyan.Fprintf(w, "Tools (%d)\n", len(model.Tools))
	if len(model.Tools) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i := range model.Tools {
		tool := &model.Tools[i]
		description := ""
		if tool.Description != nil {
			description = *tool.Description
		}
		fmt.Fprintf(tw, "  %s\t%s\n", green.Sprint(tool.Name), description)
	}
	_ = tw.Flush()
	if withSchemas {
		for i := range model.Tools {
			renderToolSchemas(w, &model.Tools[i])
		}
	}
	fmt.Fprintln(w)

	cyan.Fprintf(w, "Prompts (%d)\n", len(model.Prompts))
	if len(model.Prompts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i := range model.Prompts {
		prompt := &model.Prompts[i]
		description := ""
		if prompt.Description != nil {
			description = *prompt.Description
		}
		fmt.Fprintf(w, "  %s\t%s\n", green.Sprint(prompt.Name), description)
	}
	fmt.Fprintln(w)

	cyan.Fprintf(w, "Resources (%d)\n", len(model.Resources))
	if len(model.Resources) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for i := range model.Resources {
		resource := &model.Resources[i]
		fmt.Fprintf(w, "  %s\t%s\n", green.Sprint(resource.Name), resource.Uri)
	}
}

// renderToolSchemas prints schemas through the tool's wire form so the
// rendering depends only on the protocol's JSON shape.
func renderToolSchemas(w io.Writer, tool *schema.Tool) {
	data, err := json.Marshal(tool)
	if err != nil {
		return
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		return
	}
	for _, key := range []string{"inputSchema", "outputSchema"} {
		node, ok := wire[key].(map[string]any)
		if !ok || len(node) == 0 {
			continue
		}
		rendered, err := json.MarshalIndent(node, "    ", "  ")
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "\n  %s %s:\n    %s\n", tool.Name, key, rendered)
	}
}

// renderMatches prints search hits as path: value lines.
func renderMatches(w io.Writer, matches []search.Match) {
	cyan := color.New(color.FgCyan)
	for _, match := range matches {
		fmt.Fprintf(w, "%s: %s\n", cyan.Sprint(match.Path.String()), match.Value)
	}
	if len(matches) == 0 {
		fmt.Fprintln(w, "no matches")
	}
}

// renderCallResult prints each content element, unwrapping plain text.
func renderCallResult(w io.Writer, result *schema.CallToolResult) error {
	for _, elem := range result.Content {
		fmt.Fprintln(w, contentText(elem))
	}
	if result.IsError != nil && *result.IsError {
		return fmt.Errorf("tool reported an error")
	}
	return nil
}

// contentText extracts text content; other kinds render as JSON.
func contentText(elem schema.CallToolResultContentElem) string {
	data, err := json.Marshal(elem)
	if err != nil {
		return fmt.Sprintf("%v", elem)
	}
	var probe struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.Type == "text" {
		return probe.Text
	}
	return string(data)
}

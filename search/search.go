// Package search executes pattern queries over capability models, returning
// path-addressable matches against names, descriptions and schema fields.
package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcpkit/capability"
)

var (
	// ErrInvalidPattern is returned when a regex query fails to compile;
	// the engine never falls back to literal matching.
	ErrInvalidPattern = errors.New("invalid search pattern")
	// ErrCyclicSchema is returned when a schema tree carries a local $ref
	// or exceeds the nesting bound; cycles are rejected, never expanded.
	ErrCyclicSchema = errors.New("cyclic or self-referential schema")
)

// maxSchemaDepth bounds the walk; decoded JSON cannot be cyclic, but a
// hostile or broken backend can nest arbitrarily deep.
const maxSchemaDepth = 128

// Focus narrows a query to a subset of searchable positions. The zero value
// searches everything.
type Focus struct {
	Names        bool
	Descriptions bool
	Input        bool
	Output       bool
}

func (f Focus) all() bool {
	return !f.Names && !f.Descriptions && !f.Input && !f.Output
}

func (f Focus) names() bool        { return f.all() || f.Names }
func (f Focus) descriptions() bool { return f.all() || f.Descriptions }
func (f Focus) input() bool        { return f.all() || f.Input }
func (f Focus) output() bool       { return f.all() || f.Output }

// Query describes one search invocation.
type Query struct {
	Pattern    string
	Regex      bool
	IgnoreCase bool
	Focus      Focus
	// Tool restricts schema and description positions to one tool name.
	Tool string
	// Sorted orders results by path instead of model discovery order.
	Sorted bool
}

// Match is one hit: the position's path and the text found there.
type Match struct {
	Server string
	Path   Path
	Value  string
}

// Engine holds a compiled query, reusable across models.
type Engine struct {
	query   Query
	matches func(text string) bool
}

// New compiles query. Regex compilation failure fails fast with
// ErrInvalidPattern.
func New(query Query) (*Engine, error) {
	engine := &Engine{query: query}
	if query.Regex {
		pattern := query.Pattern
		if query.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		expr, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		engine.matches = expr.MatchString
		return engine, nil
	}
	needle := query.Pattern
	if query.IgnoreCase {
		folded := strings.ToLower(needle)
		engine.matches = func(text string) bool {
			return strings.Contains(strings.ToLower(text), folded)
		}
		return engine, nil
	}
	engine.matches = func(text string) bool {
		return strings.Contains(text, needle)
	}
	return engine, nil
}

// Search runs the compiled query over the given models in order. Results are
// grouped by server in model order; within a model tools come before prompts
// before resources. An invalid schema aborts with no partial results.
func (e *Engine) Search(models ...*capability.Model) ([]Match, error) {
	var ret []Match
	for _, model := range models {
		matches, err := e.searchModel(model)
		if err != nil {
			return nil, err
		}
		ret = append(ret, matches...)
	}
	if e.query.Sorted {
		sort.SliceStable(ret, func(i, j int) bool {
			if ret[i].Server != ret[j].Server {
				return ret[i].Server < ret[j].Server
			}
			return ret[i].Path.String() < ret[j].Path.String()
		})
	}
	return ret, nil
}

// Search is a convenience for one-shot queries.
func Search(query Query, models ...*capability.Model) ([]Match, error) {
	engine, err := New(query)
	if err != nil {
		return nil, err
	}
	return engine.Search(models...)
}

func (e *Engine) searchModel(model *capability.Model) ([]Match, error) {
	server := model.Server.Name
	collector := &collector{engine: e, server: server}

	if e.query.Tool == "" {
		if e.query.Focus.names() {
			collector.visit(Path{"server"}, server)
		}
		if e.query.Focus.descriptions() {
			collector.visit(Path{"server", "description"}, model.Instructions)
		}
	}

	for i := range model.Tools {
		tool := &model.Tools[i]
		if e.query.Tool != "" && e.query.Tool != tool.Name {
			continue
		}
		base := Path{"tools", tool.Name}
		if e.query.Focus.names() {
			collector.visit(base, tool.Name)
		}
		if e.query.Focus.descriptions() && tool.Description != nil {
			collector.visit(base.Child("description"), *tool.Description)
		}
		if e.query.Focus.input() {
			if err := collector.walkProperties(base.Child("input_schema", "properties"), tool.InputSchema.Properties, 0); err != nil {
				return nil, err
			}
		}
		if e.query.Focus.output() {
			output, err := outputSchemaOf(tool)
			if err != nil {
				return nil, err
			}
			if output != nil {
				if err := collector.walkNode(base.Child("output_schema"), output, 0); err != nil {
					return nil, err
				}
			}
		}
	}

	if e.query.Tool == "" {
		for i := range model.Prompts {
			prompt := &model.Prompts[i]
			base := Path{"prompts", prompt.Name}
			if e.query.Focus.names() {
				collector.visit(base, prompt.Name)
			}
			if e.query.Focus.descriptions() && prompt.Description != nil {
				collector.visit(base.Child("description"), *prompt.Description)
			}
		}
		for i := range model.Resources {
			resource := &model.Resources[i]
			base := Path{"resources", resource.Uri}
			if e.query.Focus.names() {
				collector.visit(base, resource.Name)
			}
			if e.query.Focus.descriptions() && resource.Description != nil {
				collector.visit(base.Child("description"), *resource.Description)
			}
		}
	}
	return collector.matches, nil
}

// outputSchemaOf projects the tool's output schema through its wire form, so
// the walk depends only on the protocol's JSON shape.
func outputSchemaOf(tool *schema.Tool) (map[string]interface{}, error) {
	data, err := json.Marshal(tool)
	if err != nil {
		return nil, err
	}
	var wire map[string]interface{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	output, _ := wire["outputSchema"].(map[string]interface{})
	return output, nil
}

type collector struct {
	engine  *Engine
	server  string
	matches []Match
}

func (c *collector) visit(path Path, value string) {
	if value == "" {
		return
	}
	if c.engine.matches(value) {
		c.matches = append(c.matches, Match{Server: c.server, Path: path, Value: value})
	}
}

// walkNode descends one schema node: its properties, then array items.
func (c *collector) walkNode(path Path, node map[string]interface{}, depth int) error {
	if depth > maxSchemaDepth {
		return fmt.Errorf("%w: nesting exceeds %d at %s", ErrCyclicSchema, maxSchemaDepth, path)
	}
	if ref, ok := node["$ref"].(string); ok && strings.HasPrefix(ref, "#") {
		return fmt.Errorf("%w: local $ref %q at %s", ErrCyclicSchema, ref, path)
	}
	if properties, ok := node["properties"].(map[string]interface{}); ok {
		if err := c.walkProperties(path.Child("properties"), properties, depth+1); err != nil {
			return err
		}
	}
	if items, ok := node["items"].(map[string]interface{}); ok {
		if err := c.walkNode(path.Child("items"), items, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// walkProperties visits every field: its name, type string and description,
// then recurses into nested object and array schemas. JSON decoding loses
// declaration order, so fields are visited in sorted order for stable output.
func (c *collector) walkProperties(path Path, properties map[string]interface{}, depth int) error {
	if depth > maxSchemaDepth {
		return fmt.Errorf("%w: nesting exceeds %d at %s", ErrCyclicSchema, maxSchemaDepth, path)
	}
	if len(properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fieldPath := path.Child(name)
		c.visit(fieldPath, name)
		field, ok := properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		if kind, ok := field["type"].(string); ok {
			c.visit(fieldPath.Child("type"), kind)
		}
		if description, ok := field["description"].(string); ok {
			c.visit(fieldPath.Child("description"), description)
		}
		if err := c.walkNode(fieldPath, field, depth+1); err != nil {
			return err
		}
	}
	return nil
}

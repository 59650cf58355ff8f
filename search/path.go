package search

import "strings"

// Path locates a match inside a capability model as an ordered sequence of
// structural steps, e.g. tools.convert_currency.input_schema.properties.amount.
type Path []string

// Child returns a new path extended by segments; the receiver is not aliased.
func (p Path) Child(segments ...string) Path {
	ret := make(Path, 0, len(p)+len(segments))
	ret = append(ret, p...)
	ret = append(ret, segments...)
	return ret
}

// String renders the dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Section returns the first step (tools, prompts or resources) when present.
func (p Path) Section() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

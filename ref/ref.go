// Package ref parses and formats tool references of the form
// [namespace/]name[@version].
package ref

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidReference is wrapped by every parse failure.
var ErrInvalidReference = errors.New("invalid tool reference")

// namePattern is the unified naming policy applied to both name and namespace.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{2,63}$`)

// Reference identifies an installed or remote MCP tool. It is parsed once at
// command entry and immutable afterwards.
type Reference struct {
	Namespace string
	Name      string
	Version   string
}

// Parse parses text into a Reference, validating name and namespace against
// the unified naming policy. The version, when present, is an opaque
// non-empty token.
func Parse(text string) (Reference, error) {
	var ret Reference
	if text == "" {
		return ret, fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}
	rest := text
	if namespace, remainder, ok := strings.Cut(rest, "/"); ok {
		if strings.Contains(remainder, "/") {
			return ret, fmt.Errorf("%w: %q has more than one namespace separator", ErrInvalidReference, text)
		}
		ret.Namespace = namespace
		rest = remainder
	}
	if name, version, ok := strings.Cut(rest, "@"); ok {
		if version == "" || strings.ContainsAny(version, "/@ ") {
			return ret, fmt.Errorf("%w: %q has a malformed version", ErrInvalidReference, text)
		}
		ret.Version = version
		rest = name
	}
	ret.Name = rest
	if !namePattern.MatchString(ret.Name) {
		return Reference{}, fmt.Errorf("%w: name %q does not match %v", ErrInvalidReference, ret.Name, namePattern)
	}
	if ret.Namespace != "" && !namePattern.MatchString(ret.Namespace) {
		return Reference{}, fmt.Errorf("%w: namespace %q does not match %v", ErrInvalidReference, ret.Namespace, namePattern)
	}
	return ret, nil
}

// String renders the canonical form; Parse(r.String()) round-trips.
func (r Reference) String() string {
	builder := strings.Builder{}
	if r.Namespace != "" {
		builder.WriteString(r.Namespace)
		builder.WriteByte('/')
	}
	builder.WriteString(r.Name)
	if r.Version != "" {
		builder.WriteByte('@')
		builder.WriteString(r.Version)
	}
	return builder.String()
}

// IsVersioned reports whether the reference pins a version.
func (r Reference) IsVersioned() bool {
	return r.Version != ""
}

// Qualified returns namespace/name without the version component.
func (r Reference) Qualified() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "/" + r.Name
}

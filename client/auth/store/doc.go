// Package store defines token and client-configuration stores used by the
// authorization helpers in the parent `auth` package.
//
// Three implementations ship with the package: an in-memory store for CLI and
// unit-test scenarios, a JSON file store and a sqlite store for callers that
// need tokens to survive process restarts.
package store

// Package conv collects tiny coercion helpers shared by the server dispatch
// and the proxy correlation table. They are not part of the public API.
package conv

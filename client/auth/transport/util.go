package transport

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

func clone(r *http.Request) *http.Request {
	cloned := r.Clone(r.Context())
	// deep-copy body so the request can be replayed
	if r.Body != nil {
		buf, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewBuffer(buf))
		cloned.Body = io.NopCloser(bytes.NewBuffer(buf))
	}
	return cloned
}

// parseAuthenticateHeader extracts the resource_metadata URL from a
// WWW-Authenticate challenge (RFC 9728).
func parseAuthenticateHeader(resp *http.Response) (string, error) {
	header := strings.TrimPrefix(resp.Header.Get("WWW-Authenticate"), "Bearer ")
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "resource_metadata=") {
			return strings.Trim(strings.TrimPrefix(part, "resource_metadata="), "\""), nil
		}
	}
	return "", errors.New("WWW-Authenticate missing resource_metadata param")
}

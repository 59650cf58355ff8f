package transport

import "errors"

var (
	// ErrAuthTimeout reports that the interactive authorization flow did not
	// complete within the configured flow timeout.
	ErrAuthTimeout = errors.New("authorization flow timed out")

	// ErrOAuthNotConfigured reports that no OAuth2 client configuration is
	// registered for the issuer that challenged the request.
	ErrOAuthNotConfigured = errors.New("oauth client not configured")
)

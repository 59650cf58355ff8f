// Package secured demonstrates protecting a tool with an OAuth2 policy and
// the client-side recovery: the first call is rejected with an Unauthorized
// error carrying the protected-resource metadata, the auth interceptor
// obtains a token and replays the call with the token attached.
package secured

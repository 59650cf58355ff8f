package transport

import (
	"net/http"
)

// cookieWrap attaches cookies from a Jar before delegating to the inner
// RoundTripper and stores response cookies back. It enables session
// persistence when callers use the RoundTripper directly instead of an
// http.Client.
type cookieWrap struct {
	inner http.RoundTripper
	jar   http.CookieJar
}

// WrapWithCookieJar wraps the RoundTripper so cookies from the jar are sent
// and updated on each request/response.
func WrapWithCookieJar(inner http.RoundTripper, jar http.CookieJar) http.RoundTripper {
	if jar == nil || inner == nil {
		return inner
	}
	return &cookieWrap{inner: inner, jar: jar}
}

func (w *cookieWrap) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone to avoid mutating caller headers
	cloned := req.Clone(req.Context())
	for _, cookie := range w.jar.Cookies(cloned.URL) {
		cloned.AddCookie(cookie)
	}
	resp, err := w.inner.RoundTrip(cloned)
	if err != nil {
		return nil, err
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		w.jar.SetCookies(cloned.URL, cookies)
	}
	return resp, nil
}

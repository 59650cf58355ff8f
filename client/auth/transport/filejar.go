package transport

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/cookiejar"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileJar wraps the standard cookiejar.Jar and persists cookies to a JSON
// file on each update, reloading them on startup. Because cookiejar.Jar does
// not expose enumeration, the jar keeps its own index of every cookie written
// through SetCookies. Good enough for CLI and single-host services.
type FileJar struct {
	mu    sync.Mutex
	inner *cookiejar.Jar
	path  string
	index map[string]persistedCookie
}

type persistedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"httpOnly"`
}

type cookieSnapshot struct {
	Cookies []persistedCookie `json:"cookies"`
}

// NewFileJar creates a cookie jar persisted at path.
func NewFileJar(path string) (*FileJar, error) {
	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	ret := &FileJar{inner: inner, path: path, index: map[string]persistedCookie{}}
	if err = ret.load(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (j *FileJar) Cookies(u *neturl.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inner.Cookies(u)
}

func (j *FileJar) SetCookies(u *neturl.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.inner.SetCookies(u, cookies)
	for _, cookie := range cookies {
		entry := normalize(u, cookie)
		key := entry.Domain + "|" + entry.Path + "|" + entry.Name
		if expired(entry) {
			delete(j.index, key)
			continue
		}
		j.index[key] = entry
	}
	_ = j.save()
}

// normalize fills in the request host for host-only cookies and defaults the
// path, so the persisted entry can be rehydrated without the original URL.
func normalize(u *neturl.URL, cookie *http.Cookie) persistedCookie {
	domain := strings.TrimPrefix(strings.TrimSpace(cookie.Domain), ".")
	if domain == "" {
		domain = u.Host
		if host, _, err := net.SplitHostPort(domain); err == nil && host != "" {
			domain = host
		}
	}
	path := cookie.Path
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	return persistedCookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   domain,
		Path:     path,
		Expires:  cookie.Expires,
		Secure:   cookie.Secure,
		HttpOnly: cookie.HttpOnly,
	}
}

func expired(cookie persistedCookie) bool {
	return !cookie.Expires.IsZero() && time.Now().After(cookie.Expires)
}

func (j *FileJar) save() error {
	snapshot := cookieSnapshot{}
	for _, cookie := range j.index {
		snapshot.Cookies = append(snapshot.Cookies, cookie)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	tmp := j.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

func (j *FileJar) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snapshot cookieSnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	for _, cookie := range snapshot.Cookies {
		if expired(cookie) || cookie.Domain == "" {
			continue
		}
		key := cookie.Domain + "|" + cookie.Path + "|" + cookie.Name
		j.index[key] = cookie
		scheme := "https"
		if !cookie.Secure {
			scheme = "http"
		}
		u := &neturl.URL{Scheme: scheme, Host: cookie.Domain, Path: cookie.Path}
		j.inner.SetCookies(u, []*http.Cookie{{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     cookie.Path,
			Expires:  cookie.Expires,
			Secure:   cookie.Secure,
			HttpOnly: cookie.HttpOnly,
		}})
	}
	return nil
}

var _ http.CookieJar = (*FileJar)(nil)

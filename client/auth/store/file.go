package store

import (
	"crypto"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/mcp-protocol/oauth2/meta"
	"golang.org/x/oauth2"
)

// FileStore persists tokens to a JSON file and delegates every other lookup to
// an in-memory store; client configs and issuer metadata can be rediscovered
// after a restart, tokens cannot.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	memory *memoryStore
	tokens map[TokenKey]*oauth2.Token
}

// NewFileStore creates a Store persisting tokens at the given path. A missing
// file is not an error; a corrupt one is.
func NewFileStore(path string, options ...MemoryStoreOption) (*FileStore, error) {
	ret := &FileStore{
		path:   path,
		memory: NewMemoryStore(options...).(*memoryStore),
		tokens: map[TokenKey]*oauth2.Token{},
	}
	if err := ret.load(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *FileStore) LookupClientConfig(issuer string) (*oauth2.Config, bool) {
	return f.memory.LookupClientConfig(issuer)
}

func (f *FileStore) AddClientConfig(issuer string, client *oauth2.Config) error {
	return f.memory.AddClientConfig(issuer, client)
}

func (f *FileStore) AddAuthorizationServerMetadata(metadata *meta.AuthorizationServerMetadata) error {
	return f.memory.AddAuthorizationServerMetadata(metadata)
}

func (f *FileStore) LookupAuthorizationServerMetadata(issuer string) (*meta.AuthorizationServerMetadata, bool) {
	return f.memory.LookupAuthorizationServerMetadata(issuer)
}

func (f *FileStore) AddIssuerPublicKeys(issuer string, keys map[string]crypto.PublicKey) error {
	return f.memory.AddIssuerPublicKeys(issuer, keys)
}

func (f *FileStore) LookupIssuerPublicKeys(issuer string) (map[string]crypto.PublicKey, bool) {
	return f.memory.LookupIssuerPublicKeys(issuer)
}

func (f *FileStore) LookupToken(key TokenKey) (*oauth2.Token, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	token, ok := f.tokens[key]
	return token, ok
}

func (f *FileStore) AddToken(key TokenKey, token *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[key] = token
	return f.save()
}

type tokenSnapshot struct {
	Tokens map[string]*oauth2.Token `json:"tokens"`
}

func (k TokenKey) id() string { return k.Issuer + "|" + k.Scopes }

func parseTokenKey(id string) (TokenKey, bool) {
	parts := strings.SplitN(id, "|", 2)
	if len(parts) != 2 {
		return TokenKey{}, false
	}
	return TokenKey{Issuer: parts[0], Scopes: parts[1]}, true
}

func (f *FileStore) save() error {
	snapshot := tokenSnapshot{Tokens: map[string]*oauth2.Token{}}
	for key, token := range f.tokens {
		snapshot.Tokens[key.id()] = token
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	// tokens are secrets: owner-only file, atomic replace
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var snapshot tokenSnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	for id, token := range snapshot.Tokens {
		if key, ok := parseTokenKey(id); ok {
			f.tokens[key] = token
		}
	}
	return nil
}

var _ Store = (*FileStore)(nil)

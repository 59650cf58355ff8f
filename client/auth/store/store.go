package store

import (
	"crypto"
	"sync"

	"github.com/viant/afs/http"
	"github.com/viant/afs/url"
	"github.com/viant/mcp-protocol/oauth2/meta"
	"golang.org/x/oauth2"
)

// TokenKey identifies a token by issuer and the space-separated scope set it
// was granted for.
type TokenKey struct {
	Issuer string
	Scopes string
}

// Store is a pluggable persistence layer for tokens, client configurations and
// issuer metadata. The in-memory default suits CLI tools; use the file or
// sqlite implementations to survive restarts.
type Store interface {
	LookupClientConfig(issuer string) (*oauth2.Config, bool)
	AddClientConfig(issuer string, client *oauth2.Config) error
	AddAuthorizationServerMetadata(metadata *meta.AuthorizationServerMetadata) error
	LookupAuthorizationServerMetadata(issuer string) (*meta.AuthorizationServerMetadata, bool)
	AddIssuerPublicKeys(issuer string, keys map[string]crypto.PublicKey) error
	LookupIssuerPublicKeys(issuer string) (map[string]crypto.PublicKey, bool)
	AddToken(key TokenKey, token *oauth2.Token) error
	LookupToken(key TokenKey) (*oauth2.Token, bool)
}

// MemoryStoreOption seeds the in-memory state shared by all store flavours.
type MemoryStoreOption func(*memoryStore)

// WithClientConfig registers an OAuth2 client under the issuer derived from
// its authorization endpoint.
func WithClientConfig(client *oauth2.Config) MemoryStoreOption {
	return func(m *memoryStore) {
		issuer, _ := url.Base(client.Endpoint.AuthURL, http.SecureScheme)
		m.clients[issuer] = client
	}
}

// WithToken seeds a token, e.g. one restored by a caller-managed mechanism.
func WithToken(key TokenKey, token *oauth2.Token) MemoryStoreOption {
	return func(m *memoryStore) {
		m.tokens[key] = token
	}
}

type memoryStore struct {
	mu               sync.RWMutex
	clients          map[string]*oauth2.Config
	issuerMetadata   map[string]*meta.AuthorizationServerMetadata
	issuerPublicKeys map[string]map[string]crypto.PublicKey
	tokens           map[TokenKey]*oauth2.Token
}

// NewMemoryStore creates a Store holding everything in process memory.
func NewMemoryStore(options ...MemoryStoreOption) Store {
	ret := &memoryStore{
		clients:          map[string]*oauth2.Config{},
		issuerMetadata:   map[string]*meta.AuthorizationServerMetadata{},
		issuerPublicKeys: map[string]map[string]crypto.PublicKey{},
		tokens:           map[TokenKey]*oauth2.Token{},
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (m *memoryStore) LookupClientConfig(issuer string) (*oauth2.Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[issuer]
	return client, ok
}

func (m *memoryStore) AddClientConfig(issuer string, client *oauth2.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[issuer] = client
	return nil
}

func (m *memoryStore) AddAuthorizationServerMetadata(metadata *meta.AuthorizationServerMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issuerMetadata[metadata.Issuer] = metadata
	return nil
}

func (m *memoryStore) LookupAuthorizationServerMetadata(issuer string) (*meta.AuthorizationServerMetadata, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	metadata, ok := m.issuerMetadata[issuer]
	return metadata, ok
}

func (m *memoryStore) AddIssuerPublicKeys(issuer string, keys map[string]crypto.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issuerPublicKeys[issuer] = keys
	return nil
}

func (m *memoryStore) LookupIssuerPublicKeys(issuer string) (map[string]crypto.PublicKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys, ok := m.issuerPublicKeys[issuer]
	return keys, ok
}

func (m *memoryStore) AddToken(key TokenKey, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[key] = token
	return nil
}

func (m *memoryStore) LookupToken(key TokenKey) (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[key]
	return token, ok
}

package store

import (
	"context"
	"crypto"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/viant/mcp-protocol/oauth2/meta"
	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"
)

// SQLStore persists tokens in a sqlite database so they survive restarts and
// can be shared by concurrent processes on the same host. Client configs and
// issuer metadata stay in memory, matching FileStore.
type SQLStore struct {
	db     *sql.DB
	memory *memoryStore
	logger *slog.Logger
}

// NewSQLStore opens (or creates) a sqlite token store at the given path.
// The schema is created on first use and parent directories as needed.
func NewSQLStore(path string, options ...MemoryStoreOption) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating token store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}
	// WAL tolerates a reader and a writer from separate processes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	ret := &SQLStore{
		db:     db,
		memory: NewMemoryStore(options...).(*memoryStore),
		logger: slog.Default().With("component", "tokenstore"),
	}
	if err = ret.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token store schema: %w", err)
	}
	return ret, nil
}

func (s *SQLStore) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tokens (
			issuer     TEXT NOT NULL,
			scopes     TEXT NOT NULL,
			token      TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (issuer, scopes)
		)
	`)
	return err
}

// Close releases the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) AddToken(key TokenKey, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	_, err = s.db.ExecContext(context.Background(), `
		INSERT OR REPLACE INTO tokens (issuer, scopes, token, updated_at)
		VALUES (?, ?, ?, ?)
	`, key.Issuer, key.Scopes, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	s.logger.Debug("saved token", "issuer", key.Issuer, "scopes", key.Scopes)
	return nil
}

func (s *SQLStore) LookupToken(key TokenKey) (*oauth2.Token, bool) {
	var data string
	err := s.db.QueryRowContext(context.Background(),
		`SELECT token FROM tokens WHERE issuer = ? AND scopes = ?`,
		key.Issuer, key.Scopes).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("token lookup failed", "issuer", key.Issuer, "error", err)
		return nil, false
	}
	var token oauth2.Token
	if err = json.Unmarshal([]byte(data), &token); err != nil {
		s.logger.Warn("discarding undecodable token", "issuer", key.Issuer, "error", err)
		return nil, false
	}
	return &token, true
}

func (s *SQLStore) LookupClientConfig(issuer string) (*oauth2.Config, bool) {
	return s.memory.LookupClientConfig(issuer)
}

func (s *SQLStore) AddClientConfig(issuer string, client *oauth2.Config) error {
	return s.memory.AddClientConfig(issuer, client)
}

func (s *SQLStore) AddAuthorizationServerMetadata(metadata *meta.AuthorizationServerMetadata) error {
	return s.memory.AddAuthorizationServerMetadata(metadata)
}

func (s *SQLStore) LookupAuthorizationServerMetadata(issuer string) (*meta.AuthorizationServerMetadata, bool) {
	return s.memory.LookupAuthorizationServerMetadata(issuer)
}

func (s *SQLStore) AddIssuerPublicKeys(issuer string, keys map[string]crypto.PublicKey) error {
	return s.memory.AddIssuerPublicKeys(issuer, keys)
}

func (s *SQLStore) LookupIssuerPublicKeys(issuer string) (map[string]crypto.PublicKey, bool) {
	return s.memory.LookupIssuerPublicKeys(issuer)
}

var _ Store = (*SQLStore)(nil)

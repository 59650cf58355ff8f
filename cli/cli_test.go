package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mcpkit/proxy"
)

func TestRun_MissingCommand(t *testing.T) {
	err := Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing command")
}

func TestRun_UnknownCommand(t *testing.T) {
	err := Run([]string{"bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: bogus")
}

func TestRun_Help(t *testing.T) {
	assert.NoError(t, Run([]string{"help"}))
}

func TestRunGrep_RequiresPattern(t *testing.T) {
	err := runGrep([]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern")
}

func TestRunCall_ValidatesArguments(t *testing.T) {
	err := runCall([]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool name")

	err = runCall([]string{"echo", `{"broken`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON arguments")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConnectOptions_ClientOptions(t *testing.T) {
	configPath := writeConfig(t, `
client:
  name: from-config
  transport:
    type: sse
    url: http://config.host:5000/sse
`)

	t.Run("flags only", func(t *testing.T) {
		options := &ConnectOptions{URL: "http://flag.host:5000/mcp"}
		resolved, err := options.clientOptions()
		require.NoError(t, err)
		assert.Equal(t, "http://flag.host:5000/mcp", resolved.Transport.URL)
		assert.Equal(t, "mcpkit-cli", resolved.Name)
	})

	t.Run("config base", func(t *testing.T) {
		options := &ConnectOptions{ConfigFile: configPath}
		resolved, err := options.clientOptions()
		require.NoError(t, err)
		assert.Equal(t, "from-config", resolved.Name)
		assert.Equal(t, "sse", resolved.Transport.Type)
		assert.Equal(t, "http://config.host:5000/sse", resolved.Transport.URL)
	})

	t.Run("flags override config", func(t *testing.T) {
		options := &ConnectOptions{
			ConfigFile: configPath,
			URL:        "http://flag.host:5000/mcp",
			Transport:  "streamable",
		}
		resolved, err := options.clientOptions()
		require.NoError(t, err)
		assert.Equal(t, "http://flag.host:5000/mcp", resolved.Transport.URL)
		assert.Equal(t, "streamable", resolved.Transport.Type)
		assert.Equal(t, "from-config", resolved.Name)
	})

	t.Run("auth flags", func(t *testing.T) {
		options := &ConnectOptions{
			URL:             "http://flag.host:5000/mcp",
			OAuth2ConfigURL: []string{"file:///secure/oauth.json"},
			EncryptionKey:   "blowfish-key",
			TokenStore:      filepath.Join(t.TempDir(), "tokens.json"),
		}
		resolved, err := options.clientOptions()
		require.NoError(t, err)
		require.NotNil(t, resolved.Auth)
		assert.Equal(t, []string{"file:///secure/oauth.json"}, resolved.Auth.OAuth2ConfigURL)
		assert.Equal(t, "blowfish-key", resolved.Auth.EncryptionKey)
		assert.NotEmpty(t, resolved.Auth.TokenStore)
	})
}

func TestProxyOptions_ProxyOptions(t *testing.T) {
	configPath := writeConfig(t, `
proxy:
  url: http://config.host:5000/mcp
  expose: http
  listen: 127.0.0.1:9321
`)

	t.Run("flags only", func(t *testing.T) {
		parsed := &ProxyOptions{Options: proxy.Options{URL: "http://flag.host:5000/mcp"}}
		resolved, err := parsed.proxyOptions()
		require.NoError(t, err)
		assert.Equal(t, "http://flag.host:5000/mcp", resolved.URL)
		assert.Empty(t, resolved.Expose)
	})

	t.Run("flags override config", func(t *testing.T) {
		parsed := &ProxyOptions{
			Options:    proxy.Options{URL: "http://flag.host:5000/mcp"},
			ConfigFile: configPath,
		}
		resolved, err := parsed.proxyOptions()
		require.NoError(t, err)
		assert.Equal(t, "http://flag.host:5000/mcp", resolved.URL)
		assert.Equal(t, "http", resolved.Expose)
		assert.Equal(t, "127.0.0.1:9321", resolved.ListenAddr)
	})
}

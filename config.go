package mcpkit

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/viant/mcpkit/proxy"
)

// Config aggregates client, server and bridge settings loadable from one
// YAML document. ${VAR} references expand from the environment before
// decoding, so secrets and paths never need to be inlined.
type Config struct {
	Client *ClientOptions `yaml:"client,omitempty" json:"client,omitempty"`
	Server *ServerOptions `yaml:"server,omitempty" json:"server,omitempty"`
	Proxy  *proxy.Options `yaml:"proxy,omitempty" json:"proxy,omitempty"`
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mcpkit", "config.yaml"), nil
}

// LoadConfig reads a YAML config, expanding environment references. An
// empty path loads the default location.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	ret := &Config{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return ret, nil
}

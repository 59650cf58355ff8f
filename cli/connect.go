package cli

import (
	"context"

	"github.com/viant/mcpkit"
)

// ConnectOptions are the backend flags shared by every command that opens
// a session. A config file provides the base; flags override it.
type ConnectOptions struct {
	URL       string   `short:"u" long:"url" description:"backend mcp url"`
	Command   string   `short:"e" long:"exec" description:"backend command spawned over stdio"`
	Args      []string `short:"a" long:"arg" description:"backend command argument (repeatable)"`
	Transport string   `short:"T" long:"transport-type" description:"force transport type" choice:"stdio" choice:"sse" choice:"streamable" choice:"http"`

	ConfigFile string `short:"f" long:"config-file" description:"yaml config path"`

	OAuth2ConfigURL []string `short:"c" long:"config" description:"oauth2 client config URL"`
	EncryptionKey   string   `short:"k" long:"key" description:"config encryption key"`
	TokenStore      string   `long:"token-store" description:"token store path"`

	Verbose bool `short:"v" long:"verbose" description:"debug logging"`
}

// clientOptions resolves the effective client configuration.
func (o *ConnectOptions) clientOptions() (*mcpkit.ClientOptions, error) {
	ret := &mcpkit.ClientOptions{}
	if o.ConfigFile != "" {
		config, err := mcpkit.LoadConfig(o.ConfigFile)
		if err != nil {
			return nil, err
		}
		if config.Client != nil {
			ret = config.Client
		}
	}
	if o.URL != "" {
		ret.Transport.URL = o.URL
	}
	if o.Command != "" {
		ret.Transport.Command = o.Command
		ret.Transport.Arguments = o.Args
	}
	if o.Transport != "" {
		ret.Transport.Type = o.Transport
	}
	if len(o.OAuth2ConfigURL) > 0 {
		if ret.Auth == nil {
			ret.Auth = &mcpkit.ClientAuth{}
		}
		ret.Auth.OAuth2ConfigURL = o.OAuth2ConfigURL
		ret.Auth.EncryptionKey = o.EncryptionKey
	}
	if o.TokenStore != "" {
		if ret.Auth == nil {
			ret.Auth = &mcpkit.ClientAuth{}
		}
		ret.Auth.TokenStore = o.TokenStore
	}
	if ret.Name == "" {
		ret.Name = "mcpkit-cli"
	}
	return ret, nil
}

// session opens a backend session from the resolved configuration.
func (o *ConnectOptions) session(ctx context.Context) (*mcpkit.Session, error) {
	options, err := o.clientOptions()
	if err != nil {
		return nil, err
	}
	return mcpkit.Connect(ctx, nil, options)
}

package proxy

import (
	"errors"
	"time"
)

// Expose directives name the frontend transport the bridge serves on.
const (
	ExposeStdio = "stdio"
	ExposeHTTP  = "http"
)

// Options configure the bridge. Exactly one of URL or Command selects the
// backend; the zero value of everything else falls back to defaults in init.
type Options struct {
	URL     string   `yaml:"url,omitempty" json:"url,omitempty" short:"u" long:"url" description:"backend mcp url"`
	Command string   `yaml:"command,omitempty" json:"command,omitempty" short:"e" long:"exec" description:"backend command spawned over stdio"`
	Args    []string `yaml:"args,omitempty" json:"args,omitempty" short:"a" long:"arg" description:"backend command argument (repeatable)"`

	Expose     string `yaml:"expose,omitempty" json:"expose,omitempty" short:"x" long:"expose" description:"frontend transport, stdio by default" choice:"stdio" choice:"http"`
	ListenAddr string `yaml:"listen,omitempty" json:"listen,omitempty" short:"l" long:"listen" description:"http listen address, 127.0.0.1:3000 by default"`

	OAuth2ConfigURL string        `yaml:"oauth2ConfigURL,omitempty" json:"oauth2ConfigURL,omitempty" short:"c" long:"config" description:"oauth2 client config location"`
	EncryptionKey   string        `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty" short:"k" long:"key" description:"encryption key"`
	UseIdToken      bool          `yaml:"useIdToken,omitempty" json:"useIdToken,omitempty" short:"i" long:"id-token" description:"exchange the access token for an id token"`
	FlowTimeout     time.Duration `yaml:"flowTimeout,omitempty" json:"flowTimeout,omitempty" long:"flow-timeout" description:"bound on the interactive authorization flow, 0 waits forever"`

	CallTimeout time.Duration `yaml:"callTimeout,omitempty" json:"callTimeout,omitempty" long:"call-timeout" description:"per forwarded call timeout, 0 disables"`

	ElicitFallback    bool   `yaml:"elicitFallback,omitempty" json:"elicitFallback,omitempty" long:"elicit" description:"answer backend elicitation with a local web form when the frontend lacks support"`
	ElicitListenAddr  string `yaml:"elicitListen,omitempty" json:"elicitListen,omitempty" long:"elicit-listen" description:"elicitation form listen address, 127.0.0.1:0 by default"`
	ElicitOpenBrowser bool   `yaml:"elicitOpenBrowser,omitempty" json:"elicitOpenBrowser,omitempty" long:"elicit-open" description:"open the browser for each elicitation form"`

	Name string `yaml:"name,omitempty" json:"name,omitempty" long:"name" description:"client name presented to the backend"`
}

func (o *Options) init() {
	if o.Expose == "" {
		o.Expose = ExposeStdio
	}
	if o.ListenAddr == "" {
		o.ListenAddr = "127.0.0.1:3000"
	}
	if o.ElicitListenAddr == "" {
		o.ElicitListenAddr = "127.0.0.1:0"
	}
	if o.Name == "" {
		o.Name = "mcpkit-proxy"
	}
}

func (o *Options) validate() error {
	if (o.URL == "") == (o.Command == "") {
		return errors.New("exactly one of url or exec is required")
	}
	if o.Expose != ExposeStdio && o.Expose != ExposeHTTP {
		return errors.New("expose must be stdio or http")
	}
	return nil
}

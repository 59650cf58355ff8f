package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/viant/mcpkit"
	"github.com/viant/mcpkit/proxy"
)

// ProxyOptions configure the bridge command. A config file provides the
// base; flags override individual fields.
type ProxyOptions struct {
	proxy.Options
	ConfigFile string `short:"f" long:"config-file" description:"yaml config path"`
	Verbose    bool   `short:"v" long:"verbose" description:"debug logging"`
}

// proxyOptions resolves the effective bridge configuration.
func (o *ProxyOptions) proxyOptions() (*proxy.Options, error) {
	ret := &o.Options
	if o.ConfigFile == "" {
		return ret, nil
	}
	config, err := mcpkit.LoadConfig(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if config.Proxy == nil {
		return ret, nil
	}
	base := config.Proxy
	if ret.URL != "" {
		base.URL = ret.URL
	}
	if ret.Command != "" {
		base.Command = ret.Command
		base.Args = ret.Args
	}
	if ret.Expose != "" {
		base.Expose = ret.Expose
	}
	if ret.ListenAddr != "" {
		base.ListenAddr = ret.ListenAddr
	}
	if ret.OAuth2ConfigURL != "" {
		base.OAuth2ConfigURL = ret.OAuth2ConfigURL
		base.EncryptionKey = ret.EncryptionKey
	}
	if ret.UseIdToken {
		base.UseIdToken = true
	}
	if ret.FlowTimeout > 0 {
		base.FlowTimeout = ret.FlowTimeout
	}
	if ret.CallTimeout > 0 {
		base.CallTimeout = ret.CallTimeout
	}
	if ret.ElicitFallback {
		base.ElicitFallback = true
	}
	if ret.ElicitListenAddr != "" {
		base.ElicitListenAddr = ret.ElicitListenAddr
	}
	if ret.ElicitOpenBrowser {
		base.ElicitOpenBrowser = true
	}
	if ret.Name != "" {
		base.Name = ret.Name
	}
	return base, nil
}

func runProxy(args []string) error {
	parsed := &ProxyOptions{}
	if _, err := flags.ParseArgs(parsed, args); err != nil {
		return err
	}
	setupLogging(parsed.Verbose)
	options, err := parsed.proxyOptions()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	service, err := proxy.New(ctx, options)
	if err != nil {
		return err
	}
	defer service.Close()
	return service.Serve(ctx)
}

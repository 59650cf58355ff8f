package mcpkit

import (
	"fmt"
	"net/http"

	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcpkit/server"
	"github.com/viant/mcpkit/server/auth"
)

// ServerOptions configures the server role: identity, exposure transport
// and authorization.
type ServerOptions struct {
	Name            string           `yaml:"name" json:"name"`
	Version         string           `yaml:"version" json:"version"`
	ProtocolVersion string           `yaml:"protocol" json:"protocol" short:"p" long:"protocol" description:"mcp protocol version"`
	Instructions    string           `yaml:"instructions,omitempty" json:"instructions,omitempty"`
	LoggerName      string           `yaml:"loggerName" json:"loggerName"`
	Transport       *ServerTransport `yaml:"transport" json:"transport"`
}

// ServerTransport selects how the server is exposed.
type ServerTransport struct {
	Type           string                      `yaml:"type" json:"type"`
	Options        *ServerTransportOptions     `yaml:"options" json:"options"`
	Auth           *ServerAuth                 `yaml:"-" json:"-"`
	CustomHandlers map[string]http.HandlerFunc `yaml:"-" json:"-"`
}

// ServerTransportOptions carries HTTP exposure details.
type ServerTransportOptions struct {
	Type          string       `yaml:"type" json:"type" short:"T" long:"transport-type" description:"transport type" choice:"stdio" choice:"sse" choice:"streamable"`
	Port          int          `yaml:"port" json:"port"`
	Cors          *server.Cors `yaml:"cors" json:"cors"`
	SSEURI        string       `yaml:"sseURI" json:"sseURI"`
	SSEMessageURI string       `yaml:"sseMessageURI" json:"sseMessageURI"`
	StreamableURI string       `yaml:"streamableURI" json:"streamableURI"`
	RootRedirect  bool         `yaml:"rootRedirect" json:"rootRedirect"`
}

// ServerAuth wires an authorization policy into the HTTP and JSON-RPC
// layers. When only Policy is set, the bearer middleware and the
// protected-resource metadata handler are derived from it.
type ServerAuth struct {
	Policy                    *auth.Policy
	ProtectedResourcesHandler http.HandlerFunc
	Middleware                server.Middleware
}

// NewServer assembles a server from declarative options.
func NewServer(newHandler protoserver.NewHandler, options *ServerOptions) (*server.Server, error) {
	if newHandler == nil {
		return nil, fmt.Errorf("new handler was nil")
	}

	serverOptions := []server.Option{server.WithNewHandler(newHandler)}

	// Switches the HTTP transport to streamable mode.
	useStreaming := false

	if options != nil {
		if options.Name != "" || options.Version != "" {
			impl := schema.Implementation{Name: options.Name, Version: options.Version}
			serverOptions = append(serverOptions, server.WithImplementation(impl))
		}
		if options.ProtocolVersion != "" {
			serverOptions = append(serverOptions, server.WithProtocolVersion(options.ProtocolVersion))
		}
		if options.Instructions != "" {
			serverOptions = append(serverOptions, server.WithInstructions(options.Instructions))
		}
		if options.LoggerName != "" {
			serverOptions = append(serverOptions, server.WithLoggerName(options.LoggerName))
		}

		if transportOptions := options.Transport; transportOptions != nil {
			// Top-level transport type declaration wins.
			switch transportOptions.Type {
			case "streamable":
				useStreaming = true
			case "sse":
				useStreaming = false
			}

			if transportOptions.Options != nil {
				if transportOptions.Options.Port > 0 {
					serverOptions = append(serverOptions, server.WithEndpointAddress(fmt.Sprintf(":%v", transportOptions.Options.Port)))
				}
				switch transportOptions.Options.Type {
				case "streamable":
					useStreaming = true
				case "sse":
					useStreaming = false
				}
				if transportOptions.Options.Cors != nil {
					serverOptions = append(serverOptions, server.WithCORS(transportOptions.Options.Cors))
				}
				if transportOptions.Options.SSEURI != "" {
					serverOptions = append(serverOptions, server.WithSSEURI(transportOptions.Options.SSEURI))
				}
				if transportOptions.Options.SSEMessageURI != "" {
					serverOptions = append(serverOptions, server.WithSSEMessageURI(transportOptions.Options.SSEMessageURI))
				}
				if transportOptions.Options.StreamableURI != "" {
					serverOptions = append(serverOptions, server.WithStreamableURI(transportOptions.Options.StreamableURI))
				}
				if transportOptions.Options.RootRedirect {
					serverOptions = append(serverOptions, server.WithRootRedirect())
				}
			}

			if authOptions := transportOptions.Auth; authOptions != nil {
				if policy := authOptions.Policy; policy != nil {
					serverOptions = append(serverOptions, server.WithJRPCAuthorizer(policy.Authorizer()))
					if authOptions.Middleware == nil {
						authOptions.Middleware = auth.BearerMiddleware
					}
					if authOptions.ProtectedResourcesHandler == nil && policy.Global != nil && policy.Global.ProtectedResourceMetadata != nil {
						authOptions.ProtectedResourcesHandler = auth.ProtectedResourcesHandler(policy.Global.ProtectedResourceMetadata)
					}
				}
				if authOptions.ProtectedResourcesHandler != nil {
					serverOptions = append(serverOptions, server.WithProtectedResourcesHandler(authOptions.ProtectedResourcesHandler))
				}
				if authOptions.Middleware != nil {
					serverOptions = append(serverOptions, server.WithAuthorizer(authOptions.Middleware))
				}
			}

			for path, handler := range transportOptions.CustomHandlers {
				serverOptions = append(serverOptions, server.WithCustomHTTPHandler(path, handler))
			}
		}
	}

	srv, err := server.New(serverOptions...)
	if err != nil {
		return nil, err
	}
	if useStreaming {
		srv.UseStreamableHTTP(true)
	}
	return srv, nil
}

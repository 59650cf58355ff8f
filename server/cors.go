package server

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	AllowOriginHeader      = "Access-Control-Allow-Origin"
	AllowHeadersHeader     = "Access-Control-Allow-Headers"
	AllowMethodsHeader     = "Access-Control-Allow-Methods"
	RequestMethodHeader    = "Access-Control-Request-Method"
	AllowCredentialsHeader = "Access-Control-Allow-Credentials"
	ExposeHeadersHeader    = "Access-Control-Expose-Headers"
	MaxAgeHeader           = "Access-Control-Max-Age"
	headerSeparator        = ", "
)

// Cors configures cross-origin response headers.
type Cors struct {
	AllowCredentials *bool    `yaml:"AllowCredentials,omitempty" json:"allowCredentials,omitempty"`
	AllowHeaders     []string `yaml:"AllowHeaders,omitempty" json:"allowHeaders,omitempty"`
	AllowMethods     []string `yaml:"AllowMethods,omitempty" json:"allowMethods,omitempty"`
	AllowOrigins     []string `yaml:"AllowOrigins,omitempty" json:"allowOrigins,omitempty"`
	ExposeHeaders    []string `yaml:"ExposeHeaders,omitempty" json:"exposeHeaders,omitempty"`
	MaxAge           *int64   `yaml:"MaxAge,omitempty" json:"maxAge,omitempty"`
}

// OriginMap indexes allowed origins for O(1) validation.
func (c *Cors) OriginMap() map[string]bool {
	result := make(map[string]bool, len(c.AllowOrigins))
	for _, origin := range c.AllowOrigins {
		result[origin] = true
	}
	return result
}

type corsHandler struct {
	*Cors
	origins map[string]bool
}

func (h *corsHandler) Middleware(next http.Handler) http.Handler {
	if h.origins == nil {
		h.origins = h.Cors.OriginMap()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.setHeaders(w, r)
		next.ServeHTTP(w, r)
	})
}

func (h *corsHandler) setHeaders(writer http.ResponseWriter, request *http.Request) {
	c := h.Cors
	if c == nil {
		return
	}
	origin := request.Header.Get("Origin")
	switch {
	case h.origins["*"] && origin == "":
		writer.Header().Set(AllowOriginHeader, "*")
	case h.origins["*"] || h.origins[origin]:
		if origin != "" {
			writer.Header().Set(AllowOriginHeader, origin)
		}
	}
	if c.AllowMethods != nil {
		writer.Header().Set(AllowMethodsHeader, request.Method)
	}
	if request.Method == http.MethodOptions {
		if requested := request.Header.Get(RequestMethodHeader); requested != "" {
			writer.Header().Set(AllowMethodsHeader, requested)
		}
	}
	if len(c.AllowHeaders) > 0 {
		allowed := strings.Join(c.AllowHeaders, headerSeparator)
		if allowed == "*" {
			allowed = "Content-Type,Authorization,X-MCP-Authorization"
		}
		writer.Header().Set(AllowHeadersHeader, allowed)
	}
	if c.AllowCredentials != nil {
		writer.Header().Set(AllowCredentialsHeader, strconv.FormatBool(*c.AllowCredentials))
	}
	if c.MaxAge != nil {
		writer.Header().Set(MaxAgeHeader, strconv.Itoa(int(*c.MaxAge)))
	}
	if len(c.ExposeHeaders) > 0 {
		exposed := strings.Join(c.ExposeHeaders, headerSeparator)
		if exposed == "*" {
			exposed = "Content-Type,Authorization"
		}
		writer.Header().Set(ExposeHeadersHeader, exposed)
	}
}

func defaultCors() *Cors {
	allowCredentials := true
	return &Cors{
		AllowCredentials: &allowCredentials,
		AllowHeaders:     []string{"*"},
		AllowMethods:     []string{"*"},
		AllowOrigins:     []string{"*"},
		ExposeHeaders:    []string{"*"},
	}
}

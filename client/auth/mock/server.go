package mock

import "net/http/httptest"

// HTTPTestAuthorizationServer runs the mock authorization server on an
// httptest listener, with the issuer set to the listener URL.
type HTTPTestAuthorizationServer struct {
	*AuthorizationService
	Server *httptest.Server
	Issuer string
}

func NewHTTPTestAuthorizationServer() (*HTTPTestAuthorizationServer, error) {
	service, err := NewAuthorizationService()
	if err != nil {
		return nil, err
	}
	ret := &HTTPTestAuthorizationServer{AuthorizationService: service}
	ret.Server = httptest.NewServer(service.Handler())
	service.Issuer = ret.Server.URL
	ret.Issuer = ret.Server.URL
	return ret, nil
}

func (s *HTTPTestAuthorizationServer) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
	s.AuthorizationService = nil
	s.Server = nil
}

package bootstrap

import (
	"context"
	"net"
	"net/http"
	"time"
)

// newServer builds the HTTP server. Request contexts derive from a base context that
// Shutdown cancels, so long-lived streams such as /auth/events return instead of
// holding Shutdown until its deadline. No WriteTimeout for the same streams.
func newServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

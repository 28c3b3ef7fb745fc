package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Generous write timeout: the SMS gateway call inside a transition
		// can take up to 15s before the handler responds.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

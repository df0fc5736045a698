// README: HTTP server construction; timeouts allow for slow cold-cache route planning.
package http

import (
	"net/http"
	"time"
)

func NewServer(addr string, handler http.Handler, turnTimeout time.Duration) *http.Server {
	if turnTimeout <= 0 {
		turnTimeout = 90 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      turnTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

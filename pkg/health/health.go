// Package health serves health checks over HTTP at /health endpoint.
package health

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

type logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Listener is an http health check listener
type Listener struct {
	logger   logger
	port     int
	projects []string
	donech   chan struct{}
	srv      *http.Server
}

// New create a new http health check listener, reporting the watched projects
func New(log logger, port int, projects []string) *Listener {
	return &Listener{
		logger:   log,
		port:     port,
		projects: projects,
		donech:   make(chan struct{}),
	}
}

func (h *Listener) healthCheckReply(w http.ResponseWriter, r *http.Request) {
	reply := fmt.Sprintf("ok\nwatching: %s\n", strings.Join(h.projects, ","))
	if _, err := io.WriteString(w, reply); err != nil {
		h.logger.Warnf("Failed to reply to http healtcheck from %s: %s", r.RemoteAddr, err)
	}
}

// Start exposes an http healthcheck handler. A zero port disables it.
func (h *Listener) Start() (*Listener, error) {
	if h.port == 0 {
		return h, nil
	}

	h.logger.Infof("Starting http healtcheck handler")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.healthCheckReply)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", h.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %v", h.port, err)
	}

	h.srv = &http.Server{Handler: mux}

	go func() {
		defer close(h.donech)
		err := h.srv.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			h.logger.Errorf("healthcheck server failed: %v", err)
		}
	}()

	return h, nil
}

// Stop halts the http health check handler
func (h *Listener) Stop() {
	if h.srv == nil {
		return
	}

	h.logger.Infof("Stopping http healtcheck handler")

	err := h.srv.Shutdown(context.TODO())
	if err != nil {
		h.logger.Warnf("failed to stop http healtcheck handler: %v", err)
	}

	<-h.donech
}

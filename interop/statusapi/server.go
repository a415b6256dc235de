// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package statusapi serves what the running client is doing over HTTP.
package statusapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/metering"
)

// Info describes the client; it does not change while the client runs.
type Info struct {
	Role      string `json:"role"`
	Topic     string `json:"topic"`
	DomainID  uint16 `json:"domainId"`
	Transport string `json:"transport"`
	Qos       string `json:"qos"`
}

// SnapshotSource is implemented by *metering.Counters.
type SnapshotSource interface {
	Snapshot() metering.Snapshot
}

// Server is the status HTTP server.
//
// Listen and Serve are separate so the listening port is known, and
// failures to bind are reported, before the control loop starts.
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
}

func NewServer(addr string, info Info, counters SnapshotSource) *Server {
	return &Server{
		addr:   addr,
		server: &http.Server{Handler: NewRouter(info, counters)},
	}
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	log.Debugf("Status API listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound address once Listen succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve requests until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()

	select {
	case err := <-s.serveAsync():
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *Server) serveAsync() chan error {
	errs := make(chan error, 1)
	go func() {
		err := s.server.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errs <- err
	}()
	return errs
}

// Close forcefully closes listeners & connections
func (s *Server) Close() error {
	err := s.server.Close()
	if s.listener != nil {
		// not tracked by the http.Server until Serve runs
		s.listener.Close()
	}
	if err == nil {
		log.Debug("Status API closed")
	}
	return err
}

func NewRouter(info Info, counters SnapshotSource) *chi.Mux {
	r := chi.NewRouter()
	r.Use(accessLogDecorator)

	r.Get("/ping", PingHandler)
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) { StatusHandler(w, r, info, counters) })
	r.NotFound(NotFoundHandler)
	return r
}

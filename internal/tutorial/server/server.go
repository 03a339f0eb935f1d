// Package server hosts the pre-built application bundle for recording. The
// server is the pipeline's one long-lived shared resource: started once
// before recording, stopped exactly once on every exit path.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const bindTimeout = 5 * time.Second

// Server is a scoped static file server. Stop is idempotent.
type Server struct {
	httpServer *http.Server
	addr       string
	stopOnce   sync.Once
	done       chan error
}

// Start binds addr and serves dir. Failure to bind within the timeout is
// fatal to the run: recording cannot proceed without the application.
func Start(dir, addr string) (*Server, error) {
	listenCtx, cancel := context.WithTimeout(context.Background(), bindTimeout)
	defer cancel()

	var lc net.ListenConfig
	ln, err := lc.Listen(listenCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding app server on %s: %w", addr, err)
	}

	s := &Server{
		httpServer: &http.Server{Handler: http.FileServer(http.Dir(dir))},
		addr:       ln.Addr().String(),
		done:       make(chan error, 1),
	}

	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.done <- err
		}
		close(s.done)
	}()

	logrus.WithFields(logrus.Fields{
		"addr": s.addr,
		"dir":  dir,
	}).Info("app server started")
	return s, nil
}

// Addr returns the bound address, useful when addr was ":0".
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the server down. Safe to call more than once and on every exit
// path; only the first call does work.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			_ = s.httpServer.Close()
		}
		if err := <-s.done; err != nil {
			logrus.WithError(err).Warn("app server exited with error")
		}
		logrus.Info("app server stopped")
	})
}

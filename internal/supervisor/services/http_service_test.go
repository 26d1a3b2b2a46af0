// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// stubServer blocks in ListenAndServe until Shutdown, unless listenErr is set.
type stubServer struct {
	listenErr   error
	shutdownErr error
	listening   chan struct{}
	stop        chan struct{}
	shutdowns   atomic.Int32
}

func newStubServer() *stubServer {
	return &stubServer{listening: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (s *stubServer) ListenAndServe() error {
	select {
	case s.listening <- struct{}{}:
	default:
	}
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *stubServer) Shutdown(context.Context) error {
	if s.shutdowns.Add(1) == 1 {
		close(s.stop)
	}
	return s.shutdownErr
}

func serveAsync(svc suture.Service, ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return errCh
}

func awaitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestNewHTTPServerServiceTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Duration
	}{
		{30 * time.Second, 30 * time.Second},
		{0, 10 * time.Second},
		{-time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := NewHTTPServerService(newStubServer(), tt.in).shutdownTimeout; got != tt.want {
			t.Errorf("timeout(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if s := NewHTTPServerService(newStubServer(), 0).String(); s != "http-server" {
		t.Errorf("String() = %q", s)
	}
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newStubServer()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(NewHTTPServerService(server, time.Second), ctx)

	<-server.listening
	cancel()

	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if n := server.shutdowns.Load(); n != 1 {
		t.Errorf("Shutdown calls = %d, want 1", n)
	}
}

func TestHTTPServerServiceListenFailure(t *testing.T) {
	t.Parallel()

	bindErr := errors.New("bind: address already in use")
	server := newStubServer()
	server.listenErr = bindErr

	err := NewHTTPServerService(server, time.Second).Serve(context.Background())
	if !errors.Is(err, bindErr) {
		t.Errorf("Serve = %v, want wrapped bind error", err)
	}
}

func TestHTTPServerServiceShutdownFailure(t *testing.T) {
	t.Parallel()

	drainErr := errors.New("context deadline exceeded while draining")
	server := newStubServer()
	server.shutdownErr = drainErr

	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(NewHTTPServerService(server, time.Second), ctx)
	<-server.listening
	cancel()

	if err := awaitErr(t, errCh); !errors.Is(err, drainErr) {
		t.Errorf("Serve = %v, want shutdown error", err)
	}
}

func TestHTTPServerServiceRealServer(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Addr:              "127.0.0.1:0",
		Handler:           http.NotFoundHandler(),
		ReadHeaderTimeout: time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := serveAsync(NewHTTPServerService(srv, time.Second), ctx)

	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := awaitErr(t, errCh); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

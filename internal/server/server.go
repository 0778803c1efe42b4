package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/http2"

	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/logger"
	"example.com/simplewebserver/internal/util"
)

// Server is one engine instance: it owns a listening socket per bind address
// of its LaunchConfig and serves every accepted connection on its own
// goroutine. A Server runs at most once; a scheme or privilege change is a
// new LaunchConfig and a new Server.
type Server struct {
	launch  config.LaunchConfig
	cfg     *config.Config
	log     *logger.Logger
	handler http.Handler

	httpServer *http.Server
	tlsEnabled bool

	mu        sync.Mutex
	listeners []net.Listener
	started   bool
	stopped   bool

	wg       sync.WaitGroup
	serveErr chan error
	doneChan chan struct{}
}

// NewServer creates a new Server instance. For the https scheme the
// certificate pair named in cfg.TLS is loaded here so that a bad pair fails
// before anything is bound.
func NewServer(lc config.LaunchConfig, cfg *config.Config, lg *logger.Logger, handler http.Handler) (*Server, error) {
	if lc.IsZero() {
		return nil, fmt.Errorf("launch config cannot be empty")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if lg == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}

	s := &Server{
		launch:   lc,
		cfg:      cfg,
		log:      lg,
		handler:  handler,
		serveErr: make(chan error, len(lc.BindAddresses())),
		doneChan: make(chan struct{}),
	}
	s.httpServer = &http.Server{
		Handler:  handler,
		ErrorLog: log.New(&errorLogWriter{lg: lg}, "", 0),
	}

	if lc.Scheme() == config.SchemeHTTPS {
		tlsCfg, err := loadTLSConfig(cfg.TLS)
		if err != nil {
			return nil, err
		}
		s.httpServer.TLSConfig = tlsCfg
		if err := http2.ConfigureServer(s.httpServer, &http2.Server{}); err != nil {
			return nil, fmt.Errorf("failed to enable HTTP/2: %w", err)
		}
		s.tlsEnabled = true
	}
	return s, nil
}

func loadTLSConfig(tc *config.TLSConfig) (*tls.Config, error) {
	if tc == nil || tc.CertFile == "" || tc.KeyFile == "" {
		return nil, fmt.Errorf("https requires tls.cert_file and tls.key_file in the configuration")
	}
	cert, err := tls.LoadX509KeyPair(tc.CertFile, tc.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair from %s and %s: %w", tc.CertFile, tc.KeyFile, err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// initializeListeners binds every address of the LaunchConfig. On failure the
// listeners bound so far are closed again.
func (s *Server) initializeListeners() error {
	binds := s.launch.BindAddresses()
	listeners := make([]net.Listener, 0, len(binds))
	for _, b := range binds {
		ln, err := util.CreateListener("tcp", b.String())
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			if util.IsAddrInUse(err) {
				return fmt.Errorf("port %d is not available: %w", b.Port, err)
			}
			return err
		}
		listeners = append(listeners, ln)
		s.log.Info("Successfully created new listener", logger.LogFields{"address": b.String(), "localAddr": ln.Addr().String()})
	}
	s.listeners = listeners
	return nil
}

// Start binds all listeners and starts their accept loops. It returns once
// the server is accepting.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("server already started")
	}
	if err := s.initializeListeners(); err != nil {
		return err
	}
	s.started = true

	for i, ln := range s.listeners {
		s.wg.Add(1)
		go s.serve(ln, s.launch.URL(i))
	}
	go func() {
		s.wg.Wait()
		close(s.doneChan)
	}()
	return nil
}

// serve is one accept loop. http.Server accepts the next connection before
// handling the current one on a fresh goroutine, so a slow client never
// holds up acceptance.
func (s *Server) serve(ln net.Listener, url string) {
	defer s.wg.Done()
	s.log.Info("Listening for requests", logger.LogFields{"url": url})

	var err error
	if s.tlsEnabled {
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("Accept loop stopped", logger.LogFields{"url": url, "error": err.Error()})
		s.serveErr <- fmt.Errorf("serving %s: %w", url, err)
	}
}

// Stop stops accepting, lets in-flight responses drain until ctx is done, then
// closes whatever is still open. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	s.log.Info("Stopping server", logger.LogFields{"root": s.launch.RootFolder()})
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.log.Warn("Graceful shutdown timed out, closing remaining connections", logger.LogFields{"error": err.Error()})
		if cerr := s.httpServer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	s.wg.Wait()
	return err
}

// Run starts the server and blocks until ctx is cancelled or an accept loop
// fails, then stops with the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Wait(ctx)
}

// Wait blocks a started server until ctx is cancelled or an accept loop
// fails, then stops it with the configured grace period.
func (s *Server) Wait(ctx context.Context) error {
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-s.serveErr:
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// Done is closed once every accept loop has returned.
func (s *Server) Done() <-chan struct{} {
	return s.doneChan
}

// Addrs returns the bound listener addresses.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]net.Addr, len(s.listeners))
	for i, ln := range s.listeners {
		addrs[i] = ln.Addr()
	}
	return addrs
}

// LaunchConfig returns the tuple this engine runs under.
func (s *Server) LaunchConfig() config.LaunchConfig {
	return s.launch
}

// errorLogWriter routes net/http's internal error log into the structured logger.
type errorLogWriter struct {
	lg *logger.Logger
}

func (w *errorLogWriter) Write(p []byte) (int, error) {
	w.lg.Warn("http server error", logger.LogFields{"error": strings.TrimSpace(string(p))})
	return len(p), nil
}

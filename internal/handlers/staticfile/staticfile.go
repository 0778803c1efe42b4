// Package staticfile implements the per-request pipeline of the server:
// resolve the URL to a file, classify it, gate the caller, stream the bytes.
package staticfile

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"example.com/simplewebserver/internal/config"
	"example.com/simplewebserver/internal/logger"
	"example.com/simplewebserver/internal/policy"
	"example.com/simplewebserver/internal/server"
	"example.com/simplewebserver/internal/util"
)

// IncomingRequest is what the pipeline needs from one parsed request.
type IncomingRequest struct {
	RawURLPath     string
	OriginIsLocal  bool
	HasRangeHeader bool
	RemoteAddress  string
}

// NewIncomingRequest extracts an IncomingRequest from r.
func NewIncomingRequest(r *http.Request) IncomingRequest {
	localAddr, _ := r.Context().Value(http.LocalAddrContextKey).(net.Addr)
	return IncomingRequest{
		RawURLPath:     r.URL.EscapedPath(),
		OriginIsLocal:  util.IsLocalOrigin(r.RemoteAddr, localAddr),
		HasRangeHeader: r.Header.Get("Range") != "",
		RemoteAddress:  r.RemoteAddr,
	}
}

// ResolvedAsset is computed fresh for every request; nothing is cached
// because the served folder changes while the server runs.
type ResolvedAsset struct {
	RequestPath  string
	AbsolutePath string
	// Exists is set by Locate and Serve: the path stays inside the root and names a
	// regular file. Classify leaves it false.
	Exists bool
	policy.Classification
}

// StaticFileServer handles serving static files.
type StaticFileServer struct {
	launch   config.LaunchConfig
	resolver PathResolver
	mimes    *MimeTypeResolver
	logger   *logger.Logger
	console  *logger.Console
}

// New creates the handler for one engine instance. console may be nil.
func New(lc config.LaunchConfig, mimes *MimeTypeResolver, lg *logger.Logger, console *logger.Console) (*StaticFileServer, error) {
	if lc.IsZero() {
		return nil, fmt.Errorf("staticfile: launch config cannot be empty")
	}
	if lg == nil {
		return nil, fmt.Errorf("staticfile: logger cannot be nil")
	}
	if mimes == nil {
		mimes, _ = NewMimeTypeResolver(nil)
	}
	return &StaticFileServer{
		launch:   lc,
		resolver: NewPathResolver(lc.RootFolder()),
		mimes:    mimes,
		logger:   lg,
		console:  console,
	}, nil
}

// ServeHTTP implements http.Handler. Every request ends in exactly one
// status line and one access log entry.
func (s *StaticFileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	outcome := s.Serve(w, NewIncomingRequest(r))
	s.logger.Access(r, outcome.Status(), outcome.Kind.String(), outcome.Bytes, time.Since(start))
}

// Classify resolves and classifies req without touching the file system.
func (s *StaticFileServer) Classify(req IncomingRequest) ResolvedAsset {
	reqPath := RequestPath(req.RawURLPath)
	return ResolvedAsset{
		RequestPath:    reqPath,
		AbsolutePath:   s.resolver.Resolve(req.RawURLPath),
		Classification: policy.Classify(reqPath, req.HasRangeHeader),
	}
}

// Locate classifies req and checks the file system for the asset.
func (s *StaticFileServer) Locate(req IncomingRequest) ResolvedAsset {
	asset := s.Classify(req)
	asset.Exists = s.resolver.Contains(asset.AbsolutePath) && isRegularFile(asset.AbsolutePath)
	return asset
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Serve runs the pipeline for req and writes the response to w.
func (s *StaticFileServer) Serve(w http.ResponseWriter, req IncomingRequest) Outcome {
	asset := s.Classify(req)
	asset.Apply(w.Header())

	if !policy.Permit(req.OriginIsLocal, s.launch.AllowExternalConnections()) {
		s.console.Log("Forbidden.", logger.ColorRed)
		s.logger.Debug("Rejected non-local request", logger.LogFields{"remote": req.RemoteAddress, "path": asset.RequestPath})
		n := server.WriteErrorResponse(w, http.StatusForbidden)
		return Outcome{Kind: Forbidden, Bytes: int64(n)}
	}

	// Dot-dot segments may not climb out of the root.
	if !s.resolver.Contains(asset.AbsolutePath) {
		s.logger.Warn("Rejected path outside root", logger.LogFields{"remote": req.RemoteAddress, "path": asset.RequestPath})
		return s.notFound(w)
	}
	if asset.Exists = isRegularFile(asset.AbsolutePath); !asset.Exists {
		return s.notFound(w)
	}

	if asset.ContentType == "" {
		if mimeType := s.mimes.GetMimeType(asset.RequestPath); mimeType != "" {
			w.Header().Set("Content-Type", mimeType)
		}
	}

	outcome := Stream(asset.AbsolutePath, w, s.logger)
	switch outcome.Kind {
	case NotFound:
		return s.notFound(w)
	case Served:
		s.console.Logf(logger.ColorDefault, "Serving: %s (%s) %s", asset.RequestPath, w.Header().Get("Content-Type"), humanize.Bytes(uint64(outcome.Bytes)))
	case StreamError:
		s.console.Logf(logger.ColorYellow, "Error reading file: %s (%s)", asset.RequestPath, outcome.Reason)
	}
	return outcome
}

func (s *StaticFileServer) notFound(w http.ResponseWriter) Outcome {
	s.console.Log("Not found", logger.ColorYellow)
	n := server.WriteErrorResponse(w, http.StatusNotFound)
	return Outcome{Kind: NotFound, Bytes: int64(n)}
}

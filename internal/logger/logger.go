package logger

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/simplewebserver/internal/config"
)

// LogFields carries structured fields for a single log line.
type LogFields map[string]interface{}

// Logger is a general logger that contains specific loggers for access and errors.
// Both are safe for concurrent use by request handlers: every event is emitted
// with a single Write on a synchronised writer.
type Logger struct {
	errorLog  zerolog.Logger
	accessLog *zerolog.Logger // nil when access logging is disabled

	mu    sync.Mutex
	files []*os.File
}

// NewLogger creates and configures a new Logger instance.
func NewLogger(cfg *config.LoggingConfig) (*Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging configuration cannot be nil")
	}

	l := &Logger{}

	errorTarget := "stderr"
	errorFormat := config.LogFormatJSON
	if cfg.ErrorLog != nil {
		if cfg.ErrorLog.Target != nil {
			errorTarget = *cfg.ErrorLog.Target
		}
		if cfg.ErrorLog.Format != "" {
			errorFormat = cfg.ErrorLog.Format
		}
	}
	errorOut, err := l.openTarget(errorTarget)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log: %w", err)
	}
	l.errorLog = newZerolog(errorOut, errorFormat).Level(zerologLevel(cfg.LogLevel))

	if cfg.AccessLog != nil && (cfg.AccessLog.Enabled == nil || *cfg.AccessLog.Enabled) {
		accessTarget := "stdout"
		if cfg.AccessLog.Target != nil {
			accessTarget = *cfg.AccessLog.Target
		}
		accessOut, err := l.openTarget(accessTarget)
		if err != nil {
			l.CloseLogFiles()
			return nil, fmt.Errorf("failed to open access log: %w", err)
		}
		format := cfg.AccessLog.Format
		if format == "" {
			format = config.LogFormatJSON
		}
		access := newZerolog(accessOut, format)
		l.accessLog = &access
	}

	return l, nil
}

// NewFromWriters builds a JSON logger over arbitrary writers. accessOut may be
// nil to disable access logging. Used by tests and embedders.
func NewFromWriters(level config.LogLevel, errorOut, accessOut io.Writer) *Logger {
	l := &Logger{
		errorLog: newZerolog(errorOut, config.LogFormatJSON).Level(zerologLevel(level)),
	}
	if accessOut != nil {
		access := newZerolog(accessOut, config.LogFormatJSON)
		l.accessLog = &access
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	access := zerolog.Nop()
	return &Logger{errorLog: zerolog.Nop(), accessLog: &access}
}

func (l *Logger) openTarget(target string) (io.Writer, error) {
	switch target {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	if !config.IsFilePath(target) {
		return nil, fmt.Errorf("invalid log target: %s", target)
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", target, err)
	}
	l.mu.Lock()
	l.files = append(l.files, f)
	l.mu.Unlock()
	return f, nil
}

func newZerolog(out io.Writer, format string) zerolog.Logger {
	w := zerolog.SyncWriter(out)
	if format == config.LogFormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func zerologLevel(level config.LogLevel) zerolog.Level {
	switch level {
	case config.LogLevelDebug:
		return zerolog.DebugLevel
	case config.LogLevelWarning:
		return zerolog.WarnLevel
	case config.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func emit(ev *zerolog.Event, msg string, fields []LogFields) {
	for _, f := range fields {
		if f != nil {
			ev = ev.Fields(map[string]interface{}(f))
		}
	}
	ev.Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...LogFields) { emit(l.errorLog.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...LogFields)  { emit(l.errorLog.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...LogFields)  { emit(l.errorLog.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...LogFields) { emit(l.errorLog.Error(), msg, fields) }

// Access writes one access log entry for a completed request. outcome is the
// response outcome tag (served, forbidden, not_found, stream_error).
func (l *Logger) Access(req *http.Request, status int, outcome string, responseBytes int64, duration time.Duration) {
	if l.accessLog == nil {
		return
	}

	remoteHost, remotePort, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		remoteHost = req.RemoteAddr
		remotePort = "0"
	}

	ev := l.accessLog.Log().
		Str("remote_addr", remoteHost).
		Str("remote_port", remotePort).
		Str("protocol", req.Proto).
		Str("method", req.Method).
		Str("uri", req.RequestURI).
		Int("status", status).
		Str("outcome", outcome).
		Int64("resp_bytes", responseBytes).
		Int64("duration_ms", duration.Milliseconds())
	if ua := req.UserAgent(); ua != "" {
		ev = ev.Str("user_agent", ua)
	}
	if ref := req.Referer(); ref != "" {
		ev = ev.Str("referer", ref)
	}
	ev.Send()
}

// CloseLogFiles closes any open log files.
// This would be called during server shutdown.
func (l *Logger) CloseLogFiles() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", f.Name(), err))
		}
	}
	l.files = nil
	return errors.Join(errs...)
}

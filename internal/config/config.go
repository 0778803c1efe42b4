package config

// LogLevel defines the minimum severity for error logs.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

const (
	// DefaultGracefulShutdownTimeout bounds how long in-flight responses may
	// keep streaming after Stop is requested.
	DefaultGracefulShutdownTimeout = "5s"

	// LogFormatJSON writes one JSON object per line.
	LogFormatJSON = "json"
	// LogFormatConsole writes human-readable, coloured lines.
	LogFormatConsole = "console"
)

// Config is the top-level structure of the optional server configuration file.
// None of its settings change the request pipeline semantics; they tune the
// engine lifecycle, the https certificate source and logging.
type Config struct {
	Server    *ServerConfig     `json:"server,omitempty" toml:"server,omitempty" yaml:"server,omitempty"`
	TLS       *TLSConfig        `json:"tls,omitempty" toml:"tls,omitempty" yaml:"tls,omitempty"`
	Logging   *LoggingConfig    `json:"logging,omitempty" toml:"logging,omitempty" yaml:"logging,omitempty"`
	MimeTypes map[string]string `json:"mime_types,omitempty" toml:"mime_types,omitempty" yaml:"mime_types,omitempty"`
}

// ServerConfig holds general server settings.
type ServerConfig struct {
	GracefulShutdownTimeout *string `json:"graceful_shutdown_timeout,omitempty" toml:"graceful_shutdown_timeout,omitempty" yaml:"graceful_shutdown_timeout,omitempty"` // e.g., "5s"
	// LANAddress overrides the discovered LAN address used as the second
	// bind address when external connections are allowed.
	LANAddress *string `json:"lan_address,omitempty" toml:"lan_address,omitempty" yaml:"lan_address,omitempty"`
}

// TLSConfig points at an externally provisioned certificate pair used when
// the scheme is https. The server never generates certificates itself.
type TLSConfig struct {
	CertFile string `json:"cert_file" toml:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" toml:"key_file" yaml:"key_file"`
}

// LoggingConfig holds logging configurations.
type LoggingConfig struct {
	LogLevel  LogLevel         `json:"log_level,omitempty" toml:"log_level,omitempty" yaml:"log_level,omitempty"`
	AccessLog *AccessLogConfig `json:"access_log,omitempty" toml:"access_log,omitempty" yaml:"access_log,omitempty"`
	ErrorLog  *ErrorLogConfig  `json:"error_log,omitempty" toml:"error_log,omitempty" yaml:"error_log,omitempty"`
}

// AccessLogConfig configures access logging.
type AccessLogConfig struct {
	Enabled *bool   `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Target  *string `json:"target,omitempty" toml:"target,omitempty" yaml:"target,omitempty"`
	Format  string  `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`
}

// ErrorLogConfig configures error logging.
type ErrorLogConfig struct {
	Target *string `json:"target,omitempty" toml:"target,omitempty" yaml:"target,omitempty"`
	Format string  `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`
}

// IsFilePath reports whether a log target names a file rather than a
// standard stream.
func IsFilePath(target string) bool {
	return target != "stdout" && target != "stderr"
}

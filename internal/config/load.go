package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads, parses, defaults and validates the configuration file at
// path. The format is chosen from the file extension (.json, .toml, .yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path cannot be empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	cfg, err := ParseConfig(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes data according to ext, which includes the leading dot.
func ParseConfig(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("toml: unknown keys %v", undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration file extension %q (want .json, .toml, .yaml or .yml)", ext)
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with every default applied. It is
// used when no -config file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server == nil {
		cfg.Server = &ServerConfig{}
	}
	if cfg.Server.GracefulShutdownTimeout == nil {
		timeout := DefaultGracefulShutdownTimeout
		cfg.Server.GracefulShutdownTimeout = &timeout
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.LogLevel == "" {
		cfg.Logging.LogLevel = LogLevelInfo
	}
	if cfg.Logging.AccessLog == nil {
		cfg.Logging.AccessLog = &AccessLogConfig{}
	}
	if cfg.Logging.AccessLog.Enabled == nil {
		enabled := true
		cfg.Logging.AccessLog.Enabled = &enabled
	}
	if cfg.Logging.AccessLog.Target == nil {
		target := "stdout"
		cfg.Logging.AccessLog.Target = &target
	}
	if cfg.Logging.AccessLog.Format == "" {
		cfg.Logging.AccessLog.Format = LogFormatJSON
	}
	if cfg.Logging.ErrorLog == nil {
		cfg.Logging.ErrorLog = &ErrorLogConfig{}
	}
	if cfg.Logging.ErrorLog.Target == nil {
		target := "stderr"
		cfg.Logging.ErrorLog.Target = &target
	}
	if cfg.Logging.ErrorLog.Format == "" {
		cfg.Logging.ErrorLog.Format = LogFormatJSON
	}
}

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Server != nil && cfg.Server.GracefulShutdownTimeout != nil {
		d, err := time.ParseDuration(*cfg.Server.GracefulShutdownTimeout)
		if err != nil {
			return fmt.Errorf("server.graceful_shutdown_timeout %q: %w", *cfg.Server.GracefulShutdownTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("server.graceful_shutdown_timeout must not be negative, got %s", d)
		}
	}

	if cfg.TLS != nil {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			return fmt.Errorf("tls section must contain both cert_file and key_file")
		}
	}

	for ext, contentType := range cfg.MimeTypes {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("mime_types key %q must start with '.'", ext)
		}
		if contentType == "" {
			return fmt.Errorf("mime_types value for %q cannot be empty", ext)
		}
	}

	if cfg.Logging != nil {
		if err := validateLogging(cfg.Logging); err != nil {
			return err
		}
	}
	return nil
}

func validateLogging(lc *LoggingConfig) error {
	switch lc.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("logging.log_level %q is not one of DEBUG, INFO, WARNING, ERROR", lc.LogLevel)
	}

	if al := lc.AccessLog; al != nil {
		if err := validateLogTarget("logging.access_log.target", al.Target); err != nil {
			return err
		}
		if err := validateLogFormat("logging.access_log.format", al.Format); err != nil {
			return err
		}
	}
	if el := lc.ErrorLog; el != nil {
		if err := validateLogTarget("logging.error_log.target", el.Target); err != nil {
			return err
		}
		if err := validateLogFormat("logging.error_log.format", el.Format); err != nil {
			return err
		}
	}
	return nil
}

func validateLogTarget(field string, target *string) error {
	if target == nil {
		return nil
	}
	if *target == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if IsFilePath(*target) && !filepath.IsAbs(*target) {
		return fmt.Errorf("%s %q must be stdout, stderr or an absolute file path", field, *target)
	}
	return nil
}

func validateLogFormat(field, format string) error {
	switch format {
	case "", LogFormatJSON, LogFormatConsole:
		return nil
	default:
		return fmt.Errorf("%s %q must be %q or %q", field, format, LogFormatJSON, LogFormatConsole)
	}
}

// ShutdownTimeout returns the parsed graceful shutdown timeout, falling back
// to the default when unset or unparseable.
func (c *Config) ShutdownTimeout() time.Duration {
	raw := DefaultGracefulShutdownTimeout
	if c != nil && c.Server != nil && c.Server.GracefulShutdownTimeout != nil {
		raw = *c.Server.GracefulShutdownTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		d, _ = time.ParseDuration(DefaultGracefulShutdownTimeout)
	}
	return d
}

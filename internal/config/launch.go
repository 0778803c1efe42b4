package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// Scheme is the URL scheme the engine serves under.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// ParseScheme accepts "http" or "https".
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case SchemeHTTP, SchemeHTTPS:
		return Scheme(s), nil
	default:
		return "", fmt.Errorf("unknown scheme %q (want http or https)", s)
	}
}

// Toggle returns the other scheme.
func (s Scheme) Toggle() Scheme {
	if s == SchemeHTTPS {
		return SchemeHTTP
	}
	return SchemeHTTPS
}

// BindAddress is one listen endpoint.
type BindAddress struct {
	Host string
	Port int
}

// String returns the host:port form.
func (b BindAddress) String() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(b.Port))
}

// LaunchConfig is the immutable tuple one engine instance runs under. A
// scheme or privilege change produces a new LaunchConfig for a new process;
// a running engine never sees its LaunchConfig change.
type LaunchConfig struct {
	rootFolder    string
	port          int
	scheme        Scheme
	allowExternal bool
	bindAddresses []BindAddress
}

// NewLaunchConfig validates its inputs and derives the bind addresses:
// localhost:port always, then lanHost:port when allowExternal is set and
// lanHost is known.
func NewLaunchConfig(rootFolder string, port int, scheme Scheme, allowExternal bool, lanHost string) (LaunchConfig, error) {
	absRoot, err := filepath.Abs(rootFolder)
	if err != nil {
		return LaunchConfig{}, fmt.Errorf("failed to resolve root folder %s: %w", rootFolder, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return LaunchConfig{}, fmt.Errorf("root folder %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return LaunchConfig{}, fmt.Errorf("root folder %s is not a directory", absRoot)
	}
	if port < 1 || port > 65535 {
		return LaunchConfig{}, fmt.Errorf("port %d out of range 1-65535", port)
	}
	if _, err := ParseScheme(string(scheme)); err != nil {
		return LaunchConfig{}, err
	}

	binds := []BindAddress{{Host: "localhost", Port: port}}
	if allowExternal && lanHost != "" {
		binds = append(binds, BindAddress{Host: lanHost, Port: port})
	}

	return LaunchConfig{
		rootFolder:    absRoot,
		port:          port,
		scheme:        scheme,
		allowExternal: allowExternal,
		bindAddresses: binds,
	}, nil
}

func (lc LaunchConfig) RootFolder() string { return lc.rootFolder }
func (lc LaunchConfig) Port() int          { return lc.port }
func (lc LaunchConfig) Scheme() Scheme     { return lc.scheme }

// AllowExternalConnections is true only when the process held elevated
// privilege at startup.
func (lc LaunchConfig) AllowExternalConnections() bool { return lc.allowExternal }

// BindAddresses returns a copy of the ordered listen endpoints.
func (lc LaunchConfig) BindAddresses() []BindAddress {
	out := make([]BindAddress, len(lc.bindAddresses))
	copy(out, lc.bindAddresses)
	return out
}

// URL returns the browser URL of the i-th bind address.
func (lc LaunchConfig) URL(i int) string {
	return string(lc.scheme) + "://" + lc.bindAddresses[i].String() + "/"
}

// IsZero reports whether lc was never constructed.
func (lc LaunchConfig) IsZero() bool { return lc.rootFolder == "" }

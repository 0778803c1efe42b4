package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLaunchConfig_BindAddresses(t *testing.T) {
	root := t.TempDir()

	local, err := NewLaunchConfig(root, 8080, SchemeHTTP, false, "192.168.1.5")
	require.NoError(t, err)
	assert.Equal(t, []BindAddress{{Host: "localhost", Port: 8080}}, local.BindAddresses())
	assert.False(t, local.AllowExternalConnections())
	assert.Equal(t, "http://localhost:8080/", local.URL(0))

	external, err := NewLaunchConfig(root, 8443, SchemeHTTPS, true, "192.168.1.5")
	require.NoError(t, err)
	assert.Equal(t, []BindAddress{
		{Host: "localhost", Port: 8443},
		{Host: "192.168.1.5", Port: 8443},
	}, external.BindAddresses())
	assert.Equal(t, "https://192.168.1.5:8443/", external.URL(1))

	noLAN, err := NewLaunchConfig(root, 8080, SchemeHTTP, true, "")
	require.NoError(t, err)
	assert.Len(t, noLAN.BindAddresses(), 1)
}

func TestNewLaunchConfig_Immutable(t *testing.T) {
	lc, err := NewLaunchConfig(t.TempDir(), 8080, SchemeHTTP, false, "")
	require.NoError(t, err)

	binds := lc.BindAddresses()
	binds[0].Host = "example.com"
	assert.Equal(t, "localhost", lc.BindAddresses()[0].Host)
}

func TestNewLaunchConfig_Invalid(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	testCases := []struct {
		name   string
		root   string
		port   int
		scheme Scheme
	}{
		{"missing root", filepath.Join(root, "missing"), 8080, SchemeHTTP},
		{"root is a file", file, 8080, SchemeHTTP},
		{"port zero", root, 0, SchemeHTTP},
		{"port too large", root, 65536, SchemeHTTP},
		{"bad scheme", root, 8080, Scheme("ftp")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLaunchConfig(tc.root, tc.port, tc.scheme, false, "")
			assert.Error(t, err)
		})
	}
}

func TestScheme(t *testing.T) {
	s, err := ParseScheme("https")
	require.NoError(t, err)
	assert.Equal(t, SchemeHTTPS, s)
	assert.Equal(t, SchemeHTTP, s.Toggle())
	assert.Equal(t, SchemeHTTPS, SchemeHTTP.Toggle())

	_, err = ParseScheme("HTTP")
	assert.Error(t, err)
}

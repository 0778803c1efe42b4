package testutil_test

import (
	"crypto/ecdsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/simplewebserver/internal/testutil"
)

func TestGenerateSelfSignedCertKeyPEM(t *testing.T) {
	for _, host := range []string{"", "localhost", "192.168.1.20", "devbox.lan"} {
		t.Run(host, func(t *testing.T) {
			certPEM, keyPEM, err := testutil.GenerateSelfSignedCertKeyPEM(host)
			require.NoError(t, err)

			_, err = tls.X509KeyPair(certPEM, keyPEM)
			require.NoError(t, err)

			block, rest := pem.Decode(certPEM)
			require.NotNil(t, block)
			assert.Empty(t, rest)
			cert, err := x509.ParseCertificate(block.Bytes)
			require.NoError(t, err)
			_, isECDSA := cert.PublicKey.(*ecdsa.PublicKey)
			assert.True(t, isECDSA)

			assert.NoError(t, cert.VerifyHostname("localhost"))
			assert.NoError(t, cert.VerifyHostname("127.0.0.1"))
			if host != "" {
				assert.NoError(t, cert.VerifyHostname(host))
			}
			if ip := net.ParseIP(host); ip != nil {
				found := false
				for _, certIP := range cert.IPAddresses {
					if certIP.Equal(ip) {
						found = true
					}
				}
				assert.True(t, found, "certificate IPs %v do not include %s", cert.IPAddresses, ip)
			}
		})
	}
}

func TestGenerateSelfSignedCertFiles(t *testing.T) {
	files := testutil.GenerateSelfSignedCertFiles(t, "devbox.lan")

	_, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	require.NoError(t, err)
	require.NotNil(t, files.Pool)
}

// Package testutil provides helpers shared by package tests.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// CertFiles is a self-signed certificate written to disk, together with a
// pool that trusts it for use by test clients.
type CertFiles struct {
	CertFile string
	KeyFile  string
	Pool     *x509.CertPool
}

// GenerateSelfSignedCertKeyPEM generates a self-signed certificate valid for
// localhost, 127.0.0.1 and ::1, plus extraHost when given (a DNS name or IP).
func GenerateSelfSignedCertKeyPEM(extraHost string) (certPEM []byte, keyPEM []byte, err error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return nil, nil, err
	}

	template := x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{Organization: []string{"Simple Web Server Test"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(extraHost); ip != nil {
		template.IPAddresses = append(template.IPAddresses, ip)
	} else if extraHost != "" && extraHost != "localhost" {
		template.DNSNames = append(template.DNSNames, extraHost)
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, nil, err
	}
	privBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, nil, err
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})
	return certPEM, keyPEM, nil
}

// GenerateSelfSignedCertFiles writes a fresh pair into t.TempDir().
func GenerateSelfSignedCertFiles(t *testing.T, extraHost string) CertFiles {
	t.Helper()
	certPEM, keyPEM, err := GenerateSelfSignedCertKeyPEM(extraHost)
	if err != nil {
		t.Fatalf("Failed to generate certificate: %v", err)
	}

	dir := t.TempDir()
	files := CertFiles{
		CertFile: filepath.Join(dir, "cert.pem"),
		KeyFile:  filepath.Join(dir, "key.pem"),
		Pool:     x509.NewCertPool(),
	}
	if err := os.WriteFile(files.CertFile, certPEM, 0o600); err != nil {
		t.Fatalf("Failed to write certificate: %v", err)
	}
	if err := os.WriteFile(files.KeyFile, keyPEM, 0o600); err != nil {
		t.Fatalf("Failed to write key: %v", err)
	}
	if !files.Pool.AppendCertsFromPEM(certPEM) {
		t.Fatalf("Failed to add generated certificate to pool")
	}
	return files
}

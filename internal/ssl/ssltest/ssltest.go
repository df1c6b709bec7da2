// Package ssltest writes throwaway certificates for tests.
package ssltest

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/ksyq12/certrenew/internal/ssl"
)

// WriteLive creates <liveDir>/<domain>/fullchain.pem and privkey.pem the way
// certbot lays them out, with a self-signed certificate valid until notAfter.
func WriteLive(t testing.TB, liveDir, domain string, notAfter time.Time) *ssl.Cert {
	t.Helper()

	cert := ssl.GetCertPaths(liveDir, domain)
	if err := os.MkdirAll(filepath.Dir(cert.CertPath), 0755); err != nil {
		t.Fatalf("failed to create live dir: %v", err)
	}

	chain, key := Generate(t, domain, notAfter)
	if err := os.WriteFile(cert.CertPath, chain, 0644); err != nil {
		t.Fatalf("failed to write chain: %v", err)
	}
	if err := os.WriteFile(cert.KeyPath, key, 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return cert
}

// Generate returns a PEM certificate and PEM private key for domain.
func Generate(t testing.TB, domain string, notAfter time.Time) (chain, key []byte) {
	t.Helper()

	privateKey, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, ok := privateKey.(crypto.Signer)
	if !ok {
		t.Fatalf("generated key is not a signer")
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: domain},
		DNSNames:     []string{domain},
		NotBefore:    notAfter.Add(-90 * 24 * time.Hour),
		NotAfter:     notAfter,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	return certcrypto.PEMEncode(certcrypto.DERCertificateBytes(der)), certcrypto.PEMEncode(privateKey)
}

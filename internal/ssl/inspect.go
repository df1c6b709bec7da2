package ssl

import (
	"fmt"
	"os"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
)

// CertInfo summarizes the leaf certificate of a PEM chain.
type CertInfo struct {
	Path      string    `json:"path"`
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	DNSNames  []string  `json:"dns_names"`
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
}

// ReadCertificate parses the first certificate of the PEM file at path.
func ReadCertificate(path string) (*CertInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}

	crt, err := certcrypto.ParsePEMCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate %s: %w", path, err)
	}

	return &CertInfo{
		Path:      path,
		Subject:   crt.Subject.CommonName,
		Issuer:    crt.Issuer.CommonName,
		DNSNames:  crt.DNSNames,
		NotBefore: crt.NotBefore,
		NotAfter:  crt.NotAfter,
	}, nil
}

// DaysLeft returns whole days until expiry, negative once expired.
func (c *CertInfo) DaysLeft(now time.Time) int {
	d := c.NotAfter.Sub(now)
	if d < 0 {
		return -int((-d).Hours() / 24)
	}
	return int(d.Hours() / 24)
}

// ExpiresWithin reports whether the certificate expires within d of now.
func (c *CertInfo) ExpiresWithin(d time.Duration, now time.Time) bool {
	return !c.NotAfter.After(now.Add(d))
}

// Expired reports whether the certificate is past its NotAfter.
func (c *CertInfo) Expired(now time.Time) bool {
	return now.After(c.NotAfter)
}

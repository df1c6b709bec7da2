package ssl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
)

// Certificate file names written by certbot and copied into volumes.
const (
	FullChainFile  = "fullchain.pem"
	PrivateKeyFile = "privkey.pem"
)

// certbotBinary is the issuer executable
const certbotBinary = "certbot"

// Cert represents an SSL certificate
type Cert struct {
	Domain   string
	CertPath string
	KeyPath  string
}

// Exists reports whether both the chain and the key are present on disk.
func (c *Cert) Exists() bool {
	return fileExists(c.CertPath) && fileExists(c.KeyPath)
}

// GetCertPaths returns the certificate paths for a domain under liveDir
func GetCertPaths(liveDir, domain string) *Cert {
	return &Cert{
		Domain:   domain,
		CertPath: filepath.Join(liveDir, domain, FullChainFile),
		KeyPath:  filepath.Join(liveDir, domain, PrivateKeyFile),
	}
}

// IssuerOptions tunes the certbot invocation.
type IssuerOptions struct {
	LiveDir string // where certbot keeps current certificates
	Verbose bool   // pass -v
	Email   string // registration email; adds --agree-tos when set
}

// Issuer obtains certificates by running certbot in standalone mode.
type Issuer struct {
	exec executor.CommandExecutor
	opts IssuerOptions
}

// NewIssuer creates a new Issuer
func NewIssuer(exec executor.CommandExecutor, opts IssuerOptions) *Issuer {
	return &Issuer{exec: exec, opts: opts}
}

// IsInstalled checks if certbot is installed
func (i *Issuer) IsInstalled() bool {
	_, err := i.exec.LookPath(certbotBinary)
	return err == nil
}

// Version returns the installed certbot version, e.g. "2.11.0".
func (i *Issuer) Version() (string, error) {
	res := executor.Run(i.exec, certbotBinary, "--version")
	if !res.OK() {
		return "", res.Error()
	}
	fields := strings.Fields(string(res.Output))
	if len(fields) == 0 {
		return "", fmt.Errorf("unexpected certbot --version output")
	}
	return fields[len(fields)-1], nil
}

// ObtainArgs returns the certbot arguments used for domain.
func (i *Issuer) ObtainArgs(domain string) []string {
	args := []string{
		"certonly",
		"-d", domain,
		"--standalone",
	}
	if i.opts.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "--non-interactive", "--keep-until-expiring")
	if i.opts.Email != "" {
		args = append(args, "--email", i.opts.Email, "--agree-tos")
	}
	return args
}

// Obtain issues or keeps the certificate for domain. certbot skips the
// ACME exchange while the existing certificate is not close to expiry.
func (i *Issuer) Obtain(domain string) (*Cert, error) {
	res := executor.Run(i.exec, certbotBinary, i.ObtainArgs(domain)...)
	if !res.OK() {
		return nil, errs.Wrap(errs.ErrCodeIssue, "certbot failed", res.Error())
	}
	return GetCertPaths(i.opts.LiveDir, domain), nil
}

// Certificates returns the names of all certificates certbot manages
func (i *Issuer) Certificates() ([]string, error) {
	if !i.IsInstalled() {
		return nil, errs.ErrCertbotNotInstalled
	}

	res := executor.Run(i.exec, certbotBinary, "certificates")
	if !res.OK() {
		return nil, errs.Wrap(errs.ErrCodeIssue, "certbot certificates failed", res.Error())
	}

	// Parse output to extract certificate names
	var names []string
	for _, line := range strings.Split(string(res.Output), "\n") {
		if strings.Contains(line, "Certificate Name:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				names = append(names, strings.TrimSpace(parts[1]))
			}
		}
	}

	return names, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

package volume

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/ssl"
)

// dataDir is the directory inside a volume that is mounted into containers
const dataDir = "_data"

// File modes for installed files
const (
	dirMode   os.FileMode = 0755
	chainMode os.FileMode = 0644
	keyMode   os.FileMode = 0600
)

// Store installs certificates into docker volumes on the host filesystem
type Store struct {
	root string
}

// NewStore creates a store rooted at root, or at the docker default when
// root is empty
func NewStore(root string) *Store {
	if root == "" {
		root = config.DefaultVolumesRoot
	}
	return &Store{root: root}
}

// Root returns the volumes root directory
func (s *Store) Root() string {
	return s.root
}

// DestDir returns the directory a domain's certificate is copied into
func (s *Store) DestDir(volume, domain string) string {
	return filepath.Join(s.root, volume, dataDir, domain)
}

// Installation describes a certificate pair installed into a volume
type Installation struct {
	Domain   string `json:"domain"`
	Volume   string `json:"volume"`
	Dir      string `json:"dir"`
	CertPath string `json:"cert_path"`
	KeyPath  string `json:"key_path"`
}

func (s *Store) installation(volume, domain string) *Installation {
	dir := s.DestDir(volume, domain)
	return &Installation{
		Domain:   domain,
		Volume:   volume,
		Dir:      dir,
		CertPath: filepath.Join(dir, ssl.FullChainFile),
		KeyPath:  filepath.Join(dir, ssl.PrivateKeyFile),
	}
}

// Install copies cert's chain and key into volume, overwriting existing files
func (s *Store) Install(cert *ssl.Cert, volume string) (*Installation, error) {
	inst := s.installation(volume, cert.Domain)

	if err := os.MkdirAll(inst.Dir, dirMode); err != nil {
		return nil, copyError(cert.Domain, fmt.Errorf("failed to create %s: %w", inst.Dir, err))
	}
	if err := copyFile(cert.CertPath, inst.CertPath, chainMode); err != nil {
		return nil, copyError(cert.Domain, err)
	}
	if err := copyFile(cert.KeyPath, inst.KeyPath, keyMode); err != nil {
		return nil, copyError(cert.Domain, err)
	}

	return inst, nil
}

// Installed returns the installation for domain in volume, or
// ErrCertNotInstalled when the chain or the key is missing.
func (s *Store) Installed(volume, domain string) (*Installation, error) {
	inst := s.installation(volume, domain)
	for _, path := range []string{inst.CertPath, inst.KeyPath} {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errs.WrapDomain(errs.ErrCodeNotFound, domain, fmt.Errorf("%w: %s", errs.ErrCertNotInstalled, path))
			}
			return nil, fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	return inst, nil
}

// copyFile replaces dst with src's content through a temp file that has
// mode before any data is written, then is renamed over dst.
func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", dst, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", tmpPath, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}

func copyError(domain string, err error) error {
	return errs.WrapDomain(errs.ErrCodeCopy, domain, err)
}

package config

import (
	"fmt"
	"strings"

	errs "github.com/ksyq12/certrenew/internal/errors"
)

// DefaultVolume is the docker volume used when a domain names none.
const DefaultVolume = "reverse-proxy-certs"

// Domain is a single entry of the domain list.
type Domain struct {
	URL          string `mapstructure:"url" json:"url" yaml:"url"`
	DockerVolume string `mapstructure:"docker_volume" json:"docker_volume,omitempty" yaml:"docker_volume,omitempty"`
}

// Volume returns the docker volume the certificate is installed into.
func (d Domain) Volume() string {
	if d.DockerVolume == "" {
		return DefaultVolume
	}
	return d.DockerVolume
}

// ValidateDomainName checks that name is a plain hostname that is safe to
// use as a single path component.
func ValidateDomainName(name string) error {
	if name == "" {
		return errs.Validation("domain cannot be empty")
	}
	if strings.ContainsAny(name, " \t\n") {
		return fmt.Errorf("%w: %q cannot contain spaces", errs.ErrInvalidDomain, name)
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("%w: %q cannot start or end with hyphen", errs.ErrInvalidDomain, name)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q cannot contain path separators", errs.ErrInvalidDomain, name)
	}
	for _, r := range name {
		if !isHostRune(r) {
			return fmt.Errorf("%w: %q contains invalid character %q", errs.ErrInvalidDomain, name, r)
		}
	}
	return nil
}

// ValidateVolumeName checks that name is a valid docker volume name.
func ValidateVolumeName(name string) error {
	if name == "" {
		return errs.Validation("volume cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q cannot contain path separators", errs.ErrInvalidVolume, name)
	}
	for i, r := range name {
		alnum := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if i == 0 && !alnum {
			return fmt.Errorf("%w: %q must start with a letter or digit", errs.ErrInvalidVolume, name)
		}
		if !alnum && r != '_' && r != '.' && r != '-' {
			return fmt.Errorf("%w: %q contains invalid character %q", errs.ErrInvalidVolume, name, r)
		}
	}
	return nil
}

func isHostRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '.', r == '*':
		return true
	default:
		return false
	}
}

package proxy

import (
	"fmt"

	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
)

// Supported proxy types
const (
	TypeDocker  = "docker"
	TypeSystemd = "systemd"
)

// Controller is the interface that all reverse-proxy controllers must implement
type Controller interface {
	// Name returns the container or unit name being controlled
	Name() string

	// Stop stops the reverse proxy
	Stop() error

	// Start starts the reverse proxy
	Start() error

	// IsRunning reports whether the reverse proxy is currently running
	IsRunning() (bool, error)
}

// Types returns the supported proxy types
func Types() []string {
	return []string{TypeDocker, TypeSystemd}
}

// Binary returns the control binary used for kind
func Binary(kind string) (string, error) {
	switch kind {
	case TypeDocker:
		return dockerBinary, nil
	case TypeSystemd:
		return systemctlBinary, nil
	default:
		return "", fmt.Errorf("%w: %q", errs.ErrUnknownProxyType, kind)
	}
}

// New creates the controller for kind managing the proxy called name
func New(kind, name string, exec executor.CommandExecutor) (Controller, error) {
	switch kind {
	case TypeDocker:
		return NewDocker(name, exec), nil
	case TypeSystemd:
		return NewSystemd(name, exec), nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownProxyType, kind)
	}
}

func proxyError(action, name string, err error) error {
	return errs.Wrap(errs.ErrCodeProxy, fmt.Sprintf("failed to %s %s", action, name), err)
}

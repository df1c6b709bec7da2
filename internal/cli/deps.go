package cli

import (
	"io"
	"os"
	"time"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
	"github.com/ksyq12/certrenew/internal/input"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader ConfigLoader
	Executor     executor.CommandExecutor
	RootChecker  RootChecker
	Clock        Clock
	Console      io.Writer // run log echo; nil means stdout, or stderr with --json
	Input        input.Reader
}

// ConfigLoader handles configuration loading and creation
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Defaults() *config.Config
	Init(path string, force bool) error
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader: &realConfigLoader{},
	Executor:     executor.NewSystemExecutor(),
	RootChecker:  &realRootChecker{},
	Clock:        realClock{},
	Input:        input.NewStdinReader(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

func (r *realConfigLoader) Defaults() *config.Config {
	return config.Defaults()
}

func (r *realConfigLoader) Init(path string, force bool) error {
	return config.WriteSample(path, force)
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errs.ErrRootRequired
	}
	return nil
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

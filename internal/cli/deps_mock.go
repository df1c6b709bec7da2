package cli

import (
	"io"
	"time"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
	"github.com/ksyq12/certrenew/internal/input"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	LoadPaths []string
	InitErr   error
	InitCalls []string
	InitForce bool // force flag of the last Init call
	Partial   bool // return Cfg along with LoadErr, like a file that parsed but failed validation
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		if m.Partial {
			return m.Cfg, m.LoadErr
		}
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Defaults() *config.Config {
	cfg := config.New()
	if m.Cfg != nil {
		cfg.Proxy = m.Cfg.Proxy
		cfg.Paths = m.Cfg.Paths
	}
	return cfg
}

func (m *MockConfigLoader) Init(path string, force bool) error {
	m.InitCalls = append(m.InitCalls, path)
	m.InitForce = force
	return m.InitErr
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errs.ErrRootRequired
	}
	return nil
}

// MockClock is a test double for Clock
type MockClock struct {
	T time.Time
}

func (m MockClock) Now() time.Time {
	return m.T
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader: &MockConfigLoader{Cfg: config.New()},
			Executor:     &executor.MockExecutor{},
			RootChecker:  &MockRootChecker{IsRoot: true},
			Clock:        MockClock{T: time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)},
			Console:      io.Discard,
			Input:        input.NewStringReader(),
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithClock fixes the current time
func (b *MockDependenciesBuilder) WithClock(t time.Time) *MockDependenciesBuilder {
	b.deps.Clock = MockClock{T: t}
	return b
}

// WithConsole sets the run log echo writer
func (b *MockDependenciesBuilder) WithConsole(w io.Writer) *MockDependenciesBuilder {
	b.deps.Console = w
	return b
}

// WithInput answers prompts with the given lines
func (b *MockDependenciesBuilder) WithInput(lines ...string) *MockDependenciesBuilder {
	b.deps.Input = input.NewStringReader(lines...)
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	OldDeps    *Dependencies
	MockExec   *executor.MockExecutor
	MockConfig *MockConfigLoader
}

// NewTestHelper installs mock dependencies and restores the originals on cleanup
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, cfg *config.Config) *TestHelper {
	t.Helper()

	mockExec := &executor.MockExecutor{}
	mockConfig := &MockConfigLoader{Cfg: cfg}

	helper := &TestHelper{
		T:          t,
		OldDeps:    deps,
		MockExec:   mockExec,
		MockConfig: mockConfig,
	}

	deps = NewMockDeps().
		WithExecutor(mockExec).
		WithConfigLoader(mockConfig).
		Build()

	t.Cleanup(func() {
		deps = helper.OldDeps
	})

	return helper
}

// SetRootAccess sets whether root access is available
func (h *TestHelper) SetRootAccess(isRoot bool) {
	deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
}

// SetInput answers prompts with the given lines
func (h *TestHelper) SetInput(lines ...string) {
	deps.Input = input.NewStringReader(lines...)
}

// GetConfig returns the current mock config
func (h *TestHelper) GetConfig() *config.Config {
	return h.MockConfig.Cfg
}

package renew

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/proxy"
	"github.com/ksyq12/certrenew/internal/ssl"
	"github.com/ksyq12/certrenew/internal/volume"
)

// captureLog redirects the global logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(logger.LevelInfo)
	t.Cleanup(func() { logger.SetOutput(nil) })
	return &buf
}

// env wires real controllers, issuer and store around one MockExecutor so
// the order of every external command can be asserted.
type env struct {
	exec    *executor.MockExecutor
	liveDir string
	store   *volume.Store
	orch    *Orchestrator

	// failCertbot makes certbot fail for the listed domains
	failCertbot map[string]bool
	failStop    bool
	failStart   bool
}

func newEnv(t *testing.T, opts Options) *env {
	t.Helper()
	tempDir := t.TempDir()
	e := &env{
		liveDir:     filepath.Join(tempDir, "live"),
		store:       volume.NewStore(filepath.Join(tempDir, "volumes")),
		failCertbot: map[string]bool{},
	}
	e.exec = &executor.MockExecutor{ExecuteFunc: e.execute}

	issuer := ssl.NewIssuer(e.exec, ssl.IssuerOptions{LiveDir: e.liveDir, Verbose: true})
	e.orch = New(proxy.NewDocker("reverse-proxy", e.exec), issuer, e.store, opts)
	return e
}

func (e *env) execute(name string, args ...string) ([]byte, error) {
	switch name {
	case "docker":
		if args[0] == "stop" && e.failStop {
			return []byte("No such container"), errors.New("exit status 1")
		}
		if args[0] == "start" && e.failStart {
			return []byte("No such container"), errors.New("exit status 1")
		}
		return []byte(args[1] + "\n"), nil
	case "certbot":
		domain := args[2]
		if e.failCertbot[domain] {
			return []byte("Challenge failed for domain " + domain), errors.New("exit status 1")
		}
		cert := ssl.GetCertPaths(e.liveDir, domain)
		if err := os.MkdirAll(filepath.Dir(cert.CertPath), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(cert.CertPath, []byte("chain for "+domain), 0644); err != nil {
			return nil, err
		}
		return nil, os.WriteFile(cert.KeyPath, []byte("key for "+domain), 0600)
	}
	return nil, errors.New("unexpected command " + name)
}

func exampleDomains() []config.Domain {
	return []config.Domain{
		{URL: "a.example.com"},
		{URL: "b.example.com", DockerVolume: "custom"},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	log := captureLog(t)
	e := newEnv(t, Options{})

	report := e.orch.Run(exampleDomains(), nil)

	want := []string{
		"docker stop reverse-proxy",
		"certbot certonly -d a.example.com --standalone -v --non-interactive --keep-until-expiring",
		"certbot certonly -d b.example.com --standalone -v --non-interactive --keep-until-expiring",
		"docker start reverse-proxy",
	}
	if got := e.exec.Commands(); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("commands:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	if report.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d (%v)", report.ExitCode(), report.Err())
	}
	if report.Succeeded() != 2 || report.Failed() != 0 {
		t.Errorf("succeeded=%d failed=%d", report.Succeeded(), report.Failed())
	}
	if !report.ProxyStop.OK() || !report.ProxyStart.OK() {
		t.Error("proxy stop and start should both succeed")
	}

	files := map[string]string{
		filepath.Join(e.store.Root(), "reverse-proxy-certs", "_data", "a.example.com", "fullchain.pem"): "chain for a.example.com",
		filepath.Join(e.store.Root(), "reverse-proxy-certs", "_data", "a.example.com", "privkey.pem"):   "key for a.example.com",
		filepath.Join(e.store.Root(), "custom", "_data", "b.example.com", "fullchain.pem"):              "chain for b.example.com",
		filepath.Join(e.store.Root(), "custom", "_data", "b.example.com", "privkey.pem"):                "key for b.example.com",
	}
	for path, content := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("expected %s: %v", path, err)
			continue
		}
		if string(data) != content {
			t.Errorf("%s = %q, want %q", path, data, content)
		}
	}

	for _, msg := range []string{
		"Stopping reverse proxy...",
		"Reverse proxy stopped successfully",
		"Obtaining certificate for a.example.com",
		"Copying certificates for a.example.com",
		"Successfully processed a.example.com",
		"Successfully processed b.example.com",
		"Starting reverse proxy...",
		"Reverse proxy started successfully",
	} {
		if !strings.Contains(log.String(), "] "+msg+"\n") {
			t.Errorf("log missing %q:\n%s", msg, log.String())
		}
	}
}

func TestRun_ConfigError(t *testing.T) {
	log := captureLog(t)
	e := newEnv(t, Options{})

	report := e.orch.Run(nil, errs.ErrNoDomains)

	if got := e.exec.Commands(); len(got) != 1 || got[0] != "docker start reverse-proxy" {
		t.Errorf("expected only the proxy start, got %v", got)
	}
	if report.ProxyStop.Attempted {
		t.Error("proxy stop must not be attempted after a configuration error")
	}
	if report.ExitCode() == 0 {
		t.Error("configuration error must give a non-zero exit code")
	}
	if !errs.Is(report.Err(), errs.ErrNoDomains) {
		t.Errorf("expected ErrNoDomains, got %v", report.Err())
	}
	if !strings.Contains(log.String(), "ERROR: Script execution failed: No domains in configuration file") {
		t.Errorf("log missing fatal line:\n%s", log.String())
	}

	// The fatal line precedes the restart attempt
	fatalAt := strings.Index(log.String(), "Script execution failed")
	startAt := strings.Index(log.String(), "Starting reverse proxy...")
	if fatalAt < 0 || startAt < fatalAt {
		t.Errorf("expected fatal log before start:\n%s", log.String())
	}
}

func TestRun_DomainFailureIsolated(t *testing.T) {
	log := captureLog(t)
	e := newEnv(t, Options{})
	e.failCertbot["a.example.com"] = true

	report := e.orch.Run(exampleDomains(), nil)

	if e.exec.CountPrefix("certbot certonly -d b.example.com") != 1 {
		t.Error("b.example.com should still be attempted")
	}
	if e.exec.CountPrefix("docker start") != 1 {
		t.Error("proxy start should run exactly once")
	}
	if report.ExitCode() != 0 {
		t.Errorf("isolated failures must not change the exit code, got %d", report.ExitCode())
	}
	if report.Failed() != 1 || report.Succeeded() != 1 {
		t.Errorf("succeeded=%d failed=%d", report.Succeeded(), report.Failed())
	}

	a := report.Domains[0]
	if a.Status != StatusFailed || errs.CodeOf(a.Err()) != errs.ErrCodeIssue {
		t.Errorf("unexpected result for a.example.com: %+v", a)
	}
	if !strings.Contains(log.String(), "ERROR: Failed to process a.example.com: ") {
		t.Errorf("log missing domain failure:\n%s", log.String())
	}
	if _, err := e.store.Installed("reverse-proxy-certs", "a.example.com"); err == nil {
		t.Error("failed domain should not be installed")
	}
}

func TestRun_ProxyFailuresAreIsolated(t *testing.T) {
	t.Run("stop fails", func(t *testing.T) {
		log := captureLog(t)
		e := newEnv(t, Options{})
		e.failStop = true

		report := e.orch.Run(exampleDomains(), nil)

		if report.ExitCode() != 0 {
			t.Errorf("stop failure must not be fatal, got exit %d", report.ExitCode())
		}
		if report.ProxyStop.Err() == nil {
			t.Error("stop failure should be recorded")
		}
		if report.Succeeded() != 2 {
			t.Errorf("domains should still be processed, succeeded=%d", report.Succeeded())
		}
		if e.exec.CountPrefix("docker start") != 1 {
			t.Error("proxy start should run exactly once")
		}
		if !strings.Contains(log.String(), "ERROR: Failed to stop reverse proxy: ") {
			t.Errorf("log missing stop failure:\n%s", log.String())
		}
	})

	t.Run("start fails", func(t *testing.T) {
		log := captureLog(t)
		e := newEnv(t, Options{})
		e.failStart = true

		report := e.orch.Run(exampleDomains(), nil)

		if report.ExitCode() != 0 {
			t.Errorf("start failure must not be fatal, got exit %d", report.ExitCode())
		}
		if report.ProxyStart.OK() {
			t.Error("start failure should be recorded")
		}
		if !strings.Contains(log.String(), "ERROR: Failed to start reverse proxy: ") {
			t.Errorf("log missing start failure:\n%s", log.String())
		}
	})
}

type panicIssuer struct {
	domain string
	inner  Issuer
}

func (p *panicIssuer) Obtain(domain string) (*ssl.Cert, error) {
	if domain == p.domain {
		panic("issuer exploded")
	}
	return p.inner.Obtain(domain)
}

func TestRun_Panics(t *testing.T) {
	t.Run("panic in a domain is isolated", func(t *testing.T) {
		captureLog(t)
		e := newEnv(t, Options{})
		issuer := ssl.NewIssuer(e.exec, ssl.IssuerOptions{LiveDir: e.liveDir})
		ctrl := proxy.NewMockController("reverse-proxy")
		orch := New(ctrl, &panicIssuer{domain: "a.example.com", inner: issuer}, e.store, Options{})

		report := orch.Run(exampleDomains(), nil)

		if report.Domains[0].Status != StatusFailed {
			t.Errorf("panicking domain should fail, got %s", report.Domains[0].Status)
		}
		if report.Domains[1].Status != StatusSuccess {
			t.Errorf("next domain should succeed, got %s", report.Domains[1].Status)
		}
		if ctrl.StartCalls != 1 {
			t.Errorf("expected 1 start call, got %d", ctrl.StartCalls)
		}
	})

	t.Run("panic outside domains is fatal", func(t *testing.T) {
		log := captureLog(t)
		e := newEnv(t, Options{})
		ctrl := proxy.NewMockController("reverse-proxy")
		ctrl.StopFunc = func() error { panic("stop exploded") }
		orch := New(ctrl, ssl.NewIssuer(e.exec, ssl.IssuerOptions{LiveDir: e.liveDir}), e.store, Options{})

		report := orch.Run(exampleDomains(), nil)

		if ctrl.StartCalls != 1 {
			t.Errorf("expected 1 start call, got %d", ctrl.StartCalls)
		}
		if report.ExitCode() != 1 {
			t.Errorf("expected exit 1, got %d", report.ExitCode())
		}
		if errs.CodeOf(report.Err()) != errs.ErrCodeInternal {
			t.Errorf("expected INTERNAL code, got %s", errs.CodeOf(report.Err()))
		}
		if !strings.Contains(log.String(), "Script execution failed: unexpected error: stop exploded") {
			t.Errorf("log missing fatal line:\n%s", log.String())
		}
	})

	t.Run("panic in start is contained", func(t *testing.T) {
		captureLog(t)
		e := newEnv(t, Options{})
		ctrl := proxy.NewMockController("reverse-proxy")
		ctrl.StartFunc = func() error { panic("start exploded") }
		orch := New(ctrl, ssl.NewIssuer(e.exec, ssl.IssuerOptions{LiveDir: e.liveDir}), e.store, Options{})

		report := orch.Run(exampleDomains(), nil)

		if report.ProxyStart.Err() == nil {
			t.Error("start panic should be recorded as a start failure")
		}
		if report.ExitCode() != 0 {
			t.Errorf("expected exit 0, got %d", report.ExitCode())
		}
	})
}

func TestRun_DryRun(t *testing.T) {
	log := captureLog(t)
	e := newEnv(t, Options{DryRun: true})

	report := e.orch.Run(exampleDomains(), nil)

	if len(e.exec.Calls) != 0 {
		t.Errorf("dry run should not execute commands, got %v", e.exec.Commands())
	}
	for _, d := range report.Domains {
		if d.Status != StatusPlanned {
			t.Errorf("%s: expected planned, got %s", d.Domain, d.Status)
		}
	}
	if report.Domains[1].DestDir != e.store.DestDir("custom", "b.example.com") {
		t.Errorf("unexpected dest dir %s", report.Domains[1].DestDir)
	}
	if !strings.Contains(log.String(), "[dry-run] would run: certbot certonly -d a.example.com") {
		t.Errorf("log missing planned command:\n%s", log.String())
	}
	if _, err := os.Stat(e.store.Root()); !os.IsNotExist(err) {
		t.Error("dry run should not create the volumes root")
	}
}

func TestRun_DefaultVolume(t *testing.T) {
	captureLog(t)
	e := newEnv(t, Options{})

	report := e.orch.Run([]config.Domain{{URL: "a.example.com"}}, nil)

	want := e.store.DestDir(config.DefaultVolume, "a.example.com")
	if got := report.Domains[0].DestDir; got != want {
		t.Errorf("DestDir = %s, want %s", got, want)
	}
	if report.Domains[0].Volume != "reverse-proxy-certs" {
		t.Errorf("Volume = %s", report.Domains[0].Volume)
	}
}

func TestRun_EmptyDomainList(t *testing.T) {
	captureLog(t)
	e := newEnv(t, Options{})

	report := e.orch.Run([]config.Domain{}, nil)

	want := []string{"docker stop reverse-proxy", "docker start reverse-proxy"}
	if got := e.exec.Commands(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %v, want %v", got, want)
	}
	if report.ExitCode() != 0 {
		t.Errorf("expected exit 0, got %d", report.ExitCode())
	}
}

func TestRun_LogLinesParse(t *testing.T) {
	log := captureLog(t)
	e := newEnv(t, Options{})
	e.failCertbot["b.example.com"] = true

	e.orch.Run(exampleDomains(), nil)

	lines := strings.Split(strings.TrimRight(log.String(), "\n"), "\n")
	entries, err := logger.ReadEntries(strings.NewReader(log.String()))
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != len(lines) {
		t.Fatalf("parsed %d of %d lines:\n%s", len(entries), len(lines), log.String())
	}

	errorsSeen := 0
	for _, entry := range entries {
		if entry.Time.IsZero() {
			t.Errorf("entry without timestamp: %+v", entry)
		}
		if entry.IsError() {
			errorsSeen++
			if !strings.Contains(entry.Message, "b.example.com") {
				t.Errorf("error entry should name the domain: %q", entry.Message)
			}
		}
	}
	if errorsSeen != 1 {
		t.Errorf("expected 1 error entry, got %d", errorsSeen)
	}
}

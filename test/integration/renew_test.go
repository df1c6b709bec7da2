//go:build integration

package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/executor"
	"github.com/ksyq12/certrenew/internal/proxy"
	"github.com/ksyq12/certrenew/internal/renew"
	"github.com/ksyq12/certrenew/internal/ssl"
	"github.com/ksyq12/certrenew/internal/volume"
)

const fakeDocker = `#!/bin/sh
echo "docker $*" >> "$CALLS"
if [ "$1" = "inspect" ]; then
	echo true
fi
`

// fakeCertbot is invoked as: certbot certonly -d <domain> ...
const fakeCertbot = `#!/bin/sh
echo "certbot $*" >> "$CALLS"
domain="$3"
if [ "$domain" = "fail.example.com" ]; then
	echo "Challenge failed for domain $domain" >&2
	exit 1
fi
mkdir -p "$LIVE/$domain"
printf 'chain-%s' "$domain" > "$LIVE/$domain/fullchain.pem"
printf 'key-%s' "$domain" > "$LIVE/$domain/privkey.pem"
`

// testEnv holds the directories of a renewal run against fake tools
type testEnv struct {
	liveDir     string
	volumesRoot string
	calls       string
}

// setupTools puts fake docker and certbot binaries first on PATH
func setupTools(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	baseDir := t.TempDir()
	env := &testEnv{
		liveDir:     filepath.Join(baseDir, "live"),
		volumesRoot: filepath.Join(baseDir, "volumes"),
		calls:       filepath.Join(baseDir, "calls.log"),
	}

	binDir := filepath.Join(baseDir, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatalf("Failed to create bin directory: %v", err)
	}
	for name, script := range map[string]string{"docker": fakeDocker, "certbot": fakeCertbot} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0755); err != nil {
			t.Fatalf("Failed to write fake %s: %v", name, err)
		}
	}

	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("CALLS", env.calls)
	t.Setenv("LIVE", env.liveDir)
	return env
}

func (e *testEnv) orchestrator(t *testing.T) *renew.Orchestrator {
	t.Helper()
	sys := executor.NewSystemExecutor()
	ctrl, err := proxy.New(config.ProxyTypeDocker, "reverse-proxy", sys)
	if err != nil {
		t.Fatalf("proxy.New failed: %v", err)
	}
	issuer := ssl.NewIssuer(sys, ssl.IssuerOptions{LiveDir: e.liveDir})
	return renew.New(ctrl, issuer, volume.NewStore(e.volumesRoot), renew.Options{})
}

func (e *testEnv) commands(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.calls)
	if err != nil {
		t.Fatalf("Failed to read calls: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRenewIntegration(t *testing.T) {
	env := setupTools(t)

	domains := []config.Domain{
		{URL: "a.example.com"},
		{URL: "fail.example.com"},
		{URL: "b.example.com", DockerVolume: "edge-certs"},
	}

	report := env.orchestrator(t).Run(domains, nil)

	t.Run("Exit code stays zero", func(t *testing.T) {
		if report.ExitCode() != 0 {
			t.Errorf("expected exit code 0, got %d (%v)", report.ExitCode(), report.Err())
		}
		if report.Succeeded() != 2 || report.Failed() != 1 {
			t.Errorf("expected 2 succeeded and 1 failed, got %d/%d", report.Succeeded(), report.Failed())
		}
	})

	t.Run("Proxy wraps the renewals", func(t *testing.T) {
		cmds := env.commands(t)
		if len(cmds) != 5 {
			t.Fatalf("expected 5 commands, got %v", cmds)
		}
		if cmds[0] != "docker stop reverse-proxy" {
			t.Errorf("first command = %q", cmds[0])
		}
		if cmds[4] != "docker start reverse-proxy" {
			t.Errorf("last command = %q", cmds[4])
		}
		for i, domain := range []string{"a.example.com", "fail.example.com", "b.example.com"} {
			want := "certbot certonly -d " + domain + " --standalone --non-interactive --keep-until-expiring"
			if cmds[i+1] != want {
				t.Errorf("command %d = %q, want %q", i+1, cmds[i+1], want)
			}
		}
	})

	t.Run("Certificates copied into volumes", func(t *testing.T) {
		for _, tc := range []struct {
			volume string
			domain string
		}{
			{config.DefaultVolume, "a.example.com"},
			{"edge-certs", "b.example.com"},
		} {
			dir := filepath.Join(env.volumesRoot, tc.volume, "_data", tc.domain)

			chain, err := os.ReadFile(filepath.Join(dir, ssl.FullChainFile))
			if err != nil {
				t.Fatalf("Chain not copied for %s: %v", tc.domain, err)
			}
			if string(chain) != "chain-"+tc.domain {
				t.Errorf("unexpected chain for %s: %q", tc.domain, chain)
			}

			info, err := os.Stat(filepath.Join(dir, ssl.PrivateKeyFile))
			if err != nil {
				t.Fatalf("Key not copied for %s: %v", tc.domain, err)
			}
			if info.Mode().Perm() != 0600 {
				t.Errorf("key mode for %s = %o, want 600", tc.domain, info.Mode().Perm())
			}
		}

		if _, err := os.Stat(filepath.Join(env.volumesRoot, config.DefaultVolume, "_data", "fail.example.com")); !os.IsNotExist(err) {
			t.Error("failed domain should not get a volume directory")
		}
	})

	t.Run("Failure carries certbot output", func(t *testing.T) {
		for _, d := range report.Domains {
			if d.Domain == "fail.example.com" && !strings.Contains(d.Error, "Challenge failed") {
				t.Errorf("unexpected error: %s", d.Error)
			}
		}
	})
}

func TestRenewIntegration_ConfigError(t *testing.T) {
	env := setupTools(t)

	report := env.orchestrator(t).Run(nil, errs.Config("configuration file not found"))

	if report.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", report.ExitCode())
	}
	cmds := env.commands(t)
	if len(cmds) != 1 || cmds[0] != "docker start reverse-proxy" {
		t.Errorf("only the proxy start should run, got %v", cmds)
	}
}

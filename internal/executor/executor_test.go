package executor

import (
	"errors"
	"strings"
	"testing"
)

func TestSystemExecutor_Execute(t *testing.T) {
	exec := NewSystemExecutor()

	t.Run("echo command", func(t *testing.T) {
		output, err := exec.Execute("echo", "hello")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if string(output) != "hello\n" {
			t.Errorf("expected 'hello\\n', got '%s'", string(output))
		}
	})

	t.Run("arguments are not shell interpreted", func(t *testing.T) {
		output, err := exec.Execute("echo", "a.example.com; touch /tmp/pwned")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if strings.TrimSpace(string(output)) != "a.example.com; touch /tmp/pwned" {
			t.Errorf("unexpected output: %q", string(output))
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.Execute("nonexistent-command-xyz-12345")
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
	})
}

func TestSystemExecutor_LookPath(t *testing.T) {
	exec := NewSystemExecutor()

	t.Run("find sh", func(t *testing.T) {
		path, err := exec.LookPath("sh")
		if err != nil {
			t.Fatalf("LookPath failed: %v", err)
		}
		if path == "" {
			t.Error("expected non-empty path")
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.LookPath("nonexistent-command-xyz-12345")
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
	})
}

func TestRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mock := &MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("ok"), nil
			},
		}
		res := Run(mock, "docker", "stop", "reverse-proxy")
		if !res.OK() {
			t.Fatal("expected OK result")
		}
		if res.Error() != nil {
			t.Errorf("expected nil error, got %v", res.Error())
		}
		if res.Command != "docker stop reverse-proxy" {
			t.Errorf("unexpected command: %s", res.Command)
		}
	})

	t.Run("failure carries output", func(t *testing.T) {
		cause := errors.New("exit status 1")
		mock := &MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("Error: No such container: reverse-proxy\n"), cause
			},
		}
		res := Run(mock, "docker", "stop", "reverse-proxy")
		if res.OK() {
			t.Fatal("expected failed result")
		}
		err := res.Error()
		if !errors.Is(err, cause) {
			t.Error("expected error to unwrap to the process error")
		}
		want := "docker stop reverse-proxy: exit status 1: Error: No such container: reverse-proxy"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("failure without output", func(t *testing.T) {
		mock := &MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return nil, errors.New("exit status 2")
			},
		}
		err := Run(mock, "certbot").Error()
		if err.Error() != "certbot: exit status 2" {
			t.Errorf("unexpected error: %q", err.Error())
		}
	})
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
		want string
	}{
		{"no args", "certbot", nil, "certbot"},
		{"plain args", "docker", []string{"start", "reverse-proxy"}, "docker start reverse-proxy"},
		{"arg with space", "echo", []string{"a b"}, `echo "a b"`},
		{"empty arg", "echo", []string{""}, `echo ""`},
		{"template arg", "docker", []string{"inspect", "-f", "{{.State.Running}}", "x"}, "docker inspect -f {{.State.Running}} x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCommand(tt.cmd, tt.args...); got != tt.want {
				t.Errorf("FormatCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMockExecutor_Execute(t *testing.T) {
	t.Run("default behavior", func(t *testing.T) {
		mock := &MockExecutor{}
		output, err := mock.Execute("test", "arg1", "arg2")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if string(output) != "" {
			t.Errorf("expected empty output, got '%s'", string(output))
		}
		// Verify call was recorded
		if len(mock.Calls) != 1 {
			t.Errorf("expected 1 call, got %d", len(mock.Calls))
		}
		if mock.Calls[0].Name != "test" {
			t.Errorf("expected command 'test', got '%s'", mock.Calls[0].Name)
		}
	})

	t.Run("custom function", func(t *testing.T) {
		mock := &MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("mocked output"), nil
			},
		}
		output, err := mock.Execute("test")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if string(output) != "mocked output" {
			t.Errorf("expected 'mocked output', got '%s'", string(output))
		}
	})

	t.Run("commands and prefixes", func(t *testing.T) {
		mock := &MockExecutor{}
		_, _ = mock.Execute("docker", "stop", "reverse-proxy")
		_, _ = mock.Execute("certbot", "certonly", "-d", "a.example.com")
		_, _ = mock.Execute("docker", "start", "reverse-proxy")

		cmds := mock.Commands()
		if len(cmds) != 3 {
			t.Fatalf("expected 3 commands, got %d", len(cmds))
		}
		if cmds[1] != "certbot certonly -d a.example.com" {
			t.Errorf("unexpected command: %s", cmds[1])
		}
		if n := mock.CountPrefix("docker "); n != 2 {
			t.Errorf("expected 2 docker commands, got %d", n)
		}
	})
}

func TestMockExecutor_LookPath(t *testing.T) {
	t.Run("default behavior", func(t *testing.T) {
		mock := &MockExecutor{}
		path, err := mock.LookPath("certbot")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if path != "/usr/bin/certbot" {
			t.Errorf("expected '/usr/bin/certbot', got '%s'", path)
		}
	})

	t.Run("custom function", func(t *testing.T) {
		mock := &MockExecutor{
			LookPathFunc: func(file string) (string, error) {
				if file == "docker" {
					return "/usr/local/bin/docker", nil
				}
				return "", errors.New("not found")
			},
		}

		path, err := mock.LookPath("docker")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if path != "/usr/local/bin/docker" {
			t.Errorf("expected '/usr/local/bin/docker', got '%s'", path)
		}

		_, err = mock.LookPath("unknown")
		if err == nil {
			t.Error("expected error for unknown command")
		}
	})
}

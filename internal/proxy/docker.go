package proxy

import (
	"strings"

	"github.com/ksyq12/certrenew/internal/executor"
)

const dockerBinary = "docker"

// DockerController controls a reverse proxy running as a docker container
type DockerController struct {
	name string
	exec executor.CommandExecutor
}

// NewDocker creates a controller for the container called name
func NewDocker(name string, exec executor.CommandExecutor) *DockerController {
	return &DockerController{name: name, exec: exec}
}

// Name returns the container name
func (d *DockerController) Name() string {
	return d.name
}

// Stop stops the container
func (d *DockerController) Stop() error {
	if res := executor.Run(d.exec, dockerBinary, "stop", d.name); !res.OK() {
		return proxyError("stop", d.name, res.Error())
	}
	return nil
}

// Start starts the container
func (d *DockerController) Start() error {
	if res := executor.Run(d.exec, dockerBinary, "start", d.name); !res.OK() {
		return proxyError("start", d.name, res.Error())
	}
	return nil
}

// IsRunning inspects the container state
func (d *DockerController) IsRunning() (bool, error) {
	res := executor.Run(d.exec, dockerBinary, "inspect", "-f", "{{.State.Running}}", d.name)
	if !res.OK() {
		return false, proxyError("inspect", d.name, res.Error())
	}
	return strings.TrimSpace(string(res.Output)) == "true", nil
}

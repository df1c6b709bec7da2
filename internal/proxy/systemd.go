package proxy

import (
	"strings"

	"github.com/ksyq12/certrenew/internal/executor"
)

const systemctlBinary = "systemctl"

// SystemdController controls a reverse proxy managed as a systemd unit
type SystemdController struct {
	unit string
	exec executor.CommandExecutor
}

// NewSystemd creates a controller for the unit called unit
func NewSystemd(unit string, exec executor.CommandExecutor) *SystemdController {
	return &SystemdController{unit: unit, exec: exec}
}

// Name returns the unit name
func (s *SystemdController) Name() string {
	return s.unit
}

// Stop stops the unit
func (s *SystemdController) Stop() error {
	if res := executor.Run(s.exec, systemctlBinary, "stop", s.unit); !res.OK() {
		return proxyError("stop", s.unit, res.Error())
	}
	return nil
}

// Start starts the unit
func (s *SystemdController) Start() error {
	if res := executor.Run(s.exec, systemctlBinary, "start", s.unit); !res.OK() {
		return proxyError("start", s.unit, res.Error())
	}
	return nil
}

// IsRunning asks systemd whether the unit is active.
// is-active exits non-zero for inactive units, so the printed state decides.
func (s *SystemdController) IsRunning() (bool, error) {
	res := executor.Run(s.exec, systemctlBinary, "is-active", s.unit)
	state := strings.TrimSpace(string(res.Output))
	switch state {
	case "active", "reloading":
		return true, nil
	case "inactive", "failed", "activating", "deactivating", "unknown":
		return false, nil
	}
	if !res.OK() {
		return false, proxyError("query", s.unit, res.Error())
	}
	return false, nil
}

// Package proxy stops and starts the reverse proxy that owns ports 80
// and 443, so certbot can answer the ACME challenge in standalone mode.
//
// # Supported Proxies
//
//   - docker: a container controlled with docker stop/start/inspect
//   - systemd: a unit controlled with systemctl stop/start/is-active
//
// # Basic Usage
//
//	ctrl, err := proxy.New(cfg.Proxy.Type, cfg.Proxy.Name, executor.NewSystemExecutor())
//	if err != nil {
//	    return err
//	}
//	if err := ctrl.Stop(); err != nil {
//	    logger.Error("Failed to stop reverse proxy: %v", err)
//	}
//	defer ctrl.Start()
//
// # Testing
//
// Controllers take an executor.CommandExecutor, so tests can pass an
// executor.MockExecutor and assert on the recorded commands. Code that
// only needs a Controller can use MockController instead.
//
// # Error Handling
//
// Stop, Start and IsRunning failures carry the PROXY error code together
// with the command line and its output.
package proxy

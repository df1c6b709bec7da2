// Package renew runs a certificate renewal: stop the reverse proxy,
// obtain and install the certificate of every configured domain, start
// the reverse proxy again.
//
// The start step runs exactly once on every path, including a
// configuration that failed to load and a panic in a collaborator.
// A configuration error skips the stop step and all domains.
//
// Errors come in two tiers:
//
//   - Fatal: the configuration could not be loaded, or something
//     unexpected happened. Logged as "Script execution failed: ..." and
//     reported through Report.ExitCode.
//   - Isolated: a domain failed to issue or copy, or the proxy failed to
//     stop or start. Logged with context; the run carries on.
//
// Basic usage:
//
//	orch := renew.New(ctrl, ssl.NewIssuer(exec, opts), volume.NewStore(root), renew.Options{})
//	report := orch.Run(cfg.Domains, loadErr)
//	os.Exit(report.ExitCode())
package renew

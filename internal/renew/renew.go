package renew

import (
	"strings"
	"time"

	"github.com/ksyq12/certrenew/internal/config"
	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/logger"
	"github.com/ksyq12/certrenew/internal/proxy"
	"github.com/ksyq12/certrenew/internal/ssl"
	"github.com/ksyq12/certrenew/internal/volume"
)

// Issuer obtains the certificate for a domain
type Issuer interface {
	Obtain(domain string) (*ssl.Cert, error)
}

// Installer copies an obtained certificate into a volume
type Installer interface {
	Install(cert *ssl.Cert, volume string) (*volume.Installation, error)
	DestDir(volume, domain string) string
}

// commandPlanner is implemented by issuers that can describe their command
type commandPlanner interface {
	ObtainArgs(domain string) []string
}

// Options tunes a run
type Options struct {
	// DryRun logs what would happen without touching the proxy, the
	// issuer or the volumes.
	DryRun bool
}

// Orchestrator brackets certificate work between a proxy stop and start
type Orchestrator struct {
	proxy     proxy.Controller
	issuer    Issuer
	installer Installer
	opts      Options
	now       func() time.Time
}

// New creates an Orchestrator
func New(ctrl proxy.Controller, issuer Issuer, installer Installer, opts Options) *Orchestrator {
	return &Orchestrator{
		proxy:     ctrl,
		issuer:    issuer,
		installer: installer,
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for report timestamps
func (o *Orchestrator) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	o.now = now
}

// Run renews the given domains. loadErr is the error, if any, from loading
// the configuration; when set, the proxy is not stopped and no domain is
// processed. The proxy is started exactly once on every path, panics
// included, and Run never panics itself.
func (o *Orchestrator) Run(domains []config.Domain, loadErr error) (report *Report) {
	report = &Report{
		StartedAt: o.now(),
		DryRun:    o.opts.DryRun,
		Domains:   make([]DomainResult, 0, len(domains)),
	}

	defer func() {
		if r := recover(); r != nil {
			report.setFatal(errs.Recovered(r))
		}
		if err := report.Err(); err != nil {
			logger.Error("Script execution failed: %v", err)
		}
		report.ProxyStart = o.startProxy()
		report.FinishedAt = o.now()
		logger.DebugFields("Run finished", map[string]interface{}{
			"succeeded": report.Succeeded(),
			"failed":    report.Failed(),
		})
	}()

	if loadErr != nil {
		report.setFatal(loadErr)
		return report
	}

	report.ProxyStop = o.stopProxy()

	for _, d := range domains {
		report.Domains = append(report.Domains, o.process(d))
	}

	return report
}

func (o *Orchestrator) stopProxy() StepResult {
	logger.Info("Stopping reverse proxy...")
	if o.opts.DryRun {
		logger.Info("[dry-run] would stop %s", o.proxy.Name())
		return StepResult{}
	}
	if err := o.proxy.Stop(); err != nil {
		logger.Error("Failed to stop reverse proxy: %v", err)
		return stepResult(err)
	}
	logger.Info("Reverse proxy stopped successfully")
	return stepResult(nil)
}

// startProxy never panics past the deferred call in Run.
func (o *Orchestrator) startProxy() (result StepResult) {
	defer func() {
		if r := recover(); r != nil {
			err := errs.Recovered(r)
			logger.Error("Failed to start reverse proxy: %v", err)
			result = stepResult(err)
		}
	}()

	logger.Info("Starting reverse proxy...")
	if o.opts.DryRun {
		logger.Info("[dry-run] would start %s", o.proxy.Name())
		return StepResult{}
	}
	if err := o.proxy.Start(); err != nil {
		logger.Error("Failed to start reverse proxy: %v", err)
		return stepResult(err)
	}
	logger.Info("Reverse proxy started successfully")
	return stepResult(nil)
}

// process runs issue-then-copy for one domain. Failures are logged with
// the domain and recorded, never returned.
func (o *Orchestrator) process(d config.Domain) (result DomainResult) {
	vol := d.Volume()
	result = DomainResult{Domain: d.URL, Volume: vol}

	defer func() {
		if r := recover(); r != nil {
			result = o.fail(result, errs.WrapDomain(errs.ErrCodeInternal, d.URL, errs.Recovered(r)))
		}
	}()

	result.DestDir = o.installer.DestDir(vol, d.URL)

	logger.Info("Obtaining certificate for %s", d.URL)
	if o.opts.DryRun {
		if p, ok := o.issuer.(commandPlanner); ok {
			logger.Info("[dry-run] would run: certbot %s", strings.Join(p.ObtainArgs(d.URL), " "))
		}
		logger.Info("Copying certificates for %s", d.URL)
		logger.Info("[dry-run] would copy certificates to %s", result.DestDir)
		result.Status = StatusPlanned
		return result
	}

	cert, err := o.issuer.Obtain(d.URL)
	if err != nil {
		return o.fail(result, err)
	}

	logger.Info("Copying certificates for %s", d.URL)
	inst, err := o.installer.Install(cert, vol)
	if err != nil {
		return o.fail(result, err)
	}
	result.DestDir = inst.Dir

	logger.Info("Successfully processed %s", d.URL)
	result.Status = StatusSuccess
	return result
}

func (o *Orchestrator) fail(result DomainResult, err error) DomainResult {
	logger.Error("Failed to process %s: %v", result.Domain, err)
	result.Status = StatusFailed
	result.err = err
	result.Error = err.Error()
	return result
}

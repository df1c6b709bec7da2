package renew

import (
	"time"

	errs "github.com/ksyq12/certrenew/internal/errors"
)

// Status is the outcome of processing one domain
type Status string

// Domain outcomes
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPlanned Status = "planned" // dry run
)

// StepResult is the outcome of a proxy stop or start attempt
type StepResult struct {
	Attempted bool   `json:"attempted"`
	Error     string `json:"error,omitempty"`
	err       error
}

// OK reports whether the step was attempted and succeeded
func (s StepResult) OK() bool {
	return s.Attempted && s.err == nil
}

// Err returns the step error, if any
func (s StepResult) Err() error {
	return s.err
}

func stepResult(err error) StepResult {
	r := StepResult{Attempted: true, err: err}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// DomainResult is the outcome of processing one domain
type DomainResult struct {
	Domain  string `json:"domain"`
	Volume  string `json:"volume"`
	DestDir string `json:"dest_dir"`
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	err     error
}

// Err returns the error that failed the domain, if any
func (d DomainResult) Err() error {
	return d.err
}

// Report summarizes a renewal run
type Report struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run,omitempty"`
	ProxyStop  StepResult     `json:"proxy_stop"`
	ProxyStart StepResult     `json:"proxy_start"`
	Domains    []DomainResult `json:"domains"`
	Fatal      string         `json:"fatal,omitempty"`
	fatal      error
}

// Succeeded returns the number of domains processed successfully
func (r *Report) Succeeded() int {
	return r.count(StatusSuccess)
}

// Failed returns the number of domains that failed
func (r *Report) Failed() int {
	return r.count(StatusFailed)
}

func (r *Report) count(status Status) int {
	n := 0
	for _, d := range r.Domains {
		if d.Status == status {
			n++
		}
	}
	return n
}

// Err returns the fatal error that ended the run, if any
func (r *Report) Err() error {
	return r.fatal
}

// ExitCode is 0 unless the run ended with a fatal error.
// Per-domain and proxy failures are isolated and do not change it.
func (r *Report) ExitCode() int {
	if r.fatal != nil {
		return 1
	}
	return 0
}

func (r *Report) setFatal(err error) {
	if err == nil {
		return
	}
	if !errs.IsFatal(err) {
		err = errs.Wrap(errs.ErrCodeInternal, "unexpected error", err)
	}
	r.fatal = err
	r.Fatal = err.Error()
}

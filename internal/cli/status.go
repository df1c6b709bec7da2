package cli

import (
	"time"

	"github.com/spf13/cobra"

	errs "github.com/ksyq12/certrenew/internal/errors"
	"github.com/ksyq12/certrenew/internal/output"
	"github.com/ksyq12/certrenew/internal/ssl"
	"github.com/ksyq12/certrenew/internal/volume"
)

var statusWarnDays int

var statusCmd = &cobra.Command{
	Use:   "status [domain...]",
	Short: "Show the certificates installed in each domain's volume",
	Long: `Read the certificate installed in each configured domain's volume and
show when it expires.

Examples:
  certrenew status
  certrenew status a.example.com
  certrenew status --warn-days 14 --json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusWarnDays, "warn-days", 30, "Flag certificates expiring within this many days")
	rootCmd.AddCommand(statusCmd)
}

// Certificate states
const (
	certValid    = "valid"
	certExpiring = "expiring"
	certExpired  = "expired"
	certMissing  = "missing"
	certError    = "error"
)

// CertStatus describes the certificate installed for one domain
type CertStatus struct {
	Domain   string     `json:"domain"`
	Volume   string     `json:"volume"`
	Path     string     `json:"path"`
	State    string     `json:"state"`
	NotAfter *time.Time `json:"not_after,omitempty"`
	DaysLeft *int       `json:"days_left,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	domains, err := cfg.Select(args)
	if err != nil {
		return err
	}

	store := volume.NewStore(cfg.Paths.VolumesRoot)
	now := deps.Clock.Now()
	warn := time.Duration(statusWarnDays) * 24 * time.Hour

	statuses := make([]CertStatus, 0, len(domains))
	for _, d := range domains {
		st := CertStatus{
			Domain: d.URL,
			Volume: d.Volume(),
			Path:   store.DestDir(d.Volume(), d.URL),
		}

		inst, err := store.Installed(d.Volume(), d.URL)
		if err != nil {
			st.State = certError
			if errs.Is(err, errs.ErrCertNotInstalled) {
				st.State = certMissing
			}
			st.Error = err.Error()
			statuses = append(statuses, st)
			continue
		}

		info, err := ssl.ReadCertificate(inst.CertPath)
		if err != nil {
			st.State = certError
			st.Error = err.Error()
			statuses = append(statuses, st)
			continue
		}

		days := info.DaysLeft(now)
		st.NotAfter = &info.NotAfter
		st.DaysLeft = &days
		switch {
		case info.Expired(now):
			st.State = certExpired
		case info.ExpiresWithin(warn, now):
			st.State = certExpiring
		default:
			st.State = certValid
		}
		statuses = append(statuses, st)
	}

	if jsonOutput {
		return output.JSON(statuses)
	}

	if len(statuses) == 0 {
		output.Print("No domains configured")
		return nil
	}

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		expires, days := "-", "-"
		if st.NotAfter != nil {
			expires = st.NotAfter.UTC().Format("2006-01-02")
			days = output.Days(*st.DaysLeft, statusWarnDays)
		}
		rows = append(rows, []string{st.Domain, st.Volume, expires, days, output.Status(st.State)})
	}
	output.Table([]string{"DOMAIN", "VOLUME", "EXPIRES", "DAYS", "STATE"}, rows)

	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"leasesync/internal/dns"
)

func syncCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	c := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass from UniFi leases to DNS records",
		Long: `Run one sync pass from UniFi leases to DNS records.

Passes are serialized across processes only when REDIS_ADDR is set. Without it
the lock is held in memory and covers this process alone, so a cron pass can
overlap the worker of a running "serve".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.runner.RunOnce(ctx, dryRun)
			return passResult(report, err)
		},
	}

	c.Flags().BoolVar(&dryRun, "dry-run", false, "show planned changes without applying them")
	return c
}

// passResult turns a finished pass into the command error that selects the exit code
func passResult(report *dns.Report, err error) error {
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}
	if !report.Succeeded() {
		return &exitError{
			code: ExitFailure,
			err:  fmt.Errorf("%d record(s) failed: %w", report.Apply.Failed, report.Apply.Err()),
		}
	}
	return nil
}

package dns

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"leasesync/internal/dnstypes"
)

// RecordError is the per-record detail of a failed create or update.
type RecordError struct {
	Op       string `json:"op"` // create | update
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
	Error    string `json:"error"`
}

// ApplyReport aggregates the outcome of executing a SyncPlan.
type ApplyReport struct {
	DryRun      bool          `json:"dry_run"`
	WouldCreate int           `json:"would_create"`
	WouldUpdate int           `json:"would_update"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Failed      int           `json:"failed"`
	Errors      []RecordError `json:"errors,omitempty"`

	errs []error
}

// Applied is the number of mutations that succeeded.
func (r ApplyReport) Applied() int {
	return r.Created + r.Updated
}

// Err returns every record failure as one error, or nil.
func (r ApplyReport) Err() error {
	var result *multierror.Error
	for _, err := range r.errs {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Apply executes a plan against the sink.
//
// In dry-run mode the sink is never called; the report only says what would happen.
// Otherwise every planned operation is attempted: a failing record is recorded
// and the rest of the batch still runs.
func Apply(ctx context.Context, sink Sink, plan dnstypes.SyncPlan, dryRun bool, logger *logrus.Entry) ApplyReport {
	report := ApplyReport{DryRun: dryRun}

	if dryRun {
		for _, c := range plan.Creates {
			logger.Infof("[DRY RUN] Would add %s -> %s", c.Hostname, c.IP)
		}
		for _, u := range plan.Updates {
			logger.Infof("[DRY RUN] Would update %s: %s -> %s", u.Desired.Hostname, u.Existing.IP, u.Desired.IP)
		}
		report.WouldCreate = len(plan.Creates)
		report.WouldUpdate = len(plan.Updates)
		return report
	}

	for _, c := range plan.Creates {
		if err := sink.CreateRecord(ctx, c); err != nil {
			report.fail("create", c, err)
			logger.Errorf("Failed to add DNS record %s -> %s: %v", c.Hostname, c.IP, err)
			continue
		}
		report.Created++
		logger.Infof("Added %s -> %s", c.Hostname, c.IP)
	}

	for _, u := range plan.Updates {
		if err := sink.UpdateRecord(ctx, u.Existing, u.Desired); err != nil {
			report.fail("update", u.Desired, err)
			logger.Errorf("Failed to update DNS record %s: %s -> %s: %v", u.Desired.Hostname, u.Existing.IP, u.Desired.IP, err)
			continue
		}
		report.Updated++
		logger.Infof("Updated %s: %s -> %s", u.Desired.Hostname, u.Existing.IP, u.Desired.IP)
	}

	return report
}

func (r *ApplyReport) fail(op string, record dnstypes.ResolvedRecord, err error) {
	wrapped := dnstypes.NewError(op+" "+record.Hostname, dnstypes.KindRecordApply, err)
	r.Failed++
	r.errs = append(r.errs, wrapped)
	r.Errors = append(r.Errors, RecordError{
		Op:       op,
		Hostname: record.Hostname,
		IP:       record.IP,
		Error:    err.Error(),
	})
}

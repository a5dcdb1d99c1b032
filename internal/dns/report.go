package dns

import (
	"time"

	"leasesync/internal/dnstypes"
)

// State is a stage of one sync pass.
type State string

const (
	StateFetching      State = "fetching"
	StateFiltering     State = "filtering"
	StateSanitizing    State = "sanitizing"
	StateDeduplicating State = "deduplicating"
	StateDiffing       State = "diffing"
	StateApplying      State = "applying"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Report is the outcome of one sync pass. It is built up by the pass itself
// and handed to the caller; nothing about it outlives the pass.
type Report struct {
	PassID     string    `json:"pass_id"`
	DryRun     bool      `json:"dry_run"`
	State      State     `json:"state"`
	FailedAt   State     `json:"failed_at,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	LeasesFetched     int `json:"leases_fetched"`
	Inactive          int `json:"inactive"`
	FilteredOut       int `json:"filtered_out"`
	SkippedNoHostname int `json:"skipped_no_hostname"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	Renamed           int `json:"renamed"`
	Desired           int `json:"desired"`
	Existing          int `json:"existing"`
	Unchanged         int `json:"unchanged"`
	PlannedCreates    int `json:"planned_creates"`
	PlannedUpdates    int `json:"planned_updates"`

	Plan  dnstypes.SyncPlan `json:"plan"`
	Apply ApplyReport       `json:"apply"`
}

// Succeeded reports whether the pass reached Done without any failed record.
func (r *Report) Succeeded() bool {
	return r.State == StateDone && r.Apply.Failed == 0
}

// Duration is the wall time of the pass.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

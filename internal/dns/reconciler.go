package dns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"leasesync/internal/dnstypes"
	"leasesync/internal/lease"
	"leasesync/internal/subnet"
)

const sinkCloseTimeout = 5 * time.Second

// ReconcilerConfig holds the inputs of a sync pass that are not live data
type ReconcilerConfig struct {
	Zone           string   // DNS suffix appended to every hostname
	AllowedSubnets []string // literal IP string prefixes, empty = all
	DeniedSubnets  []string // literal IP string prefixes, always excluded
}

// Reconciler runs sync passes from a lease source into a DNS sink.
// It keeps no state between passes.
type Reconciler struct {
	source lease.Source
	sink   Sink
	config ReconcilerConfig
	logger *logrus.Entry
	now    func() time.Time
}

// NewReconciler creates a new Reconciler
func NewReconciler(source lease.Source, sink Sink, config ReconcilerConfig, logger *logrus.Entry) *Reconciler {
	return &Reconciler{
		source: source,
		sink:   sink,
		config: config,
		logger: logger.WithField("component", "reconciler"),
		now:    time.Now,
	}
}

// Run performs one sync pass:
// Fetching -> Filtering -> Sanitizing -> Deduplicating -> Diffing -> Applying -> Done.
//
// A source or sink error while fetching, or an inconsistent plan, ends the pass in
// Failed before anything is written and is returned as the error. Record failures
// while applying do not: the pass still ends in Done and carries them in the report.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{
		PassID:    uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: r.now(),
	}
	log := r.logger.WithField("pass_id", report.PassID)

	mode := ""
	if dryRun {
		mode = " (DRY RUN)"
	}
	log.Info(strings.Repeat("=", 50))
	log.Infof("Starting sync%s", mode)

	defer func() {
		// the session is logged out even when the pass was cancelled
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkCloseTimeout)
		defer cancel()
		if err := r.sink.Close(closeCtx); err != nil {
			log.Warnf("Failed to close DNS sink session: %v", err)
		}
	}()

	// Fetching
	report.State = StateFetching
	leases, existing, err := r.fetch(ctx)
	if err != nil {
		return r.fail(report, log, err)
	}
	report.LeasesFetched = len(leases)
	report.Existing = len(existing)
	log.Infof("Fetched %d leases and %d existing DNS records", len(leases), len(existing))
	if len(leases) == 0 {
		log.Warn("No active leases found - nothing to sync")
	}

	// Filtering
	report.State = StateFiltering
	included := make([]dnstypes.Lease, 0, len(leases))
	for _, l := range leases {
		if !l.Active {
			report.Inactive++
			log.Debugf("Dropping inactive lease %s (%s)", l.IP, l.MAC)
			continue
		}
		if !subnet.Included(l.IP, r.config.AllowedSubnets, r.config.DeniedSubnets) {
			report.FilteredOut++
			log.Debugf("Dropping lease %s (%s): outside configured subnets", l.IP, l.MAC)
			continue
		}
		included = append(included, l)
	}

	// Sanitizing
	report.State = StateSanitizing
	candidates := make([]dnstypes.Candidate, 0, len(included))
	for _, l := range included {
		name := Sanitize(l.Hostname)
		if name != "" {
			name = NormalizeRelativeName(name, r.config.Zone)
		}
		if name == "" || name == "@" {
			report.SkippedNoHostname++
			log.Infof("Skipping lease %s (%s): no usable hostname in %q", l.IP, l.MAC, l.Hostname)
			continue
		}
		candidates = append(candidates, dnstypes.Candidate{Hostname: name, IP: l.IP, Lease: l})
	}

	// Deduplicating
	report.State = StateDeduplicating
	SortCandidates(candidates)
	desired, stats := Resolve(candidates, r.config.Zone)
	report.Desired = len(desired)
	report.Renamed = stats.Renamed
	report.DuplicatesDropped = stats.DuplicatesDropped

	subnetMsg := ""
	if len(r.config.AllowedSubnets) > 0 {
		subnetMsg = " in subnets " + strings.Join(r.config.AllowedSubnets, ", ")
	}
	log.Infof("Found %d active clients%s", len(desired), subnetMsg)

	// Diffing
	report.State = StateDiffing
	plan, unchanged, err := BuildPlan(desired, existing)
	if err != nil {
		return r.fail(report, log, fmt.Errorf("build plan: %w", err))
	}
	report.Plan = plan
	report.Unchanged = unchanged
	report.PlannedCreates = len(plan.Creates)
	report.PlannedUpdates = len(plan.Updates)

	// Applying
	report.State = StateApplying
	report.Apply = Apply(ctx, r.sink, plan, dryRun, log)

	report.State = StateDone
	report.FinishedAt = r.now()

	added, updated := report.Apply.Created, report.Apply.Updated
	if dryRun {
		added, updated = report.Apply.WouldCreate, report.Apply.WouldUpdate
	}
	log.WithFields(logrus.Fields{
		"renamed":      report.Renamed,
		"filtered_out": report.FilteredOut,
		"duration":     report.Duration().String(),
	}).Infof("Sync complete: %d added, %d updated, %d skipped, %d failed",
		added, updated, report.Unchanged, report.Apply.Failed)
	log.Info(strings.Repeat("=", 50))

	return report, nil
}

// fetch reads leases and existing records concurrently; the two are independent.
func (r *Reconciler) fetch(ctx context.Context) ([]dnstypes.Lease, []dnstypes.ExistingRecord, error) {
	var (
		leases   []dnstypes.Lease
		existing []dnstypes.ExistingRecord
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leases, err = r.source.FetchActiveLeases(groupCtx)
		if err != nil && dnstypes.KindOf(err) == "" {
			err = dnstypes.NewError("fetch leases", dnstypes.KindSourceUnavailable, err)
		}
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = r.sink.ListRecords(groupCtx)
		if err != nil && dnstypes.KindOf(err) == "" {
			err = dnstypes.NewError("list records", dnstypes.KindSinkUnavailable, err)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return leases, existing, nil
}

func (r *Reconciler) fail(report *Report, log *logrus.Entry, err error) (*Report, error) {
	report.FailedAt = report.State
	report.State = StateFailed
	report.Error = err.Error()
	report.ErrorKind = string(dnstypes.KindOf(err))
	report.FinishedAt = r.now()
	log.WithField("failed_at", report.FailedAt).Errorf("Aborting sync: %v", err)
	log.Info(strings.Repeat("=", 50))
	return report, err
}

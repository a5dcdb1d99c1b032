package dns

import (
	"fmt"

	"leasesync/internal/dnstypes"
)

// BuildPlan diffs desired records against the resolver's current records.
//
// - desired name not on the resolver                 -> create
// - desired name on the resolver with any other IP   -> update (against the first differing entry)
// - desired name on the resolver with only this IP   -> unchanged, no call
//
// Names compare case-insensitively without the trailing dot. Existing records
// with no desired counterpart are left alone. Desired names must be unique.
func BuildPlan(desired []dnstypes.ResolvedRecord, existing []dnstypes.ExistingRecord) (dnstypes.SyncPlan, int, error) {
	var plan dnstypes.SyncPlan
	unchanged := 0

	current := make(map[string][]dnstypes.ExistingRecord, len(existing))
	for _, e := range existing {
		key := NormalizeName(e.Hostname)
		current[key] = append(current[key], e)
	}

	seen := make(map[string]bool, len(desired))
	for _, d := range desired {
		key := NormalizeName(d.Hostname)
		if seen[key] {
			return dnstypes.SyncPlan{}, 0, fmt.Errorf("desired hostname %s appears more than once", d.Hostname)
		}
		seen[key] = true

		entries, ok := current[key]
		if !ok {
			plan.Creates = append(plan.Creates, d)
			continue
		}

		stale, ok := firstOtherIP(entries, d.IP)
		if !ok {
			unchanged++
			continue
		}

		plan.Updates = append(plan.Updates, dnstypes.RecordUpdate{
			Existing: stale,
			Desired:  d,
		})
	}

	return plan, unchanged, nil
}

func firstOtherIP(entries []dnstypes.ExistingRecord, ip string) (dnstypes.ExistingRecord, bool) {
	for _, e := range entries {
		if e.IP != ip {
			return e, true
		}
	}
	return dnstypes.ExistingRecord{}, false
}

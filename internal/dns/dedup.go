package dns

import (
	"bytes"
	"fmt"
	"net"
	"sort"
	"strings"

	"leasesync/internal/dnstypes"
)

// DedupStats counts what Resolve did besides passing names through.
type DedupStats struct {
	Renamed           int `json:"renamed"`            // got a -<octet> (or counter) suffix
	DuplicatesDropped int `json:"duplicates_dropped"` // same name and same IP seen again
}

// SortCandidates orders candidates by numeric IPv4 address, then MAC, so that
// the first owner of a name is the same on every pass regardless of the order
// the controller lists clients in. Unparseable addresses sort last, by string.
func SortCandidates(candidates []dnstypes.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ipA, ipB := net.ParseIP(a.IP).To4(), net.ParseIP(b.IP).To4()
		switch {
		case ipA != nil && ipB == nil:
			return true
		case ipA == nil && ipB != nil:
			return false
		case ipA != nil && ipB != nil:
			if c := bytes.Compare(ipA, ipB); c != 0 {
				return c < 0
			}
		default:
			if a.IP != b.IP {
				return a.IP < b.IP
			}
		}
		return a.Lease.MAC < b.Lease.MAC
	})
}

// Resolve assigns every candidate a unique name, in input order.
//
// The first candidate with a given hostname keeps it. A later candidate with the
// same hostname but a different IP becomes "<hostname>-<last octet>"; if that name is
// already taken too, a counter is appended ("<hostname>-<last octet>-2", ...).
// A repeated (hostname, IP) pair is dropped. Names are qualified with zone.
func Resolve(candidates []dnstypes.Candidate, zone string) ([]dnstypes.ResolvedRecord, DedupStats) {
	var stats DedupStats

	ipsByName := make(map[string]map[string]bool, len(candidates))
	taken := make(map[string]bool, len(candidates))
	records := make([]dnstypes.ResolvedRecord, 0, len(candidates))

	for _, c := range candidates {
		ips := ipsByName[c.Hostname]
		if ips == nil {
			ips = make(map[string]bool)
			ipsByName[c.Hostname] = ips
		}
		if ips[c.IP] {
			stats.DuplicatesDropped++
			continue
		}
		ips[c.IP] = true

		name := c.Hostname
		if taken[name] {
			name = fmt.Sprintf("%s-%s", c.Hostname, lastOctet(c.IP))
			if taken[name] {
				base := name
				for i := 2; taken[name]; i++ {
					name = fmt.Sprintf("%s-%d", base, i)
				}
			}
			stats.Renamed++
		}
		taken[name] = true

		records = append(records, dnstypes.ResolvedRecord{
			Hostname: ToFQDN(zone, name),
			IP:       c.IP,
		})
	}

	return records, stats
}

func lastOctet(ip string) string {
	if i := strings.LastIndex(ip, "."); i >= 0 {
		return ip[i+1:]
	}
	return ip
}

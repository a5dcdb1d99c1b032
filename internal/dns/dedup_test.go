package dns

import (
	"reflect"
	"testing"

	"leasesync/internal/dnstypes"
)

func candidate(host, ip, mac string) dnstypes.Candidate {
	return dnstypes.Candidate{
		Hostname: host,
		IP:       ip,
		Lease:    dnstypes.Lease{MAC: mac, IP: ip, Hostname: host, Active: true},
	}
}

func hostnames(records []dnstypes.ResolvedRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Hostname)
	}
	return out
}

func TestResolve_FirstOccurrenceKeepsBaseName(t *testing.T) {
	candidates := []dnstypes.Candidate{
		candidate("laptop", "192.168.1.101", "aa:00"),
		candidate("laptop", "192.168.1.102", "aa:01"),
		candidate("laptop", "192.168.1.103", "aa:02"),
	}

	records, stats := Resolve(candidates, "home.arpa")

	expected := []string{"laptop.home.arpa", "laptop-102.home.arpa", "laptop-103.home.arpa"}
	if got := hostnames(records); !reflect.DeepEqual(got, expected) {
		t.Errorf("hostnames = %v; want %v", got, expected)
	}
	if stats.Renamed != 2 {
		t.Errorf("Renamed = %d; want 2", stats.Renamed)
	}
	for i, r := range records {
		if r.IP != candidates[i].IP {
			t.Errorf("record %d IP = %s; want %s", i, r.IP, candidates[i].IP)
		}
	}
}

func TestResolve_DistinctNamesPassThrough(t *testing.T) {
	records, stats := Resolve([]dnstypes.Candidate{
		candidate("printer", "10.0.0.5", "aa:00"),
		candidate("nas", "10.0.0.6", "aa:01"),
	}, "lan")

	expected := []string{"printer.lan", "nas.lan"}
	if got := hostnames(records); !reflect.DeepEqual(got, expected) {
		t.Errorf("hostnames = %v; want %v", got, expected)
	}
	if stats != (DedupStats{}) {
		t.Errorf("stats = %+v; want zero", stats)
	}
}

func TestResolve_SameNameSameIPCollapses(t *testing.T) {
	records, stats := Resolve([]dnstypes.Candidate{
		candidate("tv", "10.0.0.9", "aa:00"),
		candidate("tv", "10.0.0.9", "aa:01"),
	}, "lan")

	if len(records) != 1 || records[0].Hostname != "tv.lan" {
		t.Errorf("records = %+v; want single tv.lan", records)
	}
	if stats.DuplicatesDropped != 1 {
		t.Errorf("DuplicatesDropped = %d; want 1", stats.DuplicatesDropped)
	}
}

func TestResolve_CrossSubnetOctetCollisionGetsCounter(t *testing.T) {
	records, _ := Resolve([]dnstypes.Candidate{
		candidate("cam", "192.168.1.20", "aa:00"),
		candidate("cam", "192.168.2.20", "aa:01"),
		candidate("cam", "192.168.3.20", "aa:02"),
	}, "lan")

	expected := []string{"cam.lan", "cam-20.lan", "cam-20-2.lan"}
	if got := hostnames(records); !reflect.DeepEqual(got, expected) {
		t.Errorf("hostnames = %v; want %v", got, expected)
	}
}

func TestResolve_SuffixedNameAlreadyOwned(t *testing.T) {
	// A device literally named "laptop-102" owns that name before the collision.
	records, _ := Resolve([]dnstypes.Candidate{
		candidate("laptop-102", "10.0.0.2", "aa:00"),
		candidate("laptop", "10.0.0.3", "aa:01"),
		candidate("laptop", "192.168.1.102", "aa:02"),
	}, "lan")

	expected := []string{"laptop-102.lan", "laptop.lan", "laptop-102-2.lan"}
	if got := hostnames(records); !reflect.DeepEqual(got, expected) {
		t.Errorf("hostnames = %v; want %v", got, expected)
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.Hostname] {
			t.Errorf("duplicate final hostname %s", r.Hostname)
		}
		seen[r.Hostname] = true
	}
}

func TestSortCandidates(t *testing.T) {
	candidates := []dnstypes.Candidate{
		candidate("b", "192.168.1.20", "aa:02"),
		candidate("x", "bogus", "aa:09"),
		candidate("a", "192.168.1.3", "aa:01"),
		candidate("c", "10.0.0.1", "aa:03"),
		candidate("d", "192.168.1.3", "aa:00"),
	}

	SortCandidates(candidates)

	var order []string
	for _, c := range candidates {
		order = append(order, c.Hostname)
	}
	expected := []string{"c", "d", "a", "b", "x"}
	if !reflect.DeepEqual(order, expected) {
		t.Errorf("order = %v; want %v", order, expected)
	}
}

package dnstypes

// Lease is one active DHCP assignment reported by the controller.
type Lease struct {
	MAC      string // identity key from the controller
	IP       string // dotted-quad IPv4
	Hostname string // raw, unsanitized
	Active   bool
	Static   bool // fixed IP reservation on the controller
}

// Candidate is a lease that passed subnet filtering and hostname sanitization.
type Candidate struct {
	Hostname string // sanitized
	IP       string
	Lease    Lease
}

// ResolvedRecord is the desired host-to-IP mapping for one name.
type ResolvedRecord struct {
	Hostname string `json:"hostname"` // FQDN, unique within a pass
	IP       string `json:"ip"`
}

// ExistingRecord is a host-to-IP mapping currently present on the resolver.
type ExistingRecord struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
}

// RecordUpdate pairs the record on the resolver with the state it must move to.
type RecordUpdate struct {
	Existing ExistingRecord `json:"existing"`
	Desired  ResolvedRecord `json:"desired"`
}

// SyncPlan is the minimal set of mutations that brings the resolver in line
// with the desired records. It is never modified after it is built.
type SyncPlan struct {
	Creates []ResolvedRecord `json:"creates"`
	Updates []RecordUpdate   `json:"updates"`
}

// Empty reports whether the plan has nothing to do.
func (p SyncPlan) Empty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0
}

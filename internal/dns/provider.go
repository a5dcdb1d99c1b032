package dns

import (
	"context"

	"leasesync/internal/dnstypes"
)

// Sink defines the interface for resolvers that hold the host records
type Sink interface {
	// ListRecords returns every host-to-IP mapping currently on the resolver
	// Fails with dnstypes.ErrSinkUnavailable or dnstypes.ErrSinkAuth
	ListRecords(ctx context.Context) ([]dnstypes.ExistingRecord, error)

	// CreateRecord adds a new host record
	CreateRecord(ctx context.Context, record dnstypes.ResolvedRecord) error

	// UpdateRecord moves an existing host record to the desired IP
	UpdateRecord(ctx context.Context, existing dnstypes.ExistingRecord, desired dnstypes.ResolvedRecord) error

	// Close releases the resolver session, if any
	Close(ctx context.Context) error
}

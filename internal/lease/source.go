package lease

import (
	"context"

	"leasesync/internal/dnstypes"
)

// Source fetches the DHCP leases currently bound on a controller.
type Source interface {
	// FetchActiveLeases returns active leases only, fully drained into one slice.
	// Fails with dnstypes.ErrSourceUnavailable on transport, timeout or auth
	// errors and dnstypes.ErrSourceProtocol on malformed responses.
	FetchActiveLeases(ctx context.Context) ([]dnstypes.Lease, error)
}

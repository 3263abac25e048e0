package realtime

import "context"

// Conn is the registry's view of one realtime connection. The transport's
// concrete socket type stays hidden behind it, which keeps the registry
// testable without a network.
type Conn interface {
	// Send writes one message to the peer. Failures are the caller's signal
	// to drop the connection; the registry itself never retries.
	Send(ctx context.Context, data []byte) error

	// IsOpen reports whether the connection can still accept writes.
	IsOpen() bool
}

package connector

import "context"

// Provider opens connections for one driver. Providers register themselves
// by name from init.
type Provider interface {
	Connect(ctx context.Context, config Config) (Connection, error)
}

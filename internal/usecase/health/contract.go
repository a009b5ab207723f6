package health

import "context"

// ProviderChecker checks an external model provider's availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks the embedding cache's availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

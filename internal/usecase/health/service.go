// Package health aggregates component availability for the health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates every checked component is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks over the model providers and the
// optional embedding cache.
type Service struct {
	llm       ProviderChecker
	embedding ProviderChecker
	cache     CachePinger
}

// New creates a Service. cache can be nil when the embedding cache is
// disabled.
func New(llm, embedding ProviderChecker, cache CachePinger) *Service {
	return &Service{llm: llm, embedding: embedding, cache: cache}
}

// Check runs health checks against all wired components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	record := func(name string, err error) {
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	record("llm", s.llm.HealthCheck(ctx))
	record("embedding", s.embedding.HealthCheck(ctx))
	if s.cache != nil {
		record("cache", s.cache.Ping(ctx))
	}

	failing := 0
	for _, v := range checks {
		if v == CheckError {
			failing++
		}
	}

	status := Healthy
	switch {
	case failing == len(checks):
		status = Unhealthy
	case failing > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

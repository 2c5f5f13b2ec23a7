package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the query pipeline will fall back but data access works.
	Degraded Status = "degraded"
	// Unhealthy indicates the receipt store is unreachable.
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

// Service coordinates health checks.
type Service struct {
	store StorePinger
	llm   LLMChecker
}

// New creates a Service. llm can be nil.
func New(store StorePinger, llm LLMChecker) *Service {
	return &Service{store: store, llm: llm}
}

// Check runs health checks against all components. A store failure is fatal
// to the service; a model provider failure only degrades it, since the query
// pipeline falls back to owner-scoped filters and count answers.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		status = Unhealthy
	} else {
		checks["store"] = CheckOK
	}

	if s.llm != nil {
		if err := s.llm.HealthCheck(ctx); err != nil {
			checks["llm"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["llm"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}

package observability

import "context"

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the reachability of a single provider.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth aggregates provider health. One unreachable provider only
// degrades the service; every provider down marks it down.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Components []Health     `json:"components,omitempty"`
}

// AvailabilityChecker is implemented by anything with a cheap reachability probe.
type AvailabilityChecker interface {
	Name() string
	IsAvailable(ctx context.Context) bool
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: HealthStatusUp}
}

// Check probes c and records the result.
func (sh *ServiceHealth) Check(ctx context.Context, c AvailabilityChecker) {
	h := Health{Name: c.Name(), Status: HealthStatusUp}
	if !c.IsAvailable(ctx) {
		h.Status = HealthStatusDown
		h.Message = "provider unreachable"
	}
	sh.AddComponent(h)
}

// AddComponent adds a component result and recomputes the overall status.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	down := 0
	for _, c := range sh.Components {
		if c.Status != HealthStatusUp {
			down++
		}
	}
	switch {
	case down == 0:
		sh.Status = HealthStatusUp
	case down == len(sh.Components):
		sh.Status = HealthStatusDown
	default:
		sh.Status = HealthStatusDegraded
	}
}

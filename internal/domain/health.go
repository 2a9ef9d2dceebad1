package domain

// HealthStatus is the outcome class of a single doctor check.
type HealthStatus string

const (
	HealthOK   HealthStatus = "ok"
	HealthWarn HealthStatus = "warn"
	HealthFail HealthStatus = "fail"
)

// HealthCheck is one named diagnostic result.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport aggregates doctor checks.
type HealthReport struct {
	Checks []HealthCheck
}

// Healthy reports whether no check failed.
func (r HealthReport) Healthy() bool {
	for _, check := range r.Checks {
		if check.Status == HealthFail {
			return false
		}
	}
	return true
}

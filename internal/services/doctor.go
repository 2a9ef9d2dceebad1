package services

import (
	"context"
	"fmt"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Doctor runs environment diagnostics: credential profile, ruleset,
// audit log, and a live API key probe.
type Doctor struct {
	store     ports.CredentialStore
	generator ports.CommandGenerator
	audit     ports.AuditLogger
	rulesFile string
	loadRules func(path string) error
}

// NewDoctor wires the diagnostics. loadRules attempts to construct a
// validator from the given ruleset path and reports the failure, if any.
func NewDoctor(store ports.CredentialStore, generator ports.CommandGenerator, audit ports.AuditLogger, rulesFile string, loadRules func(path string) error) *Doctor {
	return &Doctor{
		store:     store,
		generator: generator,
		audit:     audit,
		rulesFile: rulesFile,
		loadRules: loadRules,
	}
}

// Run executes every check. Checks are independent; one failing never
// skips the rest.
func (d *Doctor) Run(ctx context.Context) domain.HealthReport {
	var report domain.HealthReport

	if d.store.Exists() {
		if _, err := d.store.Load(); err != nil {
			report.Checks = append(report.Checks, domain.HealthCheck{
				Name:    "account profile",
				Status:  domain.HealthFail,
				Details: err.Error(),
			})
		} else {
			report.Checks = append(report.Checks, domain.HealthCheck{
				Name:   "account profile",
				Status: domain.HealthOK,
			})
		}
	} else {
		report.Checks = append(report.Checks, domain.HealthCheck{
			Name:    "account profile",
			Status:  domain.HealthFail,
			Details: "no profile found, run first-time setup",
		})
	}

	if err := d.loadRules(d.rulesFile); err != nil {
		report.Checks = append(report.Checks, domain.HealthCheck{
			Name:    "validation ruleset",
			Status:  domain.HealthFail,
			Details: err.Error(),
		})
	} else {
		report.Checks = append(report.Checks, domain.HealthCheck{
			Name:   "validation ruleset",
			Status: domain.HealthOK,
		})
	}

	size := d.audit.CurrentSize()
	auditCheck := domain.HealthCheck{
		Name:    "audit log",
		Status:  domain.HealthOK,
		Details: fmt.Sprintf("%d bytes", size),
	}
	if size == 0 {
		auditCheck.Status = domain.HealthWarn
		auditCheck.Details = "no audit records yet"
	}
	report.Checks = append(report.Checks, auditCheck)

	if err := d.generator.ValidateCredential(ctx); err != nil {
		report.Checks = append(report.Checks, domain.HealthCheck{
			Name:    "API key",
			Status:  domain.HealthFail,
			Details: err.Error(),
		})
	} else {
		report.Checks = append(report.Checks, domain.HealthCheck{
			Name:   "API key",
			Status: domain.HealthOK,
		})
	}

	return report
}

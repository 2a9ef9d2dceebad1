// Package services contains the application core: the mediation pipeline
// and the health check, expressed purely against ports.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/textutil"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// auditOutputLimit caps command output persisted per audit record.
const auditOutputLimit = 8000

// PassResult is what one pipeline pass reports back to the interactive
// loop. Outcome is either a terminal pipeline outcome or an executor
// status string.
type PassResult struct {
	Outcome   string
	Command   string
	Model     string
	Risk      domain.RiskLevel
	Reason    string
	Execution *domain.ExecutionResult
}

// Pipeline is the generate, validate, authorize, execute, audit chain.
// Every pass writes exactly one audit event and one history record.
type Pipeline struct {
	generator ports.CommandGenerator
	validator ports.CommandValidator
	gate      ports.AuthorizationGate
	prompter  ports.ConfirmationPrompter
	executor  ports.CommandExecutor
	audit     ports.AuditLogger
	history   ports.HistoryRepository
	verifier  ports.PasswordVerifier
	logger    ports.Logger
}

// NewPipeline wires the pipeline from its ports.
func NewPipeline(
	generator ports.CommandGenerator,
	validator ports.CommandValidator,
	gate ports.AuthorizationGate,
	prompter ports.ConfirmationPrompter,
	executor ports.CommandExecutor,
	audit ports.AuditLogger,
	history ports.HistoryRepository,
	verifier ports.PasswordVerifier,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		generator: generator,
		validator: validator,
		gate:      gate,
		prompter:  prompter,
		executor:  executor,
		audit:     audit,
		history:   history,
		verifier:  verifier,
		logger:    logger,
	}
}

// Run pushes one natural-language input through the full chain, mutating
// the session counters as it goes. The returned error is reserved for
// environment failures (a broken terminal on the auth prompt); every
// content-level outcome is reported through PassResult.
func (p *Pipeline) Run(ctx context.Context, sess *domain.Session, userInput string) (PassResult, error) {
	sess.Stats.TotalInputs++

	generated, err := p.generator.Generate(ctx, userInput)
	if err != nil {
		sess.Stats.APIErrors++
		// Generation failures record risk HIGH with model "none" and
		// carry the error text in the output field.
		p.record(domain.AuditEvent{
			UserInput:       userInput,
			RiskLevel:       domain.RiskHigh,
			ExecutionResult: domain.OutcomeAPIError,
			Model:           "none",
			CommandOutput:   err.Error(),
		}, domain.HistoryRecord{
			Prompt:    userInput,
			Model:     "none",
			RiskLevel: domain.RiskHigh,
			Outcome:   domain.OutcomeAPIError,
		})
		return PassResult{
			Outcome: domain.OutcomeAPIError,
			Reason:  err.Error(),
		}, nil
	}
	sess.LastModel = generated.Model

	verdict := p.validator.Validate(generated.Command)
	command := verdict.NormalizedCommand
	if verdict.RiskLevel == domain.RiskHigh {
		sess.Stats.HighRisk++
	}

	base := domain.AuditEvent{
		UserInput:        userInput,
		GeneratedCommand: command,
		RiskLevel:        verdict.RiskLevel,
		Model:            generated.Model,
	}
	row := domain.HistoryRecord{
		Prompt:    userInput,
		Command:   command,
		Model:     generated.Model,
		RiskLevel: verdict.RiskLevel,
	}

	if !verdict.Allowed {
		sess.Stats.Blocked++
		base.ExecutionResult = domain.OutcomeBlocked
		row.Outcome = domain.OutcomeBlocked
		p.record(base, row)
		return PassResult{
			Outcome: domain.OutcomeBlocked,
			Command: command,
			Model:   generated.Model,
			Risk:    verdict.RiskLevel,
			Reason:  verdict.Reason,
		}, nil
	}

	if sess.DryRun {
		sess.Stats.DryRuns++
		base.ExecutionResult = domain.OutcomeDryRun
		row.Outcome = domain.OutcomeDryRun
		p.record(base, row)
		return PassResult{
			Outcome: domain.OutcomeDryRun,
			Command: command,
			Model:   generated.Model,
			Risk:    verdict.RiskLevel,
		}, nil
	}

	if verdict.RiskLevel == domain.RiskHigh {
		ok, err := p.gate.SecondaryAuthenticate(p.verifier)
		if err != nil {
			return PassResult{}, fmt.Errorf("secondary authentication: %w", err)
		}
		if !ok {
			base.ExecutionResult = domain.OutcomeSecondaryAuthFailed
			row.Outcome = domain.OutcomeSecondaryAuthFailed
			p.record(base, row)
			return PassResult{
				Outcome: domain.OutcomeSecondaryAuthFailed,
				Command: command,
				Model:   generated.Model,
				Risk:    verdict.RiskLevel,
			}, nil
		}
	}

	confirmed, err := p.prompter.Confirm(fmt.Sprintf("Execute: %s ? [y/N] ", command))
	if err != nil {
		return PassResult{}, fmt.Errorf("confirmation prompt: %w", err)
	}
	if !confirmed {
		base.ExecutionResult = domain.OutcomeCancelled
		row.Outcome = domain.OutcomeCancelled
		p.record(base, row)
		return PassResult{
			Outcome: domain.OutcomeCancelled,
			Command: command,
			Model:   generated.Model,
			Risk:    verdict.RiskLevel,
		}, nil
	}

	result := p.executor.Execute(ctx, command)
	if result.Status == domain.ExecSuccess {
		sess.Stats.Executed++
	} else {
		sess.Stats.Failed++
	}

	base.ExecutionResult = string(result.Status)
	base.CommandOutput = textutil.SafeTruncate(result.CombinedOutput(), auditOutputLimit)
	row.Outcome = string(result.Status)
	p.record(base, row)

	return PassResult{
		Outcome:   string(result.Status),
		Command:   command,
		Model:     generated.Model,
		Risk:      verdict.RiskLevel,
		Execution: &result,
	}, nil
}

// record writes the single audit event and history row for a pass.
// Persistence failures are logged but never abort the pass; the decision
// has already been made.
func (p *Pipeline) record(event domain.AuditEvent, row domain.HistoryRecord) {
	if err := p.audit.LogEvent(event); err != nil {
		p.logger.Error("audit append failed", err, map[string]interface{}{
			"outcome": event.ExecutionResult,
		})
	}
	row.Timestamp = time.Now()
	if err := p.history.Save(row); err != nil {
		p.logger.Error("history save failed", err, map[string]interface{}{
			"outcome": row.Outcome,
		})
	}
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/doeshing/jarvis-go/internal/app"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/reset"
	"github.com/doeshing/jarvis-go/internal/pkg/textutil"
	"github.com/doeshing/jarvis-go/internal/ports"
	"github.com/doeshing/jarvis-go/internal/services"
)

const historyDisplayLimit = 20

// ErrAuthenticationFailed ends the process with a non-zero exit when the
// session login is not passed.
var ErrAuthenticationFailed = errors.New("authentication failed")

// accountGate is the slice of the authorization gate the session uses for
// login and credential mutations.
type accountGate interface {
	ports.AuthorizationGate
	PromptNewPassword() (string, error)
	PromptAPIKey() (string, error)
}

// SessionRunner owns the interactive loop: login, the meta-command
// surface, and dispatch into the mediation pipeline.
type SessionRunner struct {
	container *app.Container
	in        *bufio.Reader
	out       io.Writer
	gate      accountGate
	session   *domain.Session
	pipeline  *services.Pipeline
	verifier  ports.PasswordVerifier
}

// NewSessionRunner builds a runner over stdio. Nil reader/writer default
// to the process streams.
func NewSessionRunner(container *app.Container, in io.Reader, out io.Writer) *SessionRunner {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &SessionRunner{
		container: container,
		in:        bufio.NewReader(in),
		out:       out,
		gate:      container.Gate,
	}
}

// Run drives the session until exit. Returns ErrAuthenticationFailed when
// setup or login does not complete.
func (r *SessionRunner) Run(ctx context.Context) error {
	if err := r.authenticate(ctx); err != nil {
		return err
	}

	r.session = domain.NewSession(r.container.Models)
	r.pipeline = services.NewPipeline(
		r.container.Gateway,
		r.container.Validator,
		r.gate,
		NewPrompter(r.in, r.out),
		r.container.Executor,
		r.container.Audit,
		r.container.History,
		ports.VerifierFunc(func(candidate string) bool { return r.verifier.Verify(candidate) }),
		r.container.Logger,
	)

	fmt.Fprintln(r.out, "JARVIS ready. Type 'help' for commands.")
	for {
		fmt.Fprint(r.out, r.prompt())
		line, err := r.in.ReadString('\n')
		if err != nil {
			fmt.Fprintln(r.out)
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		done, err := r.dispatch(ctx, input)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (r *SessionRunner) prompt() string {
	if r.session.Locked {
		return "jarvis [locked]> "
	}
	if r.session.DryRun {
		return "jarvis [dry-run]> "
	}
	return "jarvis> "
}

// authenticate runs first-time setup when no profile exists, otherwise the
// login challenge. Both paths leave the gateway holding the API key and
// r.verifier bound to the stored hash.
func (r *SessionRunner) authenticate(ctx context.Context) error {
	store := r.container.Credentials

	if !store.Exists() {
		fmt.Fprintln(r.out, "First-time setup.")
		apiKey, err := r.promptValidatedAPIKey(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		}
		password, err := r.gate.PromptNewPassword()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		}
		if err := store.Save(apiKey, password); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Profile created.")
	}

	verifier, err := store.PasswordVerifier()
	if err != nil {
		return err
	}
	r.verifier = verifier

	ok, err := r.gate.PromptPasswordWithRetry("Password: ", verifier)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	if !ok {
		fmt.Fprintln(r.out, "Too many failed attempts.")
		return ErrAuthenticationFailed
	}

	profile, err := store.Load()
	if err != nil {
		return err
	}
	r.container.Gateway.SetAPIKey(profile.APIKey)
	return nil
}

// promptValidatedAPIKey collects a key and probes it live before accepting.
func (r *SessionRunner) promptValidatedAPIKey(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= 3; attempt++ {
		apiKey, err := r.gate.PromptAPIKey()
		if err != nil {
			return "", err
		}
		r.container.Gateway.SetAPIKey(apiKey)
		fmt.Fprintln(r.out, "Validating key...")
		if err := r.container.Gateway.ValidateCredential(ctx); err != nil {
			fmt.Fprintf(r.out, "Key rejected: %v\n", err)
			continue
		}
		return apiKey, nil
	}
	return "", errors.New("API key could not be validated")
}

// dispatch handles one input line. Returns done=true to leave the loop.
func (r *SessionRunner) dispatch(ctx context.Context, input string) (bool, error) {
	lower := strings.ToLower(input)

	if r.session.Locked && !lockedAllowed(lower) {
		fmt.Fprintln(r.out, "Session is locked. Type 'unlock' first.")
		return false, nil
	}

	switch lower {
	case "exit", "quit":
		fmt.Fprintln(r.out, "Goodbye, sir.")
		return true, nil
	case "help":
		r.printHelp()
	case "status":
		r.printStatus()
	case "history":
		r.printHistory()
	case "clear history":
		r.clearHistory()
	case "models", "model status":
		r.printModels()
	case "model auto":
		r.session.Models.ClearPreferred()
		fmt.Fprintln(r.out, "Model preference cleared; automatic failover order restored.")
	case "privacy on":
		r.setPrivacy(true)
	case "privacy off":
		r.setPrivacy(false)
	case "dryrun on":
		r.session.DryRun = true
		fmt.Fprintln(r.out, "Dry-run mode on: commands are validated but never executed.")
	case "dryrun off":
		r.session.DryRun = false
		fmt.Fprintln(r.out, "Dry-run mode off.")
	case "lock":
		r.session.Locked = true
		fmt.Fprintln(r.out, "Session locked.")
	case "unlock":
		r.unlock()
	case "doctor":
		r.runDoctor(ctx)
	case "account":
		r.printAccount()
	case "change api key":
		r.changeAPIKey(ctx)
	case "change password":
		r.changePassword()
	case "reset account":
		return r.resetAccount(ctx)
	case "factory reset":
		return r.factoryReset()
	default:
		if strings.HasPrefix(lower, "model set ") {
			r.setModel(strings.TrimSpace(input[len("model set "):]))
			return false, nil
		}
		return false, r.runPipeline(ctx, input)
	}
	return false, nil
}

func lockedAllowed(lower string) bool {
	switch lower {
	case "help", "status", "unlock", "exit", "quit":
		return true
	}
	return false
}

func (r *SessionRunner) runPipeline(ctx context.Context, input string) error {
	result, err := r.pipeline.Run(ctx, r.session, input)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case domain.OutcomeAPIError:
		fmt.Fprintf(r.out, "API error: %s\n", result.Reason)
	case domain.OutcomeBlocked:
		fmt.Fprintf(r.out, "%s Blocked: %s\n", riskTag(result.Risk), result.Reason)
		fmt.Fprintf(r.out, "  Command was: %s\n", result.Command)
	case domain.OutcomeDryRun:
		fmt.Fprintf(r.out, "%s [dry-run] %s\n", riskTag(result.Risk), result.Command)
	case domain.OutcomeSecondaryAuthFailed:
		fmt.Fprintln(r.out, "Secondary authentication failed; command not executed.")
	case domain.OutcomeCancelled:
		fmt.Fprintln(r.out, "Cancelled.")
	default:
		r.renderExecution(result)
	}
	return nil
}

func (r *SessionRunner) renderExecution(result services.PassResult) {
	exec := result.Execution
	if exec == nil {
		return
	}
	if output := exec.CombinedOutput(); output != "" {
		fmt.Fprintln(r.out, output)
	}
	switch exec.Status {
	case domain.ExecSuccess:
		fmt.Fprintf(r.out, "(ok) %s\n", result.Command)
	case domain.ExecTimeout:
		fmt.Fprintf(r.out, "(timeout, exit %d) %s\n", exec.ExitCode, result.Command)
	default:
		fmt.Fprintf(r.out, "(exit %d) %s\n", exec.ExitCode, result.Command)
	}
}

func (r *SessionRunner) printHelp() {
	fmt.Fprint(r.out, `Commands:
  help                show this help
  status              session statistics and modes
  history             recent pipeline passes
  clear history       erase stored history
  models              list candidate models
  model set <n|name>  prefer a model (index or name fragment)
  model auto          restore automatic model order
  privacy on|off      redact sensitive fields in new audit records
  dryrun on|off       validate without executing
  lock / unlock       lock the session to meta-commands
  doctor              run environment diagnostics
  account             show account details
  change api key      replace the stored API key
  change password     replace the session password
  reset account       delete credentials and re-run setup
  factory reset       delete all local state and exit
  exit / quit         end the session

Anything else is treated as a natural-language request.
`)
}

func (r *SessionRunner) printStatus() {
	s := r.session
	fmt.Fprintf(r.out, "Uptime:      %s\n", s.Uptime().Round(time.Second))
	fmt.Fprintf(r.out, "Locked:      %t\n", s.Locked)
	fmt.Fprintf(r.out, "Dry-run:     %t\n", s.DryRun)
	fmt.Fprintf(r.out, "Privacy:     %t\n", r.container.Audit.Privacy())
	fmt.Fprintf(r.out, "Last model:  %s\n", s.LastModel)
	fmt.Fprintf(r.out, "Shell:       %s\n", r.container.Executor.Shell())
	fmt.Fprintf(r.out, "Audit log:   %d bytes\n", r.container.Audit.CurrentSize())
	fmt.Fprintf(r.out, "Inputs:      %d (executed %d, blocked %d, failed %d)\n",
		s.Stats.TotalInputs, s.Stats.Executed, s.Stats.Blocked, s.Stats.Failed)
	fmt.Fprintf(r.out, "High risk:   %d, dry runs: %d, API errors: %d\n",
		s.Stats.HighRisk, s.Stats.DryRuns, s.Stats.APIErrors)
}

func (r *SessionRunner) printHistory() {
	records, err := r.container.History.Records(historyDisplayLimit)
	if err != nil {
		fmt.Fprintf(r.out, "History unavailable: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No history yet.")
		return
	}
	for _, rec := range records {
		fmt.Fprintf(r.out, "%s  %-22s  %s\n", rec.Timestamp.Format("2006-01-02 15:04"), rec.Outcome, rec.Prompt)
		if rec.Command != "" {
			fmt.Fprintf(r.out, "%24s-> %s\n", "", rec.Command)
		}
	}
}

func (r *SessionRunner) clearHistory() {
	ok, _ := NewPrompter(r.in, r.out).Confirm("Erase all stored history? [y/N] ")
	if !ok {
		fmt.Fprintln(r.out, "Kept.")
		return
	}
	if err := r.container.History.Clear(); err != nil {
		fmt.Fprintf(r.out, "Clear failed: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "History cleared.")
}

func (r *SessionRunner) printModels() {
	preferred := r.session.Models.Preferred()
	for i, name := range r.session.Models.Names() {
		marker := " "
		if name == preferred {
			marker = "*"
		}
		fmt.Fprintf(r.out, " %s %d. %s\n", marker, i+1, name)
	}
	if preferred == "" {
		fmt.Fprintln(r.out, "Order is automatic; 'model set <n>' to prefer one.")
	}
}

func (r *SessionRunner) setModel(choice string) {
	name, ok := r.session.Models.Resolve(choice)
	if !ok {
		fmt.Fprintf(r.out, "No model matches %q.\n", choice)
		return
	}
	r.session.Models.SetPreferred(name)
	fmt.Fprintf(r.out, "Preferring %s.\n", name)
}

func (r *SessionRunner) setPrivacy(enabled bool) {
	r.session.Privacy = enabled
	r.container.Audit.SetPrivacy(enabled)
	if enabled {
		fmt.Fprintln(r.out, "Privacy mode on: new audit records are redacted.")
	} else {
		fmt.Fprintln(r.out, "Privacy mode off.")
	}
}

func (r *SessionRunner) unlock() {
	if !r.session.Locked {
		fmt.Fprintln(r.out, "Session is not locked.")
		return
	}
	ok, err := r.gate.PromptPasswordWithRetry("Password: ", r.verifier)
	if err != nil {
		fmt.Fprintf(r.out, "Cannot unlock: %v\n", err)
		return
	}
	if !ok {
		fmt.Fprintln(r.out, "Still locked.")
		return
	}
	r.session.Locked = false
	fmt.Fprintln(r.out, "Session unlocked.")
}

func (r *SessionRunner) runDoctor(ctx context.Context) {
	report := r.container.Doctor.Run(ctx)
	for _, check := range report.Checks {
		if check.Details != "" {
			fmt.Fprintf(r.out, "[%s] %s - %s\n", strings.ToUpper(string(check.Status)), check.Name, check.Details)
		} else {
			fmt.Fprintf(r.out, "[%s] %s\n", strings.ToUpper(string(check.Status)), check.Name)
		}
	}
}

func (r *SessionRunner) printAccount() {
	profile, err := r.container.Credentials.Load()
	if err != nil {
		fmt.Fprintf(r.out, "Account unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "API key: %s\n", textutil.MaskSecret(profile.APIKey, 4))
	fmt.Fprintf(r.out, "Profile: %s\n", r.container.Credentials.Path())
}

// auditAccount records a credential mutation outcome. Account operations
// never touch the pipeline so they carry no generated command.
func (r *SessionRunner) auditAccount(action, outcome string) {
	err := r.container.Audit.LogEvent(domain.AuditEvent{
		UserInput:       action,
		RiskLevel:       domain.RiskHigh,
		ExecutionResult: outcome,
		Model:           "none",
	})
	if err != nil {
		r.container.Logger.Error("audit append failed", err, map[string]interface{}{"outcome": outcome})
	}
}

// confirmIdentity re-checks the password before any credential mutation.
func (r *SessionRunner) confirmIdentity() bool {
	ok, err := r.gate.PromptPasswordWithRetry("Current password: ", r.verifier)
	if err != nil {
		fmt.Fprintf(r.out, "Cannot verify: %v\n", err)
		return false
	}
	if !ok {
		fmt.Fprintln(r.out, "Not verified.")
	}
	return ok
}

func (r *SessionRunner) changeAPIKey(ctx context.Context) {
	if !r.confirmIdentity() {
		r.auditAccount("change api key", domain.OutcomeAccountChangeDenied)
		return
	}
	previous := ""
	if profile, err := r.container.Credentials.Load(); err == nil {
		previous = profile.APIKey
	}
	// The replacement key is probed live before anything is stored.
	key, err := r.promptValidatedAPIKey(ctx)
	if err != nil {
		r.container.Gateway.SetAPIKey(previous)
		r.auditAccount("change api key", domain.OutcomeAccountChangeFailed)
		fmt.Fprintf(r.out, "Key not changed: %v\n", err)
		return
	}
	if err := r.container.Credentials.UpdateAPIKey(key); err != nil {
		r.container.Gateway.SetAPIKey(previous)
		r.auditAccount("change api key", domain.OutcomeAccountChangeFailed)
		fmt.Fprintf(r.out, "Key not changed: %v\n", err)
		return
	}
	r.container.Gateway.SetAPIKey(key)
	r.auditAccount("change api key", domain.OutcomeAccountChangeSuccess)
	fmt.Fprintln(r.out, "API key updated.")
}

func (r *SessionRunner) changePassword() {
	if !r.confirmIdentity() {
		r.auditAccount("change password", domain.OutcomeAccountChangeDenied)
		return
	}
	password, err := r.gate.PromptNewPassword()
	if err != nil {
		r.auditAccount("change password", domain.OutcomeAccountChangeFailed)
		fmt.Fprintf(r.out, "Password not changed: %v\n", err)
		return
	}
	if err := r.container.Credentials.UpdatePassword(password); err != nil {
		r.auditAccount("change password", domain.OutcomeAccountChangeFailed)
		fmt.Fprintf(r.out, "Password not changed: %v\n", err)
		return
	}
	verifier, err := r.container.Credentials.PasswordVerifier()
	if err != nil {
		fmt.Fprintf(r.out, "Password changed but verifier reload failed: %v\n", err)
		return
	}
	r.verifier = verifier
	r.auditAccount("change password", domain.OutcomeAccountChangeSuccess)
	fmt.Fprintln(r.out, "Password updated.")
}

func (r *SessionRunner) resetAccount(ctx context.Context) (bool, error) {
	ok, _ := NewPrompter(r.in, r.out).Confirm("Delete stored credentials and re-run setup? [y/N] ")
	if !ok {
		fmt.Fprintln(r.out, "Kept.")
		return false, nil
	}
	if !r.confirmIdentity() {
		r.auditAccount("reset account", domain.OutcomeAccountChangeDenied)
		return false, nil
	}
	if err := r.container.Credentials.Delete(); err != nil {
		r.auditAccount("reset account", domain.OutcomeAccountChangeFailed)
		fmt.Fprintf(r.out, "Reset failed: %v\n", err)
		return false, nil
	}
	r.auditAccount("reset account", domain.OutcomeAccountReset)
	fmt.Fprintln(r.out, "Credentials removed.")
	if err := r.authenticate(ctx); err != nil {
		return true, err
	}
	return false, nil
}

func (r *SessionRunner) factoryReset() (bool, error) {
	ok, _ := NewPrompter(r.in, r.out).Confirm("Delete ALL local state (config, credentials, history, audit log)? [y/N] ")
	if !ok {
		fmt.Fprintln(r.out, "Kept.")
		return false, nil
	}
	if !r.confirmIdentity() {
		r.auditAccount("factory reset", domain.OutcomeAccountChangeDenied)
		return false, nil
	}

	// Recorded before the wipe takes the audit file with it; a reset
	// that fails partway still leaves the event behind.
	r.auditAccount("factory reset", domain.OutcomeFactoryReset)
	result, err := reset.FactoryReset(r.container.StateDir)
	if err != nil {
		fmt.Fprintf(r.out, "Factory reset failed: %v\n", err)
		return false, nil
	}
	for _, path := range result.Deleted {
		fmt.Fprintf(r.out, "deleted %s\n", path)
	}
	for _, path := range result.Skipped {
		fmt.Fprintf(r.out, "kept    %s\n", path)
	}
	fmt.Fprintln(r.out, "Factory reset complete. Goodbye, sir.")
	return true, nil
}

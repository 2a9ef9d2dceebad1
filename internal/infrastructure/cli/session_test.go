package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/doeshing/jarvis-go/internal/app"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/ai"
	"github.com/doeshing/jarvis-go/internal/infrastructure/audit"
	"github.com/doeshing/jarvis-go/internal/infrastructure/credentials"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
	"github.com/doeshing/jarvis-go/internal/pkg/logger"
	"github.com/doeshing/jarvis-go/internal/ports"
	"github.com/doeshing/jarvis-go/internal/security"
)

const testAPIKey = "sk-or-v1-0123456789abcdef0123456789abcdef"

// scriptedGate answers every challenge from canned values.
type scriptedGate struct {
	identityOK bool
	apiKey     string
	password   string
}

func (g *scriptedGate) PromptPasswordWithRetry(string, ports.PasswordVerifier) (bool, error) {
	return g.identityOK, nil
}

func (g *scriptedGate) SecondaryAuthenticate(ports.PasswordVerifier) (bool, error) {
	return g.identityOK, nil
}

func (g *scriptedGate) PromptNewPassword() (string, error) { return g.password, nil }
func (g *scriptedGate) PromptAPIKey() (string, error)      { return g.apiKey, nil }

// newAccountRunner wires a runner over real stores in a temp state dir,
// with the gateway pointed at endpoint and the gate fully scripted. The
// audit log lives outside the state dir so reset flows cannot take the
// evidence with them.
func newAccountRunner(t *testing.T, endpoint string, gate *scriptedGate, input string) (*SessionRunner, *app.Container) {
	t.Helper()
	stateDir := t.TempDir()
	log := logger.NewStd(false)

	store := credentials.NewFileStore(stateDir)
	if err := store.Save(testAPIKey, "hunter22"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	auditLog := audit.NewFileLogger(filepath.Join(t.TempDir(), "audit.log"), 10, 3)
	historyStore, err := history.NewSQLiteStore(stateDir)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	validator, err := security.NewValidator(filepath.Join(stateDir, "missing.yaml"))
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	models := domain.NewCandidateModels([]string{"test/model"})
	gateway := ai.NewGateway(domain.GatewaySettings{
		Endpoint:       endpoint,
		TimeoutSeconds: 5,
		MaxAttempts:    1,
	}, testAPIKey, models, log)

	container := &app.Container{
		StateDir:    stateDir,
		Logger:      log,
		Credentials: store,
		Validator:   validator,
		Audit:       auditLog,
		History:     historyStore,
		Gateway:     gateway,
		Models:      models,
	}
	t.Cleanup(func() {
		auditLog.Close()
		historyStore.Close()
	})

	runner := &SessionRunner{
		container: container,
		in:        bufio.NewReader(strings.NewReader(input)),
		out:       io.Discard,
		gate:      gate,
	}
	verifier, err := store.PasswordVerifier()
	if err != nil {
		t.Fatalf("PasswordVerifier: %v", err)
	}
	runner.verifier = verifier
	return runner, container
}

func accountEvents(t *testing.T, container *app.Container) []domain.AuditEvent {
	t.Helper()
	data, err := os.ReadFile(container.Audit.Path())
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	var events []domain.AuditEvent
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var event domain.AuditEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Fatalf("decode audit line %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func singleAccountEvent(t *testing.T, container *app.Container, outcome string) domain.AuditEvent {
	t.Helper()
	events := accountEvents(t, container)
	if len(events) != 1 {
		t.Fatalf("got %d audit events, want 1: %+v", len(events), events)
	}
	event := events[0]
	if event.ExecutionResult != outcome {
		t.Errorf("execution_result = %q, want %q", event.ExecutionResult, outcome)
	}
	if event.RiskLevel != domain.RiskHigh {
		t.Errorf("risk = %q, want HIGH", event.RiskLevel)
	}
	if event.Model != "none" {
		t.Errorf("model = %q, want none", event.Model)
	}
	return event
}

func TestChangeAPIKeyRejectedKeyIsNotStored(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	gate := &scriptedGate{identityOK: true, apiKey: "sk-or-v1-bogus-replacement-key-000000"}
	runner, container := newAccountRunner(t, server.URL, gate, "")

	runner.changeAPIKey(context.Background())

	profile, err := container.Credentials.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.APIKey != testAPIKey {
		t.Errorf("stored key = %q, rejected key must not be persisted", profile.APIKey)
	}
	singleAccountEvent(t, container, domain.OutcomeAccountChangeFailed)
}

func TestChangeAPIKeyProbesThenStores(t *testing.T) {
	probes := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probes++
		w.Write([]byte(`{"choices":[{"message":{"content":"key_validation"}}]}`))
	}))
	defer server.Close()

	replacement := "sk-or-v1-fedcba9876543210fedcba9876543210"
	gate := &scriptedGate{identityOK: true, apiKey: replacement}
	runner, container := newAccountRunner(t, server.URL, gate, "")

	runner.changeAPIKey(context.Background())

	if probes != 1 {
		t.Errorf("probes = %d, want exactly one validation call", probes)
	}
	profile, err := container.Credentials.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.APIKey != replacement {
		t.Errorf("stored key = %q, want the validated replacement", profile.APIKey)
	}
	event := singleAccountEvent(t, container, domain.OutcomeAccountChangeSuccess)
	if event.UserInput != "change api key" {
		t.Errorf("user_input = %q", event.UserInput)
	}
}

func TestChangeAPIKeyDeniedWithoutPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("denied mutation must not reach the gateway")
	}))
	defer server.Close()

	gate := &scriptedGate{identityOK: false, apiKey: "sk-or-v1-should-never-be-probed-000000"}
	runner, container := newAccountRunner(t, server.URL, gate, "")

	runner.changeAPIKey(context.Background())

	profile, err := container.Credentials.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.APIKey != testAPIKey {
		t.Errorf("stored key = %q, want unchanged", profile.APIKey)
	}
	singleAccountEvent(t, container, domain.OutcomeAccountChangeDenied)
}

func TestChangePasswordAudited(t *testing.T) {
	gate := &scriptedGate{identityOK: true, password: "correct horse battery"}
	runner, container := newAccountRunner(t, "http://unused", gate, "")

	runner.changePassword()

	verifier, err := container.Credentials.PasswordVerifier()
	if err != nil {
		t.Fatalf("PasswordVerifier: %v", err)
	}
	if !verifier.Verify("correct horse battery") {
		t.Error("new password does not verify")
	}
	if verifier.Verify("hunter22") {
		t.Error("old password still verifies")
	}
	singleAccountEvent(t, container, domain.OutcomeAccountChangeSuccess)
}

func TestFactoryResetAudited(t *testing.T) {
	gate := &scriptedGate{identityOK: true}
	runner, container := newAccountRunner(t, "http://unused", gate, "y\n")

	done, err := runner.factoryReset()
	if err != nil {
		t.Fatalf("factoryReset: %v", err)
	}
	if !done {
		t.Error("factory reset must end the session")
	}
	if container.Credentials.Exists() {
		t.Error("profile survived the reset")
	}
	singleAccountEvent(t, container, domain.OutcomeFactoryReset)
}

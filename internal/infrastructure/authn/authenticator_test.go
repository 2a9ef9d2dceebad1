package authn

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/doeshing/jarvis-go/internal/ports"
)

// scriptedAuthenticator returns an Authenticator whose terminal reads are
// served from the given inputs in order. A nil entry simulates a read
// failure (EOF / interrupt).
func scriptedAuthenticator(out io.Writer, inputs ...*string) *Authenticator {
	a := NewAuthenticator(out)
	i := 0
	a.isTerminal = func(uintptr) bool { return true }
	a.readPassword = func(int) ([]byte, error) {
		if i >= len(inputs) {
			return nil, io.EOF
		}
		entry := inputs[i]
		i++
		if entry == nil {
			return nil, io.EOF
		}
		return []byte(*entry), nil
	}
	return a
}

func str(s string) *string { return &s }

func matchVerifier(want string) ports.PasswordVerifier {
	return ports.VerifierFunc(func(candidate string) bool { return candidate == want })
}

func TestPromptPasswordWithRetrySucceedsWithinAttempts(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out, str("wrong"), str("correct"))

	ok, err := a.PromptPasswordWithRetry("Password: ", matchVerifier("correct"))
	if err != nil {
		t.Fatalf("PromptPasswordWithRetry: %v", err)
	}
	if !ok {
		t.Error("expected success on second attempt")
	}
	if !strings.Contains(out.String(), "2 attempt(s) remaining") {
		t.Errorf("missing remaining-attempts notice in output: %q", out.String())
	}
}

func TestPromptPasswordWithRetryDeniesAfterThreeFailures(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out, str("a"), str("b"), str("c"), str("correct"))

	ok, err := a.PromptPasswordWithRetry("Password: ", matchVerifier("correct"))
	if err != nil {
		t.Fatalf("PromptPasswordWithRetry: %v", err)
	}
	if ok {
		t.Error("expected denial after three wrong entries")
	}
}

func TestPromptPasswordWithRetryDeniesOnReadFailure(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out, nil)

	ok, err := a.PromptPasswordWithRetry("Password: ", matchVerifier("correct"))
	if err != nil {
		t.Fatalf("PromptPasswordWithRetry: %v", err)
	}
	if ok {
		t.Error("read failure must deny")
	}
}

func TestPromptPasswordFailsClosedWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	a := NewAuthenticator(&out)
	a.isTerminal = func(uintptr) bool { return false }

	_, err := a.PromptPasswordWithRetry("Password: ", matchVerifier("x"))
	if !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("err = %v, want ErrNotInteractive", err)
	}
}

func TestSecondaryAuthenticateSingleAttempt(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out, str("wrong"), str("correct"))

	ok, err := a.SecondaryAuthenticate(matchVerifier("correct"))
	if err != nil {
		t.Fatalf("SecondaryAuthenticate: %v", err)
	}
	if ok {
		t.Error("secondary auth must not retry after a wrong entry")
	}
}

func TestPromptNewPasswordEnforcesLengthAndConfirmation(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out,
		str("short"),
		str("longenough"), str("different"),
		str("longenough"), str("longenough"),
	)

	password, err := a.PromptNewPassword()
	if err != nil {
		t.Fatalf("PromptNewPassword: %v", err)
	}
	if password != "longenough" {
		t.Errorf("password = %q, want %q", password, "longenough")
	}
	if !strings.Contains(out.String(), "too short") {
		t.Errorf("missing length notice in output: %q", out.String())
	}
	if !strings.Contains(out.String(), "do not match") {
		t.Errorf("missing mismatch notice in output: %q", out.String())
	}
}

func TestPromptAPIKeyValidatesShape(t *testing.T) {
	var out bytes.Buffer
	a := scriptedAuthenticator(&out,
		str("not-a-key"),
		str("sk-or-v1-abc"),
		str("  sk-or-v1-0123456789abcdef  "),
	)

	key, err := a.PromptAPIKey()
	if err != nil {
		t.Fatalf("PromptAPIKey: %v", err)
	}
	if key != "sk-or-v1-0123456789abcdef" {
		t.Errorf("key = %q, want trimmed valid key", key)
	}
}

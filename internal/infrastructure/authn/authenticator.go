// Package authn provides interactive password and credential prompts over
// the controlling terminal. All prompts fail closed when stdin is not a
// terminal.
package authn

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/doeshing/jarvis-go/internal/ports"
)

// ErrNotInteractive is returned when a password prompt is required but
// stdin is not attached to a terminal.
var ErrNotInteractive = errors.New("password prompt requires an interactive terminal")

const (
	maxPasswordAttempts = 3
	minPasswordLength   = 6
	apiKeyPrefix        = "sk-or-v1-"
	minAPIKeyLength     = 20
)

// Authenticator prompts for passwords with masked input. The terminal
// functions are injectable for tests.
type Authenticator struct {
	out          io.Writer
	readPassword func(fd int) ([]byte, error)
	isTerminal   func(fd uintptr) bool
}

// NewAuthenticator builds an Authenticator bound to the process terminal.
// A nil writer defaults to stdout.
func NewAuthenticator(out io.Writer) *Authenticator {
	if out == nil {
		out = os.Stdout
	}
	return &Authenticator{
		out:          out,
		readPassword: term.ReadPassword,
		isTerminal:   isatty.IsTerminal,
	}
}

func (a *Authenticator) promptMasked(label string) (string, error) {
	if !a.isTerminal(os.Stdin.Fd()) {
		return "", ErrNotInteractive
	}
	fmt.Fprint(a.out, label)
	raw, err := a.readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// PromptPasswordWithRetry asks for the password up to three times, running
// each candidate through verify. A read failure (EOF, interrupt) denies
// immediately without consuming remaining attempts.
func (a *Authenticator) PromptPasswordWithRetry(label string, verify ports.PasswordVerifier) (bool, error) {
	for attempt := 1; attempt <= maxPasswordAttempts; attempt++ {
		candidate, err := a.promptMasked(label)
		if errors.Is(err, ErrNotInteractive) {
			return false, err
		}
		if err != nil {
			return false, nil
		}
		if verify.Verify(candidate) {
			return true, nil
		}
		remaining := maxPasswordAttempts - attempt
		if remaining > 0 {
			fmt.Fprintf(a.out, "Incorrect password. %d attempt(s) remaining.\n", remaining)
		}
	}
	return false, nil
}

// SecondaryAuthenticate is the single-attempt confirmation used before
// high-privilege command execution.
func (a *Authenticator) SecondaryAuthenticate(verify ports.PasswordVerifier) (bool, error) {
	candidate, err := a.promptMasked("High-privilege command. Re-enter password: ")
	if errors.Is(err, ErrNotInteractive) {
		return false, err
	}
	if err != nil {
		return false, nil
	}
	return verify.Verify(candidate), nil
}

// PromptNewPassword collects a new password twice and enforces the minimum
// length. Mismatched or too-short entries restart the pair.
func (a *Authenticator) PromptNewPassword() (string, error) {
	for attempt := 1; attempt <= maxPasswordAttempts; attempt++ {
		password, err := a.promptMasked("New password (min 6 characters): ")
		if err != nil {
			return "", err
		}
		if len(password) < minPasswordLength {
			fmt.Fprintln(a.out, "Password too short.")
			continue
		}
		confirm, err := a.promptMasked("Confirm password: ")
		if err != nil {
			return "", err
		}
		if password != confirm {
			fmt.Fprintln(a.out, "Passwords do not match.")
			continue
		}
		return password, nil
	}
	return "", errors.New("too many failed password entries")
}

// PromptAPIKey collects an OpenRouter API key with masked input and checks
// its shape before accepting it.
func (a *Authenticator) PromptAPIKey() (string, error) {
	for attempt := 1; attempt <= maxPasswordAttempts; attempt++ {
		key, err := a.promptMasked("OpenRouter API key: ")
		if err != nil {
			return "", err
		}
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, apiKeyPrefix) || len(key) < minAPIKeyLength {
			fmt.Fprintf(a.out, "Key must start with %q and be at least %d characters.\n", apiKeyPrefix, minAPIKeyLength)
			continue
		}
		return key, nil
	}
	return "", errors.New("too many invalid key entries")
}

var _ ports.AuthorizationGate = (*Authenticator)(nil)

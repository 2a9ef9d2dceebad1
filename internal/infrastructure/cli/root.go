// Package cli is the terminal front end: the cobra command tree and the
// interactive mediation session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/jarvis-go/internal/app"
	"github.com/doeshing/jarvis-go/internal/domain"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. Running it with no subcommand
// starts the interactive session.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "jarvis",
		Short: "JARVIS - natural language shell assistant",
		Long:  "JARVIS mediates natural language requests into validated, audited shell commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer container.Close()
			session := NewSessionRunner(container, nil, cmd.OutOrStdout())
			return session.Run(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newValidateCommand(container))
	return root, nil
}

func newDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer container.Close()
			if profile, err := container.Credentials.Load(); err == nil {
				container.Gateway.SetAPIKey(profile.APIKey)
			}

			report := container.Doctor.Run(cmd.Context())
			out := cmd.OutOrStdout()
			for _, check := range report.Checks {
				if check.Details != "" {
					fmt.Fprintf(out, "[%s] %s - %s\n", strings.ToUpper(string(check.Status)), check.Name, check.Details)
				} else {
					fmt.Fprintf(out, "[%s] %s\n", strings.ToUpper(string(check.Status)), check.Name)
				}
			}
			if !report.Healthy() {
				return errors.New("diagnostics reported failures")
			}
			return nil
		},
	}
}

func newValidateCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [command]",
		Short: "Check a command against the local ruleset without executing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer container.Close()
			verdict := container.Validator.Validate(strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Command: %s\n", verdict.NormalizedCommand)
			fmt.Fprintf(out, "Risk:    %s\n", verdict.RiskLevel)
			if verdict.Allowed {
				fmt.Fprintln(out, "Verdict: ALLOWED")
				return nil
			}
			fmt.Fprintf(out, "Verdict: BLOCKED (%s)\n", verdict.Reason)
			return errors.New("command rejected")
		},
	}
}

func riskTag(risk domain.RiskLevel) string {
	if risk == domain.RiskHigh {
		return "[HIGH RISK]"
	}
	return "[normal]"
}

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/pr-warden/internal/policy"
	"github.com/sevigo/pr-warden/internal/title"
)

// Color definitions
var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var checkTitleCmd = &cobra.Command{
	Use:   "check-title [title]",
	Short: "Validate a pull request title against the configured policy",
	Long: `Validate a pull request title against the conventional-commit style grammar
from the policy file. Exits non-zero when the title is rejected.

Examples:
  warden-cli check-title "feat(auth): add login flow"
  warden-cli check-title --policy .pr-warden.yml "fix: handle empty payload"`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckTitle,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(checkTitleCmd)
}

func runCheckTitle(_ *cobra.Command, args []string) error {
	pol, err := loadPolicyOrDefault()
	if err != nil {
		return err
	}

	verdict := title.Validate(args[0], pol.Title)
	if !verdict.Accepted {
		errorColor.Printf("✗ %s\n", verdict.Reason)
		return fmt.Errorf("title rejected")
	}

	successColor.Println("✓ title is valid")
	return nil
}

// loadPolicyOrDefault loads the policy file named by --policy, falling back to
// the built-in defaults when the file does not exist. Any other load error is fatal.
func loadPolicyOrDefault() (*policy.Policy, error) {
	pol, err := policy.Load(policyPath)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			dimColor.Printf("policy file %s not found, using defaults\n", policyPath)
			return policy.Default(), nil
		}
		return nil, err
	}
	return pol, nil
}

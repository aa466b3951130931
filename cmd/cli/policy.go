package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevigo/pr-warden/internal/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and validate policy files",
}

var policyLintCmd = &cobra.Command{
	Use:   "lint [path]",
	Short: "Validate a policy file and report what it manages",
	Long: `Load a policy file, compile every rule pattern, and report the allowed title
types and the managed label universe. Exits non-zero when the file is invalid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolicyLint,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	policyCmd.AddCommand(policyLintCmd)
	rootCmd.AddCommand(policyCmd)
}

func runPolicyLint(_ *cobra.Command, args []string) error {
	path := policyPath
	if len(args) == 1 {
		path = args[0]
	}

	pol, err := policy.Load(path)
	if err != nil {
		errorColor.Printf("✗ %v\n", err)
		return fmt.Errorf("policy is invalid")
	}

	successColor.Printf("✓ %s is valid\n", path)
	fmt.Printf("allowed types: %s\n", strings.Join(pol.Title.AllowedTypes, ", "))
	if pol.Title.RequireScope {
		fmt.Println("scope: required")
	}
	fmt.Printf("rules: %d\n", len(pol.Rules))

	managed := pol.ManagedLabels()
	if len(managed) == 0 {
		dimColor.Println("no label rules configured")
		return nil
	}
	fmt.Printf("managed labels: %s\n", strings.Join(managed, ", "))
	return nil
}

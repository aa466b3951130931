package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/gitutil"
	"github.com/sevigo/pr-warden/internal/jobs"
	"github.com/sevigo/pr-warden/internal/labeler"
	"github.com/sevigo/pr-warden/internal/policy"
	"github.com/sevigo/pr-warden/internal/title"
)

var applyLabels bool

var labelsCmd = &cobra.Command{
	Use:   "labels [pr-url]",
	Short: "Compute (and optionally apply) the label patch for a pull request",
	Long: `Fetch a pull request's changed files and current labels, evaluate the label
rules against them, and print the resulting patch. Without --apply this is a
dry run; no labels are changed.

Examples:
  warden-cli labels https://github.com/owner/repo/pull/123
  warden-cli labels --apply https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runLabels,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	labelsCmd.Flags().BoolVar(&applyLabels, "apply", false, "Apply the computed patch to the pull request")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("a GitHub token is required (--github-token or PRW_GITHUB_TOKEN)")
	}

	owner, repo, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := github.NewPATClient(ctx, token, logger)

	pr, err := client.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch pull request: %w", err)
	}
	paths, err := client.GetChangedPaths(ctx, owner, repo, prNumber)
	if err != nil {
		return fmt.Errorf("failed to list changed files: %w", err)
	}

	snap := &core.PullRequestSnapshot{
		Title:        pr.GetTitle(),
		Body:         pr.GetBody(),
		BaseRef:      pr.GetBase().GetRef(),
		HeadRef:      pr.GetHead().GetRef(),
		ChangedPaths: paths,
	}
	for _, label := range pr.Labels {
		snap.CurrentLabels = append(snap.CurrentLabels, label.GetName())
	}

	pol, err := resolveCLIPolicy(ctx, client, owner, repo, pr.GetHead().GetSHA())
	if err != nil {
		return err
	}

	verdict := title.Validate(snap.Title, pol.Title)
	engine := labeler.NewEngine(pol)
	desired, matches := engine.Desired(snap)
	patch := engine.Diff(desired, snap.CurrentLabels)

	summary := github.BuildCheckSummary(verdict, matches, patch)
	rendered, err := glamour.Render(summary, "dark")
	if err != nil {
		// Plain markdown still tells the whole story.
		fmt.Println(summary)
	} else {
		fmt.Print(rendered)
	}

	if !applyLabels {
		dimColor.Println("dry run, no labels were changed (use --apply)")
		return nil
	}
	if patch.Empty() {
		successColor.Println("labels already in sync, nothing to apply")
		return nil
	}

	if len(patch.ToAdd) > 0 {
		if err := client.AddLabels(ctx, owner, repo, prNumber, patch.ToAdd); err != nil {
			return fmt.Errorf("failed to add labels: %w", err)
		}
	}
	for _, label := range patch.ToRemove {
		if err := client.RemoveLabel(ctx, owner, repo, prNumber, label); err != nil {
			return fmt.Errorf("failed to remove label %q: %w", label, err)
		}
	}
	successColor.Printf("applied patch: +%d -%d\n", len(patch.ToAdd), len(patch.ToRemove))
	return nil
}

// resolveCLIPolicy prefers the repository's own policy file at the head SHA,
// mirroring what the server does, then falls back to the local --policy file.
func resolveCLIPolicy(ctx context.Context, client github.Client, owner, repo, headSHA string) (*policy.Policy, error) {
	data, err := client.GetRawFileContent(ctx, owner, repo, jobs.RepoPolicyFile, headSHA)
	if err == nil {
		return policy.Parse(data)
	}
	if !errors.Is(err, github.ErrFileNotFound) {
		return nil, fmt.Errorf("failed to fetch %s: %w", jobs.RepoPolicyFile, err)
	}
	return loadPolicyOrDefault()
}

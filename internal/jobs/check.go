package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/pr-warden/internal/config"
	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/labeler"
	"github.com/sevigo/pr-warden/internal/policy"
	"github.com/sevigo/pr-warden/internal/storage"
	"github.com/sevigo/pr-warden/internal/title"
)

// RepoPolicyFile is the per-repository policy override, read at the pull
// request's head SHA.
const RepoPolicyFile = ".pr-warden.yml"

// clientFactory builds a GitHub client for a specific app installation.
// Swappable in tests.
type clientFactory func(ctx context.Context, installationID int64) (github.Client, error)

// CheckJob validates a pull request title and reconciles its labels. One run
// operates on a single immutable snapshot; re-running for the same snapshot
// produces the same verdict and patch.
type CheckJob struct {
	cfg        *config.Config
	basePolicy *policy.Policy
	store      storage.Store
	logger     *slog.Logger
	clients    clientFactory
}

// NewCheckJob creates a new CheckJob with the server-side policy, the audit
// store, and logger.
func NewCheckJob(cfg *config.Config, pol *policy.Policy, store storage.Store, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if pol == nil {
		panic("policy cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CheckJob{
		cfg:        cfg,
		basePolicy: pol,
		store:      store,
		logger:     logger,
		clients: func(ctx context.Context, installationID int64) (github.Client, error) {
			return github.CreateInstallationClient(ctx, cfg, installationID, logger)
		},
	}
}

// Run executes the metadata check for a given pull request event.
func (j *CheckJob) Run(ctx context.Context, event *core.CheckEvent) error {
	if err := j.validateInputs(ctx, event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("input validation failed: %w", err)
	}

	j.logger.Info("starting metadata check", "repo", event.RepoFullName, "pr", event.PRNumber, "action", event.Action)

	ghClient, err := j.clients(ctx, event.InstallationID)
	if err != nil {
		j.logger.Error("failed to create GitHub client", "error", err)
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	reporter := github.NewCheckReporter(ghClient)
	checkRunID, err := reporter.InProgress(ctx, event, "Metadata Check", "Validating title and computing labels...")
	if err != nil {
		j.logger.Error("failed to set in-progress status", "error", err)
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	snap, err := j.buildSnapshot(ctx, ghClient, event)
	if err != nil {
		j.completeOnError(ctx, reporter, event, checkRunID, "Failed to fetch pull request metadata")
		return fmt.Errorf("failed to build snapshot: %w", err)
	}

	pol, err := j.resolvePolicy(ctx, ghClient, event)
	if err != nil {
		j.completeOnError(ctx, reporter, event, checkRunID, fmt.Sprintf("Invalid %s: %v", RepoPolicyFile, err))
		return fmt.Errorf("failed to resolve policy: %w", err)
	}

	verdict := title.Validate(snap.Title, pol.Title)

	engine := labeler.NewEngine(pol)
	desired, matches := engine.Desired(snap)
	patch := engine.Diff(desired, snap.CurrentLabels)

	if err := j.applyPatch(ctx, ghClient, event, patch); err != nil {
		j.completeOnError(ctx, reporter, event, checkRunID, "Failed to update labels")
		return fmt.Errorf("failed to apply label patch: %w", err)
	}

	conclusion := "success"
	checkTitle := "Title and labels are in order"
	if !verdict.Accepted {
		conclusion = "failure"
		checkTitle = "Title does not match the required format"
	}
	summary := github.BuildCheckSummary(verdict, matches, patch)
	summary += j.verdictTransitionNote(ctx, event, verdict)

	if err := reporter.Completed(ctx, event, checkRunID, conclusion, checkTitle, summary); err != nil {
		j.logger.Error("failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}

	j.saveEvaluation(ctx, event, verdict, patch)

	j.logger.Info("metadata check completed",
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"accepted", verdict.Accepted,
		"added", patch.ToAdd,
		"removed", patch.ToRemove,
	)
	return nil
}

// buildSnapshot assembles the immutable input for the check. The current
// label set and the changed file list are fetched concurrently; the fresh PR
// fetch keeps rapid consecutive edits from operating on stale labels.
func (j *CheckJob) buildSnapshot(ctx context.Context, ghClient github.Client, event *core.CheckEvent) (*core.PullRequestSnapshot, error) {
	var currentLabels []string
	var changedPaths []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pr, err := ghClient.GetPullRequest(gctx, event.RepoOwner, event.RepoName, event.PRNumber)
		if err != nil {
			return fmt.Errorf("failed to get PR details: %w", err)
		}
		for _, label := range pr.Labels {
			currentLabels = append(currentLabels, label.GetName())
		}
		return nil
	})
	g.Go(func() error {
		paths, err := ghClient.GetChangedPaths(gctx, event.RepoOwner, event.RepoName, event.PRNumber)
		if err != nil {
			return fmt.Errorf("failed to list changed files: %w", err)
		}
		changedPaths = paths
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &core.PullRequestSnapshot{
		Title:         event.PRTitle,
		Body:          event.PRBody,
		BaseRef:       event.BaseRef,
		HeadRef:       event.HeadRef,
		ChangedPaths:  changedPaths,
		CurrentLabels: currentLabels,
	}, nil
}

// resolvePolicy returns the repository's policy override when one exists at
// the head SHA, and the server-side policy otherwise. A malformed override is
// an error, never silently ignored.
func (j *CheckJob) resolvePolicy(ctx context.Context, ghClient github.Client, event *core.CheckEvent) (*policy.Policy, error) {
	data, err := ghClient.GetRawFileContent(ctx, event.RepoOwner, event.RepoName, RepoPolicyFile, event.HeadSHA)
	if err != nil {
		if errors.Is(err, github.ErrFileNotFound) {
			return j.basePolicy, nil
		}
		return nil, err
	}

	pol, err := policy.Parse(data)
	if err != nil {
		return nil, err
	}
	j.logger.Info("using repository policy override", "repo", event.RepoFullName, "file", RepoPolicyFile)
	return pol, nil
}

// applyPatch performs the label mutations. Adds are batched; removals are
// one API call per label.
func (j *CheckJob) applyPatch(ctx context.Context, ghClient github.Client, event *core.CheckEvent, patch core.LabelPatch) error {
	if patch.Empty() {
		return nil
	}

	if len(patch.ToAdd) > 0 {
		if err := ghClient.AddLabels(ctx, event.RepoOwner, event.RepoName, event.PRNumber, patch.ToAdd); err != nil {
			return err
		}
	}
	for _, label := range patch.ToRemove {
		if err := ghClient.RemoveLabel(ctx, event.RepoOwner, event.RepoName, event.PRNumber, label); err != nil {
			return err
		}
	}
	return nil
}

// verdictTransitionNote compares the verdict against the last recorded
// evaluation for this pull request and returns an extra summary line when the
// title verdict flipped since the previous check.
func (j *CheckJob) verdictTransitionNote(ctx context.Context, event *core.CheckEvent, verdict core.TitleVerdict) string {
	if j.store == nil {
		return ""
	}
	prev, err := j.store.GetLatestEvaluationForPR(ctx, event.RepoFullName, event.PRNumber)
	if err != nil || prev == nil {
		return ""
	}
	switch {
	case !prev.TitleAccepted && verdict.Accepted:
		return "\n> The title was failing in the previous check and now passes.\n"
	case prev.TitleAccepted && !verdict.Accepted:
		return "\n> The title passed in the previous check; the latest edit broke it.\n"
	}
	return ""
}

// saveEvaluation records the check outcome for auditing. The audit record is
// best effort; a storage failure must not fail a check that already reported
// its result.
func (j *CheckJob) saveEvaluation(ctx context.Context, event *core.CheckEvent, verdict core.TitleVerdict, patch core.LabelPatch) {
	if j.store == nil {
		return
	}
	eval := &core.Evaluation{
		RepoFullName:  event.RepoFullName,
		PRNumber:      event.PRNumber,
		HeadSHA:       event.HeadSHA,
		TitleAccepted: verdict.Accepted,
		TitleReason:   verdict.Reason,
		LabelsAdded:   strings.Join(patch.ToAdd, ","),
		LabelsRemoved: strings.Join(patch.ToRemove, ","),
	}
	if err := j.store.SaveEvaluation(ctx, eval); err != nil {
		j.logger.Error("failed to save evaluation record", "repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}
}

// completeOnError marks the check run as failed with a short explanation.
func (j *CheckJob) completeOnError(ctx context.Context, reporter github.CheckReporter, event *core.CheckEvent, checkRunID int64, message string) {
	if err := reporter.Completed(ctx, event, checkRunID, "failure", "Metadata check failed", message); err != nil {
		j.logger.Error("failed to update error status", "error", err)
	}
}

// validateInputs ensures the event contains all required fields.
func (j *CheckJob) validateInputs(ctx context.Context, event *core.CheckEvent) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.HeadSHA == "" {
		return fmt.Errorf("pull request head SHA cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}

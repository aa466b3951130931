// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/labeler"
)

// CheckRunName identifies the check run this service owns on a pull request.
const CheckRunName = "PR Warden"

// CheckReporter defines the contract for reporting the progress and outcome of
// a metadata check as a GitHub Check Run.
type CheckReporter interface {
	InProgress(ctx context.Context, event *core.CheckEvent, title, summary string) (int64, error)
	Completed(ctx context.Context, event *core.CheckEvent, checkRunID int64, conclusion, title, summary string) error
}

type checkReporter struct {
	client Client
}

// NewCheckReporter creates and returns a new instance of a checkReporter.
func NewCheckReporter(client Client) CheckReporter {
	return &checkReporter{client: client}
}

// InProgress creates a new GitHub Check Run with an "in_progress" status.
func (s *checkReporter) InProgress(ctx context.Context, event *core.CheckEvent, title, summary string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    CheckRunName,
		HeadSHA: event.HeadSHA,
		Status:  github.Ptr("in_progress"),
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	checkRun, err := s.client.CreateCheckRun(ctx, event.RepoOwner, event.RepoName, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return checkRun.GetID(), nil
}

// Completed updates an existing GitHub Check Run to a "completed" status.
func (s *checkReporter) Completed(ctx context.Context, event *core.CheckEvent, checkRunID int64, conclusion, title, summary string) error {
	now := time.Now()
	opts := github.UpdateCheckRunOptions{
		Name:        CheckRunName,
		Status:      github.Ptr("completed"),
		Conclusion:  &conclusion,
		CompletedAt: &github.Timestamp{Time: now},
		Output: &github.CheckRunOutput{
			Title:   &title,
			Summary: &summary,
		},
	}
	_, err := s.client.UpdateCheckRun(ctx, event.RepoOwner, event.RepoName, checkRunID, opts)
	return err
}

// BuildCheckSummary renders the markdown summary for a completed metadata
// check: the title verdict and every label decision with its provenance.
func BuildCheckSummary(verdict core.TitleVerdict, matches []labeler.Match, patch core.LabelPatch) string {
	var sb strings.Builder

	if verdict.Accepted {
		sb.WriteString("### ✅ PR Title: Passed\n\n")
	} else {
		sb.WriteString("### 🔴 PR Title: Failed\n\n")
		sb.WriteString("> [!CAUTION]\n")
		fmt.Fprintf(&sb, "> %s\n\n", verdict.Reason)
	}

	sb.WriteString("#### 🏷️ Labels\n\n")
	if patch.Empty() {
		sb.WriteString("No label changes required.\n")
	} else {
		sb.WriteString("| Action | Label |\n")
		sb.WriteString("|--------|-------|\n")
		for _, label := range patch.ToAdd {
			fmt.Fprintf(&sb, "| add | `%s` |\n", label)
		}
		for _, label := range patch.ToRemove {
			fmt.Fprintf(&sb, "| remove | `%s` |\n", label)
		}
		sb.WriteString("\n")
	}

	if len(matches) > 0 {
		sb.WriteString("\n<details>\n<summary>Rule matches</summary>\n\n")
		sb.WriteString("| Rule | Label | Matched On |\n")
		sb.WriteString("|------|-------|------------|\n")
		for _, m := range matches {
			matchedOn := m.Path
			if matchedOn == "" {
				matchedOn = "branch/title"
			}
			fmt.Fprintf(&sb, "| %s | `%s` | `%s` |\n", m.Rule, m.Label, matchedOn)
		}
		sb.WriteString("\n</details>\n")
	}

	return sb.String()
}

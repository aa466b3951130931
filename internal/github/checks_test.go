package github_test

import (
	"context"
	"errors"
	"testing"

	gogithub "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/github"
	"github.com/sevigo/pr-warden/internal/labeler"
	"github.com/sevigo/pr-warden/internal/mocks"
)

func testEvent() *core.CheckEvent {
	return &core.CheckEvent{
		RepoOwner: "sevigo",
		RepoName:  "pr-warden",
		PRNumber:  42,
		HeadSHA:   "abc123def",
	}
}

func TestCheckReporterInProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	reporter := github.NewCheckReporter(mockClient)
	event := testEvent()

	mockClient.EXPECT().
		CreateCheckRun(gomock.Any(), "sevigo", "pr-warden", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, opts gogithub.CreateCheckRunOptions) (*gogithub.CheckRun, error) {
			assert.Equal(t, github.CheckRunName, opts.Name)
			assert.Equal(t, "abc123def", opts.HeadSHA)
			assert.Equal(t, "in_progress", opts.GetStatus())
			return &gogithub.CheckRun{ID: gogithub.Ptr(int64(77))}, nil
		})

	id, err := reporter.InProgress(context.Background(), event, "Metadata Check", "Checking...")
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
}

func TestCheckReporterInProgressError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	reporter := github.NewCheckReporter(mockClient)

	mockClient.EXPECT().
		CreateCheckRun(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("api down"))

	_, err := reporter.InProgress(context.Background(), testEvent(), "Metadata Check", "Checking...")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create check run")
}

func TestCheckReporterCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mocks.NewMockClient(ctrl)
	reporter := github.NewCheckReporter(mockClient)

	mockClient.EXPECT().
		UpdateCheckRun(gomock.Any(), "sevigo", "pr-warden", int64(77), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int64, opts gogithub.UpdateCheckRunOptions) (*gogithub.CheckRun, error) {
			assert.Equal(t, "completed", opts.GetStatus())
			assert.Equal(t, "success", opts.GetConclusion())
			require.NotNil(t, opts.CompletedAt)
			return &gogithub.CheckRun{}, nil
		})

	err := reporter.Completed(context.Background(), testEvent(), 77, "success", "Metadata Check", "All good")
	require.NoError(t, err)
}

func TestBuildCheckSummaryAccepted(t *testing.T) {
	verdict := core.TitleVerdict{Accepted: true}
	patch := core.LabelPatch{ToAdd: []string{"documentation"}, ToRemove: []string{"backend"}}
	matches := []labeler.Match{
		{Rule: "docs", Label: "documentation", Path: "docs/guide.md"},
	}

	summary := github.BuildCheckSummary(verdict, matches, patch)

	assert.Contains(t, summary, "✅ PR Title: Passed")
	assert.NotContains(t, summary, "[!CAUTION]")
	assert.Contains(t, summary, "| add | `documentation` |")
	assert.Contains(t, summary, "| remove | `backend` |")
	assert.Contains(t, summary, "| docs | `documentation` | `docs/guide.md` |")
}

func TestBuildCheckSummaryRejected(t *testing.T) {
	verdict := core.TitleVerdict{Accepted: false, Reason: "type 'feature' not allowed (allowed: feat, fix)"}

	summary := github.BuildCheckSummary(verdict, nil, core.LabelPatch{})

	assert.Contains(t, summary, "🔴 PR Title: Failed")
	assert.Contains(t, summary, "[!CAUTION]")
	assert.Contains(t, summary, "type 'feature' not allowed")
	assert.Contains(t, summary, "No label changes required.")
	assert.NotContains(t, summary, "<details>")
}

func TestBuildCheckSummaryBranchMatchProvenance(t *testing.T) {
	matches := []labeler.Match{
		{Rule: "hotfix", Label: "hotfix"},
	}

	summary := github.BuildCheckSummary(core.TitleVerdict{Accepted: true}, matches, core.LabelPatch{ToAdd: []string{"hotfix"}})

	assert.Contains(t, summary, "| hotfix | `hotfix` | `branch/title` |")
}

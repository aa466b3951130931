package core

import (
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPullRequestEvent() *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: github.Ptr("opened"),
		Repo: &github.Repository{
			Name:     github.Ptr("pr-warden"),
			FullName: github.Ptr("sevigo/pr-warden"),
			Owner:    &github.User{Login: github.Ptr("sevigo")},
		},
		PullRequest: &github.PullRequest{
			Number: github.Ptr(42),
			Title:  github.Ptr("feat(api): add webhook endpoint"),
			Body:   github.Ptr("Adds the webhook endpoint."),
			Base:   &github.PullRequestBranch{Ref: github.Ptr("main")},
			Head: &github.PullRequestBranch{
				Ref: github.Ptr("feature/webhook"),
				SHA: github.Ptr("abc123def"),
			},
		},
		Sender:       &github.User{Login: github.Ptr("octocat")},
		Installation: &github.Installation{ID: github.Ptr(int64(999))},
	}
}

func TestEventFromPullRequest(t *testing.T) {
	event, err := EventFromPullRequest(validPullRequestEvent())
	require.NoError(t, err)

	assert.Equal(t, "sevigo", event.RepoOwner)
	assert.Equal(t, "pr-warden", event.RepoName)
	assert.Equal(t, "sevigo/pr-warden", event.RepoFullName)
	assert.Equal(t, 42, event.PRNumber)
	assert.Equal(t, "feat(api): add webhook endpoint", event.PRTitle)
	assert.Equal(t, "main", event.BaseRef)
	assert.Equal(t, "feature/webhook", event.HeadRef)
	assert.Equal(t, "abc123def", event.HeadSHA)
	assert.Equal(t, "opened", event.Action)
	assert.Equal(t, "octocat", event.Sender)
	assert.Equal(t, int64(999), event.InstallationID)
}

func TestEventFromPullRequestActions(t *testing.T) {
	checked := []string{"opened", "edited", "reopened", "labeled", "unlabeled", "synchronize"}
	for _, action := range checked {
		t.Run(action, func(t *testing.T) {
			payload := validPullRequestEvent()
			payload.Action = github.Ptr(action)

			event, err := EventFromPullRequest(payload)
			require.NoError(t, err)
			assert.Equal(t, action, event.Action)
		})
	}

	skipped := []string{"closed", "assigned", "review_requested", ""}
	for _, action := range skipped {
		t.Run("skip_"+action, func(t *testing.T) {
			payload := validPullRequestEvent()
			payload.Action = github.Ptr(action)

			event, err := EventFromPullRequest(payload)
			require.Error(t, err)
			assert.Nil(t, event)
			assert.Contains(t, err.Error(), "does not require a metadata check")
		})
	}
}

func TestEventFromPullRequestInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *github.PullRequestEvent)
		wantErr string
	}{
		{
			name:    "missing repository",
			mutate:  func(e *github.PullRequestEvent) { e.Repo = nil },
			wantErr: "repository or owner information is missing",
		},
		{
			name:    "missing owner login",
			mutate:  func(e *github.PullRequestEvent) { e.Repo.Owner = &github.User{} },
			wantErr: "repository or owner information is missing",
		},
		{
			name:    "missing pull request",
			mutate:  func(e *github.PullRequestEvent) { e.PullRequest = nil },
			wantErr: "pull request payload is missing",
		},
		{
			name:    "invalid pull request number",
			mutate:  func(e *github.PullRequestEvent) { e.PullRequest.Number = github.Ptr(0) },
			wantErr: "invalid pull request number",
		},
		{
			name:    "missing head SHA",
			mutate:  func(e *github.PullRequestEvent) { e.PullRequest.Head.SHA = nil },
			wantErr: "head SHA is missing",
		},
		{
			name:    "missing installation",
			mutate:  func(e *github.PullRequestEvent) { e.Installation = nil },
			wantErr: "installation ID is missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPullRequestEvent()
			tt.mutate(payload)

			event, err := EventFromPullRequest(payload)
			require.Error(t, err)
			assert.Nil(t, event)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

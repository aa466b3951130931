package core

import (
	"fmt"

	"github.com/google/go-github/v73/github"
)

// checkedActions is the set of pull request actions that trigger a metadata check.
// Title and label state can change on each of these.
var checkedActions = map[string]struct{}{
	"opened":      {},
	"edited":      {},
	"reopened":    {},
	"labeled":     {},
	"unlabeled":   {},
	"synchronize": {},
}

// CheckEvent represents a simplified, internal view of a GitHub pull request
// webhook event.
type CheckEvent struct {
	// Repository details
	RepoOwner    string
	RepoName     string
	RepoFullName string

	PRNumber int
	PRTitle  string
	PRBody   string
	BaseRef  string
	HeadRef  string
	HeadSHA  string

	Action         string
	Sender         string
	InstallationID int64
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal CheckEvent representation. It acts as an
// anti-corruption layer, ensuring the incoming webhook payload is valid and
// contains all necessary data before it's processed by a job. Events whose
// action cannot change the title or label state are rejected up front.
func EventFromPullRequest(event *github.PullRequestEvent) (*CheckEvent, error) {
	action := event.GetAction()
	if _, ok := checkedActions[action]; !ok {
		return nil, fmt.Errorf("action %q does not require a metadata check", action)
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("pull request payload is missing from the event")
	}

	prNumber := pr.GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if pr.GetHead() == nil || pr.GetHead().GetSHA() == "" {
		return nil, fmt.Errorf("pull request head SHA is missing from the event")
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &CheckEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		PRNumber:       prNumber,
		PRTitle:        pr.GetTitle(),
		PRBody:         pr.GetBody(),
		BaseRef:        pr.GetBase().GetRef(),
		HeadRef:        pr.GetHead().GetRef(),
		HeadSHA:        pr.GetHead().GetSHA(),
		Action:         action,
		Sender:         event.GetSender().GetLogin(),
		InstallationID: event.GetInstallation().GetID(),
	}, nil
}

// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import "fmt"

// PullRequestSnapshot is an immutable view of the pull request metadata a
// single check invocation operates on. It is constructed fresh per event and
// discarded after a verdict and label patch have been produced.
type PullRequestSnapshot struct {
	Title         string
	Body          string
	BaseRef       string
	HeadRef       string
	ChangedPaths  []string
	CurrentLabels []string
}

// TitleVerdict is the result of validating a pull request title.
// A rejected verdict carries a human-readable reason naming the rule that failed.
type TitleVerdict struct {
	Accepted bool
	Reason   string
}

// Accept returns an accepting verdict.
func Accept() TitleVerdict {
	return TitleVerdict{Accepted: true}
}

// Rejectf returns a rejecting verdict with a formatted reason.
func Rejectf(format string, args ...any) TitleVerdict {
	return TitleVerdict{Accepted: false, Reason: fmt.Sprintf(format, args...)}
}

// LabelPatch describes the label mutations needed to bring a pull request's
// labels in line with the desired set. ToAdd and ToRemove are disjoint and
// sorted so that logs and audit records are reproducible.
type LabelPatch struct {
	ToAdd    []string
	ToRemove []string
}

// Empty reports whether applying the patch would be a no-op.
func (p LabelPatch) Empty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

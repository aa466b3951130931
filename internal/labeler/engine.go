// Package labeler computes the label set a pull request should carry based on
// the configured rules, and diffs it against the current labels to produce a
// minimal add/remove patch.
package labeler

import (
	"sort"

	"github.com/sevigo/pr-warden/internal/core"
	"github.com/sevigo/pr-warden/internal/policy"
)

// Match records which rule produced which label for one snapshot, so that the
// check summary and logs can explain every label decision.
type Match struct {
	Rule  string
	Label string
	// Path is the first changed path that satisfied the rule, or empty when
	// the rule matched on the branch or title instead.
	Path string
}

// Engine evaluates a compiled policy against pull request snapshots.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules   []policy.LabelRule
	managed []string
}

// NewEngine creates an engine from a compiled policy.
func NewEngine(pol *policy.Policy) *Engine {
	return &Engine{
		rules:   pol.Rules,
		managed: pol.ManagedLabels(),
	}
}

// ManagedLabels returns the label universe the engine is allowed to remove from.
func (e *Engine) ManagedLabels() []string {
	return e.managed
}

// Desired computes the label set the snapshot should carry. Rules are
// evaluated in configured order, every rule against every changed path, and
// matching rules contribute their labels to the result (set union, so the
// result is independent of rule order). The returned matches preserve
// evaluation order for diagnostics.
func (e *Engine) Desired(snap *core.PullRequestSnapshot) ([]string, []Match) {
	seen := map[string]struct{}{}
	var desired []string
	var matches []Match

	for i := range e.rules {
		rule := &e.rules[i]
		matchedPath, ok := firstMatchingPath(rule, snap.ChangedPaths)
		if !ok && !rule.MatchesBranch(snap.HeadRef) && !rule.MatchesTitle(snap.Title) {
			continue
		}

		for _, label := range rule.Labels {
			matches = append(matches, Match{Rule: ruleName(rule), Label: label, Path: matchedPath})
			if _, dup := seen[label]; !dup {
				seen[label] = struct{}{}
				desired = append(desired, label)
			}
		}
	}

	sort.Strings(desired)
	return desired, matches
}

// Diff computes the patch that brings current in line with desired. Only
// labels inside the engine's managed universe are candidates for removal;
// labels applied by humans outside that universe are never touched.
func (e *Engine) Diff(desired, current []string) core.LabelPatch {
	desiredSet := toSet(desired)
	currentSet := toSet(current)
	managedSet := toSet(e.managed)

	var patch core.LabelPatch
	for _, label := range desired {
		if _, ok := currentSet[label]; !ok {
			patch.ToAdd = append(patch.ToAdd, label)
		}
	}
	for _, label := range current {
		if _, managed := managedSet[label]; !managed {
			continue
		}
		if _, wanted := desiredSet[label]; !wanted {
			patch.ToRemove = append(patch.ToRemove, label)
		}
	}

	sort.Strings(patch.ToAdd)
	sort.Strings(patch.ToRemove)
	return patch
}

func firstMatchingPath(rule *policy.LabelRule, paths []string) (string, bool) {
	for _, path := range paths {
		if rule.MatchesPath(path) {
			return path, true
		}
	}
	return "", false
}

func ruleName(rule *policy.LabelRule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return rule.Labels[0]
}

func toSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

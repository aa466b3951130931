// Package policy defines the tunable behavior of the metadata checks: the
// title grammar settings and the ordered label rule list. A Policy is loaded
// once, compiled, and immutable during evaluation.
package policy

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

var (
	ErrPolicyNotFound = errors.New("policy file not found")
	ErrPolicyParsing  = errors.New("policy parsing failed")
)

// TitlePolicy configures the conventional-commit style title check.
type TitlePolicy struct {
	// Types a title may use, e.g. ["feat", "fix", "chore", "docs"].
	// Matched case-insensitively.
	AllowedTypes []string `yaml:"allowed_types"`

	// RequireScope rejects titles without a "(scope)" segment.
	RequireScope bool `yaml:"require_scope"`

	// MaxLength rejects titles longer than this many runes. Zero disables the check.
	MaxLength int `yaml:"max_length"`
}

// LabelRule maps patterns over changed file paths, branch names, or the title
// to one or more labels. At least one pattern and one label are required.
type LabelRule struct {
	Name     string   `yaml:"name"`
	Paths    []string `yaml:"paths"`
	Branches []string `yaml:"branches"`
	Title    string   `yaml:"title"`
	Labels   []string `yaml:"labels"`

	branchPatterns []*regexp.Regexp
	titlePattern   *regexp.Regexp
}

// Policy is the full configuration for one repository's metadata checks.
type Policy struct {
	Title TitlePolicy `yaml:"title"`
	Rules []LabelRule `yaml:"rules"`
}

// Default returns a policy with the usual conventional-commit types and no
// label rules.
func Default() *Policy {
	return &Policy{
		Title: TitlePolicy{
			AllowedTypes: []string{"feat", "fix", "chore", "docs", "refactor", "test", "ci"},
		},
	}
}

// Load reads and compiles a policy from a YAML file on disk.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPolicyNotFound, path)
		}
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and compiles a policy from raw YAML, e.g. a .pr-warden.yml
// fetched from a repository at the pull request's head SHA.
func Parse(data []byte) (*Policy, error) {
	pol := Default()
	if err := yaml.Unmarshal(data, pol); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPolicyParsing, err)
	}
	if err := pol.compile(); err != nil {
		return nil, err
	}
	return pol, nil
}

// compile validates the policy and precompiles every rule pattern. Any
// malformed pattern fails the whole load; rules are never silently skipped.
func (p *Policy) compile() error {
	if len(p.Title.AllowedTypes) == 0 {
		return fmt.Errorf("title policy must allow at least one type")
	}
	for i, t := range p.Title.AllowedTypes {
		p.Title.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
		if p.Title.AllowedTypes[i] == "" {
			return fmt.Errorf("title policy contains an empty type")
		}
	}
	if p.Title.MaxLength < 0 {
		return fmt.Errorf("title max_length must not be negative, got %d", p.Title.MaxLength)
	}

	for i := range p.Rules {
		if err := p.Rules[i].compile(i); err != nil {
			return err
		}
	}
	return nil
}

func (r *LabelRule) compile(index int) error {
	name := r.Name
	if name == "" {
		name = fmt.Sprintf("rule #%d", index+1)
	}

	if len(r.Labels) == 0 {
		return fmt.Errorf("%s must produce at least one label", name)
	}
	if len(r.Paths) == 0 && len(r.Branches) == 0 && r.Title == "" {
		return fmt.Errorf("%s must define at least one path, branch, or title pattern", name)
	}

	for _, glob := range r.Paths {
		if !doublestar.ValidatePattern(glob) {
			return fmt.Errorf("%s has an invalid path glob %q", name, glob)
		}
	}
	for _, expr := range r.Branches {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("%s has an invalid branch pattern %q: %w", name, expr, err)
		}
		r.branchPatterns = append(r.branchPatterns, re)
	}
	if r.Title != "" {
		re, err := regexp.Compile(r.Title)
		if err != nil {
			return fmt.Errorf("%s has an invalid title pattern %q: %w", name, r.Title, err)
		}
		r.titlePattern = re
	}
	return nil
}

// MatchesPath reports whether any of the rule's path globs matches the given
// changed file path.
func (r *LabelRule) MatchesPath(path string) bool {
	for _, glob := range r.Paths {
		ok, err := doublestar.Match(glob, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// MatchesBranch reports whether any branch pattern matches the head ref.
func (r *LabelRule) MatchesBranch(ref string) bool {
	for _, re := range r.branchPatterns {
		if re.MatchString(ref) {
			return true
		}
	}
	return false
}

// MatchesTitle reports whether the rule's title pattern matches.
func (r *LabelRule) MatchesTitle(title string) bool {
	return r.titlePattern != nil && r.titlePattern.MatchString(title)
}

// ManagedLabels returns the label universe: every label any configured rule
// can produce, sorted and deduplicated. Only labels in this set are candidates
// for removal, so manually applied labels are left untouched.
func (p *Policy) ManagedLabels() []string {
	seen := map[string]struct{}{}
	var labels []string
	for _, rule := range p.Rules {
		for _, label := range rule.Labels {
			if _, ok := seen[label]; !ok {
				seen[label] = struct{}{}
				labels = append(labels, label)
			}
		}
	}
	sort.Strings(labels)
	return labels
}

package title

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/pr-warden/internal/policy"
)

func TestValidate(t *testing.T) {
	defaultPolicy := policy.TitlePolicy{
		AllowedTypes: []string{"feat", "fix"},
	}

	tests := []struct {
		name         string
		title        string
		pol          policy.TitlePolicy
		wantAccepted bool
		wantReason   string
	}{
		{
			name:         "simple valid title",
			title:        "feat: add login",
			pol:          defaultPolicy,
			wantAccepted: true,
		},
		{
			name:         "valid title with scope",
			title:        "fix(parser): handle empty payload",
			pol:          defaultPolicy,
			wantAccepted: true,
		},
		{
			name:         "valid title with breaking marker",
			title:        "feat(api)!: drop v1 endpoints",
			pol:          defaultPolicy,
			wantAccepted: true,
		},
		{
			name:         "type matched case-insensitively",
			title:        "Feat: add login",
			pol:          defaultPolicy,
			wantAccepted: true,
		},
		{
			name:       "type not in allowed set",
			title:      "feature: add login",
			pol:        defaultPolicy,
			wantReason: "type 'feature' not allowed (allowed: feat, fix)",
		},
		{
			name:       "empty title",
			title:      "",
			pol:        defaultPolicy,
			wantReason: "title must not be empty",
		},
		{
			name:       "whitespace-only title",
			title:      "   ",
			pol:        defaultPolicy,
			wantReason: "title must not be empty",
		},
		{
			name:       "missing colon",
			title:      "add login",
			pol:        defaultPolicy,
			wantReason: "missing type prefix, expected '<type>(<scope>): <description>'",
		},
		{
			name:       "empty description",
			title:      "feat: ",
			pol:        defaultPolicy,
			wantReason: "description must not be empty",
		},
		{
			name:       "description ends with period",
			title:      "feat: add login.",
			pol:        defaultPolicy,
			wantReason: "description must not end with a period",
		},
		{
			name:  "scope required but missing",
			title: "feat: add login",
			pol: policy.TitlePolicy{
				AllowedTypes: []string{"feat", "fix"},
				RequireScope: true,
			},
			wantReason: "scope is required, expected 'feat(<scope>): add login'",
		},
		{
			name:  "scope required and present",
			title: "feat(auth): add login",
			pol: policy.TitlePolicy{
				AllowedTypes: []string{"feat", "fix"},
				RequireScope: true,
			},
			wantAccepted: true,
		},
		{
			name:       "unclosed scope parenthesis",
			title:      "feat(auth: add login",
			pol:        defaultPolicy,
			wantReason: "scope parenthesis is not closed in 'feat(auth'",
		},
		{
			name:       "empty scope",
			title:      "feat(): add login",
			pol:        defaultPolicy,
			wantReason: "scope must not be empty",
		},
		{
			name:       "uppercase scope rejected",
			title:      "feat(Auth): add login",
			pol:        defaultPolicy,
			wantReason: "scope 'Auth' must be a lowercase token",
		},
		{
			name:  "over max length",
			title: "feat: this is a very long description that keeps going",
			pol: policy.TitlePolicy{
				AllowedTypes: []string{"feat"},
				MaxLength:    20,
			},
			wantAccepted: false,
		},
		{
			name:         "description containing colons",
			title:        "fix: handle time format 15:04:05",
			pol:          defaultPolicy,
			wantAccepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Validate(tt.title, tt.pol)
			assert.Equal(t, tt.wantAccepted, verdict.Accepted)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, verdict.Reason)
			}
			if tt.wantAccepted {
				assert.Empty(t, verdict.Reason)
			}
		})
	}
}

func TestValidateIsDeterministic(t *testing.T) {
	pol := policy.TitlePolicy{AllowedTypes: []string{"feat", "fix"}}
	first := Validate("feature: add login", pol)
	second := Validate("feature: add login", pol)
	assert.Equal(t, first, second)
}

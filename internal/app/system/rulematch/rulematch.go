// internal/app/system/rulematch/rulematch.go
package rulematch

import (
	"context"
	"sort"

	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseAttributes are the facts about a case the rule predicates run over.
type CaseAttributes struct {
	SurveyType      string
	Zone            models.Zone
	PlanType        string
	PICSScore       int
	PanelMember     bool
	Specializations []string // tags the case calls for, e.g. "behavioral"
}

// Candidate is the matcher's verdict: either a role to resolve against the
// coordinator pool or a specific coordinator, plus the rule that decided.
type Candidate struct {
	RuleID primitive.ObjectID
	Role   string
	UserID *primitive.ObjectID
}

// RuleSource supplies a tenant's active rules for a survey type.
// *rulestore.Store satisfies it.
type RuleSource interface {
	ListActive(ctx context.Context, tenantID primitive.ObjectID, surveyType string) ([]models.AssignmentRule, error)
}

// Matcher evaluates a case against a tenant's prioritized rules.
type Matcher struct {
	rules RuleSource
}

// New creates a rule Matcher.
func New(rules RuleSource) *Matcher {
	return &Matcher{rules: rules}
}

// FindCandidate returns the first active rule matching attrs, in
// (priority asc, created_at asc, id asc) order. The slice is re-sorted
// here rather than trusting the source, so the first-match-wins result
// never depends on storage iteration order. Returns
// *faults.NoRuleMatchedError when nothing matches.
func (m *Matcher) FindCandidate(ctx context.Context, tenantID primitive.ObjectID, attrs CaseAttributes) (Candidate, error) {
	rules, err := m.rules.ListActive(ctx, tenantID, attrs.SurveyType)
	if err != nil {
		return Candidate{}, faults.Persistence("rulematch.FindCandidate", err)
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID.Hex() < rules[j].ID.Hex()
	})

	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if Matches(r.Criteria, attrs) {
			return Candidate{RuleID: r.ID, Role: r.AssignedRole, UserID: r.AssignedUserID}, nil
		}
	}
	return Candidate{}, &faults.NoRuleMatchedError{TenantID: tenantID, SurveyType: attrs.SurveyType}
}

// Matches evaluates a rule's sparse criteria against case attributes.
// Pure and side-effect free. A criteria field left nil does not constrain
// the match: the permissive default keeps thinly-specified rules from
// starving unmatched cases, and is pinned down by tests as deliberate,
// revisitable policy.
func Matches(c models.RuleCriteria, attrs CaseAttributes) bool {
	if c.Zone != nil && *c.Zone != attrs.Zone {
		return false
	}
	if c.PlanType != nil && *c.PlanType != attrs.PlanType {
		return false
	}
	if c.PanelMember != nil && *c.PanelMember != attrs.PanelMember {
		return false
	}
	if c.Specialization != nil && !hasTag(attrs.Specializations, *c.Specialization) {
		return false
	}
	if c.MinPICSScore != nil && attrs.PICSScore < *c.MinPICSScore {
		return false
	}
	if c.MaxPICSScore != nil && attrs.PICSScore > *c.MaxPICSScore {
		return false
	}
	return true
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

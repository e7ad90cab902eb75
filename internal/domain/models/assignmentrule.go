// internal/domain/models/assignmentrule.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleCriteria is the sparse predicate an assignment rule evaluates against
// a case. Fields left nil do not constrain the match (permissive default):
// a rule with only Zone set matches every case in that zone regardless of
// plan type, panel membership, or score.
type RuleCriteria struct {
	Zone           *Zone   `bson:"zone,omitempty" json:"zone,omitempty"`
	PlanType       *string `bson:"plan_type,omitempty" json:"plan_type,omitempty"`
	PanelMember    *bool   `bson:"panel_member,omitempty" json:"panel_member,omitempty"`
	Specialization *string `bson:"specialization,omitempty" json:"specialization,omitempty"`
	MinPICSScore   *int    `bson:"min_pics_score,omitempty" json:"min_pics_score,omitempty"`
	MaxPICSScore   *int    `bson:"max_pics_score,omitempty" json:"max_pics_score,omitempty"`
}

// AssignmentRule maps case attributes to a responsible role or individual.
// Active rules are evaluated in ascending priority order, ties broken by
// creation time then id, and the first match wins. Exactly one of
// AssignedRole / AssignedUserID is set.
type AssignmentRule struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	SurveyType string       `bson:"survey_type" json:"survey_type"`
	Criteria   RuleCriteria `bson:"criteria" json:"criteria"`

	AssignedRole   string              `bson:"assigned_role,omitempty" json:"assigned_role,omitempty"`
	AssignedUserID *primitive.ObjectID `bson:"assigned_user_id,omitempty" json:"assigned_user_id,omitempty"`

	Priority int  `bson:"priority" json:"priority"` // lower evaluates first
	IsActive bool `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

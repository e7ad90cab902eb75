// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is the subject of a case: a plan member whose surveys and
// assessments flow through the assignment engine and form lifecycle.
//
// AssignedSCID names the coordinator who currently owns the member's open
// case, by business key. It is written only by the assignment engine.
type Member struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"full_name_ci"`

	MemberZone  Zone   `bson:"member_zone" json:"member_zone"`
	PlanType    string `bson:"plan_type" json:"plan_type"`
	PICSScore   int    `bson:"pics_score" json:"pics_score"`
	PanelMember bool   `bson:"panel_member" json:"panel_member"`

	AssignedSCID string `bson:"assigned_scid,omitempty" json:"assigned_scid,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

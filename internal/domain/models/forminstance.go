// internal/domain/models/forminstance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form instance lifecycle states.
//
//	draft -> pending -> approved -> completed
//	                 -> rejected -> draft (resubmission loop)
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// IsValidStatus reports whether s is a defined lifecycle state.
func IsValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// FormInstance is one in-progress or completed occurrence of a template for
// a member, owned by the coordinator the assignment engine selected.
//
// Version is an optimistic concurrency counter: every state-changing write
// supplies the last-known version and bumps it by one. A stale writer gets
// a conflict instead of silently overwriting.
type FormInstance struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	TemplateID         primitive.ObjectID `bson:"template_id" json:"template_id"`
	MemberID           primitive.ObjectID `bson:"member_id" json:"member_id"`
	OwnerCoordinatorID primitive.ObjectID `bson:"owner_coordinator_id" json:"owner_coordinator_id"`

	Status    string            `bson:"status" json:"status"`
	Responses map[string]string `bson:"responses,omitempty" json:"responses,omitempty"`

	Version int64 `bson:"version" json:"version"`

	SubmittedAt *time.Time          `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewNote  string              `bson:"review_note,omitempty" json:"review_note,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

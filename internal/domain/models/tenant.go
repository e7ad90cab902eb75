// internal/domain/models/tenant.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant is the isolation boundary for every other record in the system.
// Coordinators, members, rules, templates, and form instances all carry a
// tenant_id and are never visible across tenants.
//
// A tenant is immutable once created except for its display name and status.
type Tenant struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped
	Status string             `bson:"status" json:"status"`   // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

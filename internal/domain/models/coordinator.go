// internal/domain/models/coordinator.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinator roles, lowest to highest in the supervisory tree.
const (
	RoleCoordinator = "coordinator"
	RoleSupervisor  = "supervisor"
	RoleManager     = "manager"
	RoleDirector    = "director"
)

// ServiceCoordinator is a staff member who owns assigned cases.
// Coordinators form a supervisory tree (coordinator -> supervisor ->
// manager -> director) expressed as nullable parent-id references rather
// than live pointers, so a cycle can never be constructed in memory; the
// hierarchy validator rejects cyclic or cross-tenant edges on write.
//
// CurrentCaseload is mutated only by the assignment engine (increment on
// assign, decrement on closure/reassignment) and, when MaxCaseload is set,
// never exceeds it.
type ServiceCoordinator struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	// SCID is the coordinator's stable business key, referenced from
	// member records. It survives re-imports that recreate the Mongo _id.
	SCID string `bson:"scid" json:"scid"`

	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string `bson:"email" json:"email"`

	Zone Zone   `bson:"zone" json:"zone"`
	Role string `bson:"role" json:"role"` // coordinator | supervisor | manager | director

	SupervisorID *primitive.ObjectID `bson:"supervisor_id,omitempty" json:"supervisor_id,omitempty"`
	ManagerID    *primitive.ObjectID `bson:"manager_id,omitempty" json:"manager_id,omitempty"`
	DirectorID   *primitive.ObjectID `bson:"director_id,omitempty" json:"director_id,omitempty"`

	// MaxCaseload nil means unlimited.
	MaxCaseload     *int `bson:"max_caseload,omitempty" json:"max_caseload,omitempty"`
	CurrentCaseload int  `bson:"current_caseload" json:"current_caseload"`

	Specializations []string `bson:"specializations,omitempty" json:"specializations,omitempty"`
	IsActive        bool     `bson:"is_active" json:"is_active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasSpecialization reports whether the coordinator carries the given tag.
func (c *ServiceCoordinator) HasSpecialization(tag string) bool {
	for _, s := range c.Specializations {
		if s == tag {
			return true
		}
	}
	return false
}

// ChainIDs returns the coordinator's supervisory chain ids (supervisor,
// manager, director) with nil entries skipped.
func (c *ServiceCoordinator) ChainIDs() []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, p := range []*primitive.ObjectID{c.SupervisorID, c.ManagerID, c.DirectorID} {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}

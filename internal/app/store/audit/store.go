// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAssignment = "assignment"
	CategoryLifecycle  = "lifecycle"
	CategoryHierarchy  = "hierarchy"
	CategoryAdmin      = "admin"
)

// Entity types
const (
	EntityCoordinator  = "service_coordinator"
	EntityMember       = "member"
	EntityFormInstance = "form_instance"
	EntityRule         = "assignment_rule"
)

// Assignment actions
const (
	ActionCaseAssigned   = "case_assigned"
	ActionCaseReassigned = "case_reassigned"
	ActionCaseReleased   = "case_released"
	ActionCaseUnmatched  = "case_unmatched" // no rule matched; queued for manual triage
)

// Hierarchy actions
const (
	ActionCaseloadAdjusted = "caseload_adjusted"
	ActionChainChanged     = "supervisor_chain_changed"
)

// Lifecycle actions
const (
	ActionInstanceCreated   = "instance_created"
	ActionResponsesSaved    = "responses_saved"
	ActionInstanceSubmitted = "instance_submitted"
	ActionInstanceApproved  = "instance_approved"
	ActionInstanceRejected  = "instance_rejected"
	ActionInstanceRevised   = "instance_revised"
	ActionInstanceFinalized = "instance_finalized"
)

// Event is one append-only audit record. Events are never mutated or
// deleted; compliance reads depend on the before/after snapshots.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenant_id"`

	// Event classification
	Category string `bson:"category" json:"category"`
	Action   string `bson:"action" json:"action"`

	// What
	EntityType string             `bson:"entity_type" json:"entity_type"`
	EntityID   primitive.ObjectID `bson:"entity_id" json:"entity_id"`

	// Who
	ActorID primitive.ObjectID `bson:"actor_id" json:"actor_id"`

	// CorrelationID ties together the events of one logical operation
	// (e.g. the caseload adjustments and member update of one assignment).
	CorrelationID string `bson:"correlation_id,omitempty" json:"correlation_id,omitempty"`

	// State snapshots (varies by action)
	BeforeState map[string]string `bson:"before_state,omitempty" json:"before_state,omitempty"`
	AfterState  map[string]string `bson:"after_state,omitempty" json:"after_state,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	TenantID      *primitive.ObjectID
	EntityType    string
	EntityID      *primitive.ObjectID
	ActorID       *primitive.ObjectID
	Category      string
	Action        string
	CorrelationID string
	StartTime     *time.Time
	EndTime       *time.Time
	Limit         int64
	Offset        int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Query by time range (most recent first)
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		// Query by tenant
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by entity
		{
			Keys: bson.D{
				{Key: "entity_type", Value: 1},
				{Key: "entity_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by action
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "action", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by correlation
		{
			Keys: bson.D{{Key: "correlation_id", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log appends an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query retrieves audit events matching the given filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	query := buildQuery(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, buildQuery(filter))
}

func buildQuery(filter QueryFilter) bson.M {
	query := bson.M{}

	if filter.TenantID != nil {
		query["tenant_id"] = *filter.TenantID
	}
	if filter.EntityType != "" {
		query["entity_type"] = filter.EntityType
	}
	if filter.EntityID != nil {
		query["entity_id"] = *filter.EntityID
	}
	if filter.ActorID != nil {
		query["actor_id"] = *filter.ActorID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if filter.CorrelationID != "" {
		query["correlation_id"] = filter.CorrelationID
	}
	if filter.StartTime != nil || filter.EndTime != nil {
		timeQuery := bson.M{}
		if filter.StartTime != nil {
			timeQuery["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeQuery["$lte"] = *filter.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

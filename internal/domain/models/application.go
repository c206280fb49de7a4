// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application is a family's submission against a scheme.
//
// Status is a two-flag encoding of a three-state outcome:
//
//	processing=true,  accepted=false  → pending (initial)
//	processing=false, accepted=true   → accepted
//	processing=false, accepted=false  → rejected
//
// processing=true, accepted=true is unreachable under correct transitions
// and is treated as corrupt if ever observed.
type Application struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID  primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	SchemeID primitive.ObjectID `bson:"scheme_id" json:"scheme_id"`

	Processing bool `bson:"processing" json:"processing"`
	Accepted   bool `bson:"accepted" json:"accepted"`

	RejectReason string              `bson:"reject_reason,omitempty" json:"reject_reason,omitempty"`
	ProcessedBy  *primitive.ObjectID `bson:"processed_by,omitempty" json:"processed_by,omitempty"`
	// DecisionID tags the approve/reject event for audit correlation.
	DecisionID string `bson:"decision_id,omitempty" json:"decision_id,omitempty"`

	Details []ApplicationDetail `bson:"details" json:"details"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ApplicationDetail is one submitted field/value pair.
type ApplicationDetail struct {
	Field string `bson:"field" json:"field"`
	Data  string `bson:"data" json:"data"`
}

// Outcome labels.
const (
	OutcomeProcessing = "processing"
	OutcomeAccepted   = "accepted"
	OutcomeRejected   = "rejected"
	OutcomeInvalid    = "invalid"
)

// Outcome returns "processing", "accepted", or "rejected" for display and
// aggregation. The invalid (true,true) combination reports "invalid".
func (a *Application) Outcome() string {
	switch {
	case a.Processing && a.Accepted:
		return OutcomeInvalid
	case a.Processing:
		return OutcomeProcessing
	case a.Accepted:
		return OutcomeAccepted
	default:
		return OutcomeRejected
	}
}

// OutcomeCounts aggregates applications by outcome. The three buckets always
// sum to the total number of applications in scope.
type OutcomeCounts struct {
	Processing int64 `bson:"processing" json:"processing"`
	Accepted   int64 `bson:"accepted" json:"accepted"`
	Rejected   int64 `bson:"rejected" json:"rejected"`
}

// Total is the sum of the three outcome buckets.
func (c OutcomeCounts) Total() int64 {
	return c.Processing + c.Accepted + c.Rejected
}

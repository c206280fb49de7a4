// internal/domain/models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department groups officers and the schemes they administer.
// Names are unique across the collection.
type Department struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	OfficerIDs []primitive.ObjectID `bson:"officer_ids,omitempty" json:"officer_ids,omitempty"`
	SchemeIDs  []primitive.ObjectID `bson:"scheme_ids,omitempty" json:"scheme_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

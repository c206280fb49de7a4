// internal/domain/models/scheme.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scheme is a benefit program. RequiredFields declares the exact field names
// an application must supply; submissions are validated set-for-set against
// it. The field set should not change once applications exist.
type Scheme struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description" json:"description"`
	Steps          []SchemeStep       `bson:"steps,omitempty" json:"steps,omitempty"`
	RequiredFields []string           `bson:"required_fields" json:"required_fields"`
	DepartmentID   primitive.ObjectID `bson:"department_id" json:"department_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SchemeStep is one entry in a scheme's ordered how-to-apply guidance.
type SchemeStep struct {
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

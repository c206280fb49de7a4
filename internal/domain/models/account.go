// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account roles. Every account document carries exactly one of these and the
// role never changes after registration.
const (
	RoleAdmin     = "admin"
	RoleOfficer   = "officer"
	RolePersonnel = "personnel"
	RoleFamily    = "family"
)

// Relationships a family member may declare toward the family head.
const (
	RelationSelf    = "self"
	RelationSpouse  = "spouse"
	RelationChild   = "child"
	RelationParent  = "parent"
	RelationSibling = "sibling"
	RelationOther   = "other"
)

// Account represents all four account kinds in the accounts collection,
// discriminated by Role. Usernames are unique per role, not globally:
// the (role, username) pair is the login identity.
//
// Variant-specific data lives in the optional embedded documents below;
// exactly one of them is populated according to Role (Admin uses
// DepartmentIDs directly).
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`

	// Admin: departments this admin owns.
	DepartmentIDs []primitive.ObjectID `bson:"department_ids,omitempty" json:"department_ids,omitempty"`

	// Officer fields.
	DepartmentID            *primitive.ObjectID  `bson:"department_id,omitempty" json:"department_id,omitempty"`
	ProcessedApplicationIDs []primitive.ObjectID `bson:"processed_application_ids,omitempty" json:"processed_application_ids,omitempty"`

	// Personnel fields.
	Personnel *PersonnelProfile `bson:"personnel,omitempty" json:"personnel,omitempty"`

	// Family fields.
	Family *FamilyProfile `bson:"family,omitempty" json:"family,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// PersonnelProfile is the service record attached to a personnel account.
type PersonnelProfile struct {
	FullName      string    `bson:"full_name" json:"full_name"`
	ServiceNumber string    `bson:"service_number" json:"service_number"`
	Rank          string    `bson:"rank" json:"rank"`
	Unit          string    `bson:"unit" json:"unit"`
	JoinDate      time.Time `bson:"join_date" json:"join_date"`

	// FamilyHead is the declared head-of-family pair that a family account
	// must present verbatim when redeeming this personnel's family code.
	FamilyHead *FamilyHead `bson:"family_head,omitempty" json:"family_head,omitempty"`

	// FamilyCode is the currently active linkage code. Empty until the
	// personnel issues one; reissue overwrites it.
	FamilyCode string `bson:"family_code,omitempty" json:"family_code,omitempty"`
}

// FamilyHead identifies the head of a personnel's family.
type FamilyHead struct {
	FullName     string `bson:"full_name" json:"full_name"`
	AdhaarNumber string `bson:"adhaar_number" json:"adhaar_number"`
}

// FamilyProfile is the data attached to a family account. FamilyCode is the
// code that was redeemed at signup and is immutable thereafter.
type FamilyProfile struct {
	FamilyCode string         `bson:"family_code" json:"family_code"`
	FamilyHead FamilyHead     `bson:"family_head" json:"family_head"`
	Members    []FamilyMember `bson:"members,omitempty" json:"members,omitempty"`
}

// FamilyMember is one registered member of a family.
type FamilyMember struct {
	Name         string `bson:"name" json:"name"`
	AdhaarNumber string `bson:"adhaar_number" json:"adhaar_number"`
	Relationship string `bson:"relationship" json:"relationship"`
}

// ValidRole reports whether role names one of the four account kinds.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOfficer, RolePersonnel, RoleFamily:
		return true
	}
	return false
}

// ValidRelationship reports whether rel is an accepted family relationship.
func ValidRelationship(rel string) bool {
	switch rel {
	case RelationSelf, RelationSpouse, RelationChild, RelationParent, RelationSibling, RelationOther:
		return true
	}
	return false
}

// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the principal's role (lowercased), name, Mongo ObjectID,
// and a found flag. If no principal is present or the account ID is
// malformed it returns "visitor", "", NilObjectID, false; ok=true always
// means a valid, authenticated principal with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, accountID primitive.ObjectID, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	accountID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		// Malformed account ID in session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(u.Role), u.Name, accountID, true
}

// IsOfficer reports whether the current request's principal is an officer.
func IsOfficer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "officer"
}

// CanDecide reports whether the principal may decide applications
// (officers and admins).
func CanDecide(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "officer" || role == "admin")
}

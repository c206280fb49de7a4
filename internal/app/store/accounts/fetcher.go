package accountstore

import (
	"context"

	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"github.com/sainikhub/sainikhub/internal/app/system/normalize"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.AccountFetcher: it resolves a session's
// (role, accountID) pair into a fresh principal on every request, so a
// deleted account's session degrades to unauthenticated immediately.
type Fetcher struct {
	c *mongo.Collection
}

// NewFetcher creates an AccountFetcher over the accounts collection.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{c: db.Collection("accounts")}
}

// FetchAccount returns nil when the account does not exist under that role,
// the ID is malformed, the role tag is unknown, or any error occurs. A nil
// return means "treat the session as unauthenticated", never a fault.
func (f *Fetcher) FetchAccount(ctx context.Context, role, accountID string) *auth.SessionUser {
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	proj := options.FindOne().SetProjection(bson.M{
		"_id":                 1,
		"username":            1,
		"role":                1,
		"personnel.full_name": 1,
		"family.family_head":  1,
	})

	var acct models.Account
	if err := f.c.FindOne(ctx, bson.M{"_id": oid, "role": role}, proj).Decode(&acct); err != nil {
		return nil
	}

	name := acct.Username
	switch {
	case acct.Role == models.RolePersonnel && acct.Personnel != nil:
		name = acct.Personnel.FullName
	case acct.Role == models.RoleFamily && acct.Family != nil:
		name = acct.Family.FamilyHead.FullName
	}

	return &auth.SessionUser{
		ID:   acct.ID.Hex(),
		Name: name,
		Role: normalize.Role(acct.Role),
	}
}

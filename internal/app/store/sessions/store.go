// Package sessionstore persists login sessions in the sessions collection.
// Each record maps an opaque UUID to exactly one {account_id, role} pair;
// deleting the record invalidates every cookie carrying its ID.
package sessionstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionTTL bounds how long a session stays valid without a fresh login.
const sessionTTL = 7 * 24 * time.Hour

type record struct {
	ID        string    `bson:"_id"`
	AccountID string    `bson:"account_id"`
	Role      string    `bson:"role"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Store manages the sessions collection. It satisfies auth.SessionBackend.
type Store struct {
	c *mongo.Collection
}

// New creates a sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// EnsureIndexes creates the TTL index that reaps expired sessions.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().
			SetName("idx_sessions_expiry").
			SetExpireAfterSeconds(0),
	})
	return err
}

// Create issues a new session for the account and returns its opaque ID.
func (s *Store) Create(ctx context.Context, accountID, role string) (string, error) {
	now := time.Now().UTC()
	rec := record{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Lookup resolves a session ID to its {accountID, role} pair. Missing,
// expired, or undecodable records all read as "no session".
func (s *Store) Lookup(ctx context.Context, sessionID string) (string, string, bool) {
	var rec record
	if err := s.c.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&rec); err != nil {
		return "", "", false
	}
	// The TTL reaper runs periodically, so an expired record may linger.
	if time.Now().UTC().After(rec.ExpiresAt) {
		return "", "", false
	}
	return rec.AccountID, rec.Role, true
}

// Delete removes a session record. Deleting an unknown ID is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

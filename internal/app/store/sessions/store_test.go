package sessionstore_test

import (
	"testing"
	"time"

	sessionstore "github.com/sainikhub/sainikhub/internal/app/store/sessions"
	"github.com/sainikhub/sainikhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateLookupDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := sessionstore.New(db)

	accountID := primitive.NewObjectID().Hex()
	id, err := store.Create(ctx, accountID, "personnel")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("expected an opaque session ID")
	}

	gotAccount, gotRole, ok := store.Lookup(ctx, id)
	if !ok {
		t.Fatal("expected session to resolve")
	}
	if gotAccount != accountID || gotRole != "personnel" {
		t.Errorf("resolved to %q/%q", gotAccount, gotRole)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, ok := store.Lookup(ctx, id); ok {
		t.Error("deleted session must not resolve")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, id); err != nil {
		t.Errorf("repeat Delete: %v", err)
	}
}

func TestLookupUnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := sessionstore.New(db)

	if _, _, ok := store.Lookup(ctx, "never-issued"); ok {
		t.Error("unknown session ID must not resolve")
	}
}

func TestLookupExpiredSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := sessionstore.New(db)

	// The TTL reaper is periodic, so Lookup must reject lingering expired
	// records on its own.
	_, err := db.Collection("sessions").InsertOne(ctx, bson.M{
		"_id":        "expired-session",
		"account_id": primitive.NewObjectID().Hex(),
		"role":       "family",
		"created_at": time.Now().UTC().Add(-8 * 24 * time.Hour),
		"expires_at": time.Now().UTC().Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("insert expired record: %v", err)
	}

	if _, _, ok := store.Lookup(ctx, "expired-session"); ok {
		t.Error("expired session must not resolve")
	}
}

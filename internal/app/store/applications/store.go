// Package applicationstore manages the applications collection.
//
// An application's lifecycle lives in two flags: processing=true means
// pending, processing=false splits into accepted and rejected. Decisions are
// single-shot: the first approve or reject wins and later attempts return
// ErrAlreadyDecided. The gate is the processing:true clause in the decision
// filter, so two concurrent officers can never both win.
package applicationstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sainikhub/sainikhub/internal/app/system/htmlsanitize"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned by lookups and decisions against a missing
	// application.
	ErrNotFound = errors.New("application not found")
	// ErrAlreadyDecided is returned when a decision targets an application
	// that has already been approved or rejected.
	ErrAlreadyDecided = errors.New("application already decided")
	// ErrFieldMismatch is returned when a submission's detail fields do not
	// exactly match the scheme's required field set.
	ErrFieldMismatch = errors.New("application fields do not match scheme requirements")
	// ErrNoApplicationOnFile is returned by the similar-outcomes query when
	// the caller has never applied to anything.
	ErrNoApplicationOnFile = errors.New("no application on file")
	// ErrValidation wraps field validation failures.
	ErrValidation = errors.New("validation failed")
)

// Store manages the applications collection.
type Store struct {
	c *mongo.Collection
}

// New creates an applications Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// EnsureIndexes creates the owner and scheme indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "owner_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_applications_owner_created"),
		},
		{
			Keys:    bson.D{{Key: "scheme_id", Value: 1}},
			Options: options.Index().SetName("idx_applications_scheme"),
		},
	})
	return err
}

// Submit files a pending application against a scheme. The submitted detail
// fields must exactly match the scheme's required field set, compared
// case-insensitively on trimmed names. Duplicate submissions by the same
// family against the same scheme are allowed; each is decided on its own.
func (s *Store) Submit(ctx context.Context, ownerID primitive.ObjectID, scheme *models.Scheme, details []models.ApplicationDetail) (models.Application, error) {
	if ownerID.IsZero() {
		return models.Application{}, fmt.Errorf("%w: owner required", ErrValidation)
	}
	if scheme == nil {
		return models.Application{}, fmt.Errorf("%w: scheme required", ErrValidation)
	}

	cleaned, err := matchDetails(scheme.RequiredFields, details)
	if err != nil {
		return models.Application{}, err
	}

	now := time.Now().UTC()
	app := models.Application{
		ID:         primitive.NewObjectID(),
		OwnerID:    ownerID,
		SchemeID:   scheme.ID,
		Processing: true,
		Accepted:   false,
		Details:    cleaned,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.c.InsertOne(ctx, app); err != nil {
		return models.Application{}, err
	}
	return app, nil
}

// matchDetails checks the submitted details against the required field set.
// Every required field must appear exactly once and no extra fields are
// allowed; a name problem is ErrFieldMismatch, while a matching field with an
// empty value is ErrValidation so the caller can name the field. The returned
// details carry the scheme's canonical field spelling in the scheme's order.
func matchDetails(required []string, details []models.ApplicationDetail) ([]models.ApplicationDetail, error) {
	byField := make(map[string]string, len(details))
	for _, d := range details {
		key := strings.ToLower(strings.TrimSpace(d.Field))
		if key == "" {
			return nil, ErrFieldMismatch
		}
		if _, dup := byField[key]; dup {
			return nil, ErrFieldMismatch
		}
		byField[key] = strings.TrimSpace(d.Data)
	}

	if len(byField) != len(required) {
		return nil, ErrFieldMismatch
	}

	cleaned := make([]models.ApplicationDetail, 0, len(required))
	for _, field := range required {
		data, present := byField[strings.ToLower(field)]
		if !present {
			return nil, ErrFieldMismatch
		}
		if data == "" {
			return nil, fmt.Errorf("%w: field %q requires a value", ErrValidation, field)
		}
		cleaned = append(cleaned, models.ApplicationDetail{Field: field, Data: data})
	}
	return cleaned, nil
}

// GetByID loads an application.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var app models.Application
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Approve marks a pending application accepted. Exactly one caller can win;
// everyone else gets ErrAlreadyDecided.
func (s *Store) Approve(ctx context.Context, id, officerID primitive.ObjectID) (*models.Application, error) {
	return s.decide(ctx, id, bson.M{
		"processing":   false,
		"accepted":     true,
		"processed_by": officerID,
		"decision_id":  uuid.NewString(),
		"updated_at":   time.Now().UTC(),
	})
}

// DefaultRejectReason is stored when a rejection carries no usable reason.
const DefaultRejectReason = "no reason provided"

// Reject marks a pending application rejected with a sanitized reason. An
// empty or markup-only reason falls back to DefaultRejectReason.
func (s *Store) Reject(ctx context.Context, id, officerID primitive.ObjectID, reason string) (*models.Application, error) {
	reason = strings.TrimSpace(htmlsanitize.StripTags(reason))
	if reason == "" {
		reason = DefaultRejectReason
	}
	return s.decide(ctx, id, bson.M{
		"processing":    false,
		"accepted":      false,
		"reject_reason": reason,
		"processed_by":  officerID,
		"decision_id":   uuid.NewString(),
		"updated_at":    time.Now().UTC(),
	})
}

func (s *Store) decide(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Application, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.Application
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "processing": true},
		bson.M{"$set": set},
		opts,
	).Decode(&app)
	if err == mongo.ErrNoDocuments {
		// Missed the gate: either the application is gone or someone
		// already decided it.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}
		return nil, ErrAlreadyDecided
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByOwner returns a family's applications, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ListSimilar returns other families' applications whose accepted flag
// matches the caller's most recent application. A caller with no application
// on file gets ErrNoApplicationOnFile.
func (s *Store) ListSimilar(ctx context.Context, ownerID primitive.ObjectID) ([]models.Application, error) {
	latestOpts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var latest models.Application
	err := s.c.FindOne(ctx, bson.M{"owner_id": ownerID}, latestOpts).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoApplicationOnFile
	}
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{
		"accepted": latest.Accepted,
		"owner_id": bson.M{"$ne": ownerID},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CountByOutcome tallies a scheme's applications into pending, accepted and
// rejected in a single aggregation, so the three buckets always sum to the
// collection's view of the total at one point in time. A zero schemeID
// tallies every application regardless of scheme.
func (s *Store) CountByOutcome(ctx context.Context, schemeID primitive.ObjectID) (models.OutcomeCounts, error) {
	match := bson.M{}
	if !schemeID.IsZero() {
		match["scheme_id"] = schemeID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"processing": "$processing",
				"accepted":   "$accepted",
			},
			"n": bson.M{"$sum": 1},
		}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.OutcomeCounts{}, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			Processing bool `bson:"processing"`
			Accepted   bool `bson:"accepted"`
		} `bson:"_id"`
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return models.OutcomeCounts{}, err
	}

	var counts models.OutcomeCounts
	for _, row := range rows {
		switch {
		case row.ID.Processing:
			counts.Processing += row.N
		case row.ID.Accepted:
			counts.Accepted += row.N
		default:
			counts.Rejected += row.N
		}
	}
	return counts, nil
}

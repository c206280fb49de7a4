// Package schemestore manages the schemes collection. A scheme is a benefit
// programme published by a department: a title, rich-text description and
// steps, and the exact set of fields an application must supply.
package schemestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sainikhub/sainikhub/internal/app/system/htmlsanitize"
	"github.com/sainikhub/sainikhub/internal/app/system/normalize"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("scheme not found")
	// ErrValidation wraps field validation failures.
	ErrValidation = errors.New("validation failed")
)

// Store manages the schemes collection.
type Store struct {
	c *mongo.Collection
}

// New creates a schemes Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schemes")}
}

// EnsureIndexes creates the department index used by per-department listings.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "department_id", Value: 1}},
		Options: options.Index().SetName("idx_schemes_department"),
	})
	return err
}

// CreateInput carries the fields needed to publish a scheme.
type CreateInput struct {
	Title          string
	Description    string
	Steps          []string
	RequiredFields []string
	DepartmentID   primitive.ObjectID
}

// Create publishes a scheme. Description and step content are sanitized as
// user-generated HTML; required field names are trimmed and deduplicated
// case-insensitively, preserving first-seen spelling and order.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Scheme, error) {
	title := normalize.Name(in.Title)
	if title == "" {
		return models.Scheme{}, fmt.Errorf("%w: title required", ErrValidation)
	}
	if in.DepartmentID.IsZero() {
		return models.Scheme{}, fmt.Errorf("%w: department required", ErrValidation)
	}

	fields := dedupeFields(in.RequiredFields)
	if len(fields) == 0 {
		return models.Scheme{}, fmt.Errorf("%w: at least one required field", ErrValidation)
	}

	now := time.Now().UTC()
	steps := make([]models.SchemeStep, 0, len(in.Steps))
	for _, content := range in.Steps {
		content = strings.TrimSpace(htmlsanitize.Sanitize(content))
		if content == "" {
			continue
		}
		steps = append(steps, models.SchemeStep{Content: content, Timestamp: now})
	}

	scheme := models.Scheme{
		ID:             primitive.NewObjectID(),
		Title:          title,
		Description:    htmlsanitize.Sanitize(in.Description),
		Steps:          steps,
		RequiredFields: fields,
		DepartmentID:   in.DepartmentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, scheme); err != nil {
		return models.Scheme{}, err
	}
	return scheme, nil
}

func dedupeFields(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fields = append(fields, f)
	}
	return fields
}

// GetByID loads a scheme.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Scheme, error) {
	var scheme models.Scheme
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&scheme)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scheme, nil
}

// List returns all schemes, newest first.
func (s *Store) List(ctx context.Context) ([]models.Scheme, error) {
	return s.list(ctx, bson.M{})
}

// ListByDepartment returns the schemes a department administers, newest first.
func (s *Store) ListByDepartment(ctx context.Context, deptID primitive.ObjectID) ([]models.Scheme, error) {
	return s.list(ctx, bson.M{"department_id": deptID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Scheme, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var schemes []models.Scheme
	if err := cur.All(ctx, &schemes); err != nil {
		return nil, err
	}
	return schemes, nil
}

// AddStep appends a progress note to a scheme's step log.
func (s *Store) AddStep(ctx context.Context, id primitive.ObjectID, content string) error {
	content = strings.TrimSpace(htmlsanitize.Sanitize(content))
	if content == "" {
		return fmt.Errorf("%w: step content required", ErrValidation)
	}

	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"steps": models.SchemeStep{Content: content, Timestamp: now}},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Package departmentstore manages the departments collection. Departments
// group officers and the schemes they administer; names are unique.
package departmentstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/sainikhub/sainikhub/internal/app/system/normalize"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateName is returned when a department with the name exists.
	ErrDuplicateName = errors.New("a department with this name already exists")
	// ErrNotFound is returned by lookups and deletes that miss.
	ErrNotFound = errors.New("department not found")
	// ErrHasSchemes is returned when deleting a department that still owns
	// schemes; schemes must be reassigned or removed first.
	ErrHasSchemes = errors.New("department still has schemes")
	// ErrValidation wraps field validation failures.
	ErrValidation = errors.New("validation failed")
)

// Store manages the departments collection.
type Store struct {
	c *mongo.Collection
}

// New creates a departments Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("departments")}
}

// EnsureIndexes creates the unique name index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_departments_name").SetUnique(true),
	})
	return err
}

// Create inserts a new department.
func (s *Store) Create(ctx context.Context, name string) (models.Department, error) {
	name = normalize.Name(name)
	if name == "" {
		return models.Department{}, fmt.Errorf("%w: name required", ErrValidation)
	}

	now := time.Now().UTC()
	dept := models.Department{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, dept); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Department{}, ErrDuplicateName
		}
		return models.Department{}, err
	}
	return dept, nil
}

// GetByID loads a department.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var dept models.Department
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&dept)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// List returns all departments sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var depts []models.Department
	if err := cur.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

// Delete removes a department that owns no schemes. The scheme guard is in
// the delete filter so a concurrent AddScheme cannot slip past it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id": id,
		"$or": []bson.M{
			{"scheme_ids": bson.M{"$exists": false}},
			{"scheme_ids": bson.M{"$size": 0}},
		},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		// Either missing or still holding schemes; look to tell them apart.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrHasSchemes
	}
	return nil
}

// AddOfficer records an officer in the department's roster.
func (s *Store) AddOfficer(ctx context.Context, deptID, officerID primitive.ObjectID) error {
	return s.addRef(ctx, deptID, "officer_ids", officerID)
}

// AddScheme records a scheme under the department.
func (s *Store) AddScheme(ctx context.Context, deptID, schemeID primitive.ObjectID) error {
	return s.addRef(ctx, deptID, "scheme_ids", schemeID)
}

func (s *Store) addRef(ctx context.Context, deptID primitive.ObjectID, field string, ref primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": deptID},
		bson.M{
			"$addToSet": bson.M{field: ref},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
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

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insertAccount(ctx context.Context, acct models.Account) models.Account {
	f.t.Helper()
	if _, err := f.db.Collection("accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test account: %v", err)
	}
	return acct
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	// Low cost keeps fixture creation fast; production hashing uses cost 12.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	return string(hash)
}

// CreateAdminAccount creates a test admin account.
func (f *Fixtures) CreateAdminAccount(ctx context.Context, username, password string) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, models.Account{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hashPassword(f.t, password),
		Role:         models.RoleAdmin,
	})
}

// CreateOfficerAccount creates a test officer account in the given department.
func (f *Fixtures) CreateOfficerAccount(ctx context.Context, username, password string, deptID primitive.ObjectID) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, models.Account{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hashPassword(f.t, password),
		Role:         models.RoleOfficer,
		DepartmentID: &deptID,
	})
}

// CreatePersonnelAccount creates a test personnel account with a family head
// already nominated.
func (f *Fixtures) CreatePersonnelAccount(ctx context.Context, username, password, fullName, serviceNumber string) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, models.Account{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hashPassword(f.t, password),
		Role:         models.RolePersonnel,
		Personnel: &models.PersonnelProfile{
			FullName:      fullName,
			ServiceNumber: serviceNumber,
			Rank:          "Havildar",
			Unit:          "14 Grenadiers",
			JoinDate:      time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC),
			FamilyHead: &models.FamilyHead{
				FullName:     "Sunita " + fullName,
				AdhaarNumber: "999988887777",
			},
		},
	})
}

// CreateFamilyAccount creates a test family account linked through the given
// family code.
func (f *Fixtures) CreateFamilyAccount(ctx context.Context, username, password, familyCode string) models.Account {
	f.t.Helper()
	return f.insertAccount(ctx, models.Account{
		ID:           primitive.NewObjectID(),
		Username:     username,
		PasswordHash: hashPassword(f.t, password),
		Role:         models.RoleFamily,
		Family: &models.FamilyProfile{
			FamilyCode: familyCode,
			FamilyHead: models.FamilyHead{
				FullName:     "Test Family Head",
				AdhaarNumber: "999988887777",
			},
			Members: []models.FamilyMember{
				{Name: "Test Family Head", AdhaarNumber: "999988887777", Relationship: models.RelationSelf},
			},
		},
	})
}

// CreateDepartment creates a test department.
func (f *Fixtures) CreateDepartment(ctx context.Context, name string) models.Department {
	f.t.Helper()

	now := time.Now().UTC()
	dept := models.Department{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("departments").InsertOne(ctx, dept); err != nil {
		f.t.Fatalf("failed to create test department: %v", err)
	}
	return dept
}

// CreateScheme creates a test scheme under the given department.
func (f *Fixtures) CreateScheme(ctx context.Context, title string, deptID primitive.ObjectID, requiredFields ...string) models.Scheme {
	f.t.Helper()

	if len(requiredFields) == 0 {
		requiredFields = []string{"service_number", "bank_account"}
	}
	now := time.Now().UTC()
	scheme := models.Scheme{
		ID:             primitive.NewObjectID(),
		Title:          title,
		Description:    "Test scheme description",
		RequiredFields: requiredFields,
		DepartmentID:   deptID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("schemes").InsertOne(ctx, scheme); err != nil {
		f.t.Fatalf("failed to create test scheme: %v", err)
	}
	return scheme
}

// CreatePendingApplication creates a test application awaiting a decision.
func (f *Fixtures) CreatePendingApplication(ctx context.Context, ownerID, schemeID primitive.ObjectID) models.Application {
	f.t.Helper()

	now := time.Now().UTC()
	app := models.Application{
		ID:         primitive.NewObjectID(),
		OwnerID:    ownerID,
		SchemeID:   schemeID,
		Processing: true,
		Details: []models.ApplicationDetail{
			{Field: "service_number", Data: "SN-0001"},
			{Field: "bank_account", Data: "1234567890"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("applications").InsertOne(ctx, app); err != nil {
		f.t.Fatalf("failed to create test application: %v", err)
	}
	return app
}

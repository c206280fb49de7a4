// Package accountstore persists the four account variants (admin, officer,
// personnel, family) in a single accounts collection discriminated by role,
// and owns credential hashing and verification.
//
// The (role, username) pair is the login identity: usernames are unique per
// role, not globally. Service numbers are unique across all personnel.
package accountstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/sainikhub/sainikhub/internal/app/system/familycode"
	"github.com/sainikhub/sainikhub/internal/app/system/normalize"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var (
	// ErrDuplicateUsername is returned when the (role, username) pair is taken.
	ErrDuplicateUsername = errors.New("an account with this username already exists")
	// ErrDuplicateServiceNumber is returned when another personnel record
	// already carries the service number.
	ErrDuplicateServiceNumber = errors.New("a personnel record with this service number already exists")
	// ErrInvalidCredentials is returned on any login failure. It never says
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLinkageNotFound is returned when no personnel record matches the
	// (code, full name, adhaar) triple. Deliberately undifferentiated.
	ErrLinkageNotFound = errors.New("family code details do not match any personnel record")
	// ErrValidation wraps variant-specific required-field failures.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("account not found")
)

// Store manages the accounts collection.
type Store struct {
	c *mongo.Collection
}

// New creates an accounts Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// EnsureIndexes creates the uniqueness indexes the identity invariants
// depend on: (role, username) unique, and service_number unique among
// personnel documents that carry one.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "username", Value: 1}},
			Options: options.Index().SetName("idx_accounts_role_username").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "personnel.service_number", Value: 1}},
			Options: options.Index().
				SetName("idx_accounts_service_number").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"personnel.service_number": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "personnel.family_code", Value: 1}},
			Options: options.Index().SetName("idx_accounts_family_code"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

/* ── registration ──────────────────────────────────────────────────────── */

// CreateAdmin registers a new admin account.
func (s *Store) CreateAdmin(ctx context.Context, username, password string) (models.Account, error) {
	acct := models.Account{Role: models.RoleAdmin}
	return s.create(ctx, acct, username, password)
}

// CreateOfficer registers a new officer scoped to exactly one department.
func (s *Store) CreateOfficer(ctx context.Context, username, password string, departmentID primitive.ObjectID) (models.Account, error) {
	if departmentID.IsZero() {
		return models.Account{}, fmt.Errorf("%w: officer requires a department", ErrValidation)
	}
	acct := models.Account{
		Role:         models.RoleOfficer,
		DepartmentID: &departmentID,
	}
	return s.create(ctx, acct, username, password)
}

// CreatePersonnel registers a new personnel account with its service record.
func (s *Store) CreatePersonnel(ctx context.Context, username, password string, profile models.PersonnelProfile) (models.Account, error) {
	profile.FullName = normalize.Name(profile.FullName)
	profile.ServiceNumber = normalize.Name(profile.ServiceNumber)
	profile.Rank = normalize.Name(profile.Rank)
	profile.Unit = normalize.Name(profile.Unit)

	switch {
	case profile.FullName == "":
		return models.Account{}, fmt.Errorf("%w: full name required", ErrValidation)
	case profile.ServiceNumber == "":
		return models.Account{}, fmt.Errorf("%w: service number required", ErrValidation)
	case profile.Rank == "":
		return models.Account{}, fmt.Errorf("%w: rank required", ErrValidation)
	case profile.Unit == "":
		return models.Account{}, fmt.Errorf("%w: unit or regiment required", ErrValidation)
	case profile.JoinDate.IsZero():
		return models.Account{}, fmt.Errorf("%w: join date required", ErrValidation)
	}

	if profile.FamilyHead != nil {
		profile.FamilyHead.FullName = normalize.Name(profile.FamilyHead.FullName)
		profile.FamilyHead.AdhaarNumber = normalize.Adhaar(profile.FamilyHead.AdhaarNumber)
		if profile.FamilyHead.FullName == "" || profile.FamilyHead.AdhaarNumber == "" {
			return models.Account{}, fmt.Errorf("%w: family head declaration needs full name and adhaar number", ErrValidation)
		}
	}
	// Codes are only issued through IssueFamilyCode.
	profile.FamilyCode = ""

	acct := models.Account{
		Role:      models.RolePersonnel,
		Personnel: &profile,
	}
	return s.create(ctx, acct, username, password)
}

// CreateFamily registers a family account. The caller must have verified
// the linkage first (RedeemFamilyCode); profile carries the redeemed code
// and the matched family head.
func (s *Store) CreateFamily(ctx context.Context, username, password string, profile models.FamilyProfile) (models.Account, error) {
	if profile.FamilyCode == "" {
		return models.Account{}, fmt.Errorf("%w: family code required", ErrValidation)
	}
	for _, m := range profile.Members {
		if !models.ValidRelationship(m.Relationship) {
			return models.Account{}, fmt.Errorf("%w: unknown relationship %q", ErrValidation, m.Relationship)
		}
	}
	acct := models.Account{
		Role:   models.RoleFamily,
		Family: &profile,
	}
	return s.create(ctx, acct, username, password)
}

func (s *Store) create(ctx context.Context, acct models.Account, username, password string) (models.Account, error) {
	acct.Username = normalize.Username(username)
	if acct.Username == "" {
		return models.Account{}, fmt.Errorf("%w: username required", ErrValidation)
	}
	if len(password) < 8 {
		return models.Account{}, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.Account{}, err
	}
	acct.PasswordHash = string(hash)

	acct.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, acct); err != nil {
		if wafflemongo.IsDup(err) {
			// Two unique indexes can fire; the message tells them apart.
			if acct.Role == models.RolePersonnel && isServiceNumberDup(err) {
				return models.Account{}, ErrDuplicateServiceNumber
			}
			return models.Account{}, ErrDuplicateUsername
		}
		return models.Account{}, err
	}
	return acct, nil
}

func isServiceNumberDup(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 && strings.Contains(e.Message, "idx_accounts_service_number") {
				return true
			}
		}
	}
	return false
}

/* ── credential verification ───────────────────────────────────────────── */

// dummyHash is compared against when the username does not exist, so a miss
// costs the same bcrypt work as a hit and timing does not leak whether the
// username is registered.
var (
	dummyOnce sync.Once
	dummyHash []byte
)

func getDummyHash() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sainikhub-timing-equalizer"), bcryptCost)
	})
	return dummyHash
}

// VerifyCredential checks a (role, username, password) triple and returns
// the account on success. All failures return ErrInvalidCredentials.
func (s *Store) VerifyCredential(ctx context.Context, role, username, password string) (*models.Account, error) {
	role = normalize.Role(role)
	username = normalize.Username(username)

	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{"role": role, "username": username}).Decode(&acct)
	switch {
	case err == mongo.ErrNoDocuments:
		// Burn the same hashing cost as a real comparison.
		_ = bcrypt.CompareHashAndPassword(getDummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &acct, nil
}

/* ── lookups ───────────────────────────────────────────────────────────── */

// GetByID loads an account by role and ObjectID.
func (s *Store) GetByID(ctx context.Context, role string, id primitive.ObjectID) (*models.Account, error) {
	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{"_id": id, "role": normalize.Role(role)}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetByUsername loads an account by role and username.
func (s *Store) GetByUsername(ctx context.Context, role, username string) (*models.Account, error) {
	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{
		"role":     normalize.Role(role),
		"username": normalize.Username(username),
	}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

/* ── family linkage ────────────────────────────────────────────────────── */

// IssueFamilyCode generates a fresh code and writes it onto the personnel
// record, overwriting (and thereby invalidating) any prior code. Retries on
// the unlikely collision with another personnel's active code.
func (s *Store) IssueFamilyCode(ctx context.Context, personnelID primitive.ObjectID) (string, error) {
	const maxAttempts = 5
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := familycode.New()
		if err != nil {
			return "", err
		}

		// Collision check against active codes. The window between check and
		// set is tolerable: codes are only honored by exact triple match, and
		// a reissue overwrites.
		err = s.c.FindOne(ctx, bson.M{
			"role":                  models.RolePersonnel,
			"personnel.family_code": code,
		}).Err()
		if err == nil {
			continue // taken, draw again
		}
		if err != mongo.ErrNoDocuments {
			return "", err
		}

		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": personnelID, "role": models.RolePersonnel},
			bson.M{"$set": bson.M{
				"personnel.family_code": code,
				"updated_at":            time.Now().UTC(),
			}},
		)
		if err != nil {
			return "", err
		}
		if res.MatchedCount == 0 {
			return "", ErrNotFound
		}
		return code, nil
	}
	return "", errors.New("could not generate a unique family code")
}

// RedeemFamilyCode finds the personnel whose active code and declared family
// head match the claimed triple exactly. Any mismatch, whether code, name
// or adhaar, yields the same ErrLinkageNotFound so the response
// cannot be used to probe personnel identity data.
func (s *Store) RedeemFamilyCode(ctx context.Context, code, fullName, adhaarNumber string) (*models.Account, error) {
	code = normalize.FamilyCode(code)
	fullName = normalize.Name(fullName)
	adhaarNumber = normalize.Adhaar(adhaarNumber)

	if !familycode.Valid(code) || fullName == "" || adhaarNumber == "" {
		return nil, ErrLinkageNotFound
	}

	var acct models.Account
	err := s.c.FindOne(ctx, bson.M{
		"role":                                models.RolePersonnel,
		"personnel.family_code":               code,
		"personnel.family_head.full_name":     fullName,
		"personnel.family_head.adhaar_number": adhaarNumber,
	}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLinkageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

/* ── officer bookkeeping ───────────────────────────────────────────────── */

// RecordProcessedApplication appends an application to the officer's
// processed list. Admins have no such list; calls for admin IDs are no-ops.
func (s *Store) RecordProcessedApplication(ctx context.Context, officerID, applicationID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": officerID, "role": models.RoleOfficer},
		bson.M{
			"$addToSet": bson.M{"processed_application_ids": applicationID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// AddDepartmentToAdmin records ownership of a newly created department.
func (s *Store) AddDepartmentToAdmin(ctx context.Context, adminID, departmentID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": adminID, "role": models.RoleAdmin},
		bson.M{
			"$addToSet": bson.M{"department_ids": departmentID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

// PullDepartment removes every reference to a deleted department: it is
// pulled from all admins' ownership lists and unset on all officers scoped
// to it.
func (s *Store) PullDepartment(ctx context.Context, departmentID primitive.ObjectID) error {
	if _, err := s.c.UpdateMany(ctx,
		bson.M{"role": models.RoleAdmin, "department_ids": departmentID},
		bson.M{
			"$pull": bson.M{"department_ids": departmentID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	); err != nil {
		return err
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"role": models.RoleOfficer, "department_id": departmentID},
		bson.M{
			"$unset": bson.M{"department_id": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	return err
}

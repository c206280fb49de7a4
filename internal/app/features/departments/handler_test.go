package departments_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sainikhub/sainikhub/internal/app/features/departments"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"github.com/sainikhub/sainikhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*departments.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := errorsfeature.NewErrorLogger(logger)
	return departments.NewHandler(db, errLog, logger), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	admin := fixtures.CreateAdminAccount(ctx, "registrar", "longenough")

	req := httptest.NewRequest("POST", "/departments", strings.NewReader(`{"name":"Pension Cell"}`))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.TestUser{ID: admin.ID.Hex(), Name: "Registrar", Role: "admin"})
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created models.Department
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}

	// The creating admin now owns the department.
	var stored struct {
		DeptIDs []any `bson:"department_ids"`
	}
	if err := fixtures.DB().Collection("accounts").FindOne(ctx, bson.M{"_id": admin.ID}).Decode(&stored); err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if len(stored.DeptIDs) != 1 {
		t.Errorf("admin ownership list: got %v", stored.DeptIDs)
	}
}

func TestHandleDelete_CascadesIntoAccounts(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	dept := fixtures.CreateDepartment(ctx, "Pension Cell")
	officer := fixtures.CreateOfficerAccount(ctx, "gatekeeper", "longenough", dept.ID)

	req := httptest.NewRequest("DELETE", "/departments/"+dept.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", dept.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// The officer's department scope is gone.
	var stored bson.M
	if err := fixtures.DB().Collection("accounts").FindOne(ctx, bson.M{"_id": officer.ID}).Decode(&stored); err != nil {
		t.Fatalf("load officer: %v", err)
	}
	if _, has := stored["department_id"]; has {
		t.Error("officer still scoped to deleted department")
	}
}

func TestHandleDelete_RefusedWhileSchemesRemain(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	dept := fixtures.CreateDepartment(ctx, "Pension Cell")
	scheme := fixtures.CreateScheme(ctx, "Disability Pension", dept.ID)
	if _, err := fixtures.DB().Collection("departments").UpdateOne(ctx,
		bson.M{"_id": dept.ID},
		bson.M{"$addToSet": bson.M{"scheme_ids": scheme.ID}},
	); err != nil {
		t.Fatalf("attach scheme: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/departments/"+dept.ID.Hex(), nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", dept.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d: %s", http.StatusConflict, rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	if err := departmentstore.New(fixtures.DB()).EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fixtures.CreateDepartment(ctx, "Pension Cell")

	req := httptest.NewRequest("POST", "/departments", strings.NewReader(`{"name":"Pension Cell"}`))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	handler.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

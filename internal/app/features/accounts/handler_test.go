package accounts_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sainikhub/sainikhub/internal/app/features/accounts"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	sessionstore "github.com/sainikhub/sainikhub/internal/app/store/sessions"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"github.com/sainikhub/sainikhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*accounts.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	sessionMgr.SetSessionBackend(sessionstore.New(db))

	errLog := errorsfeature.NewErrorLogger(logger)
	handler := accounts.NewHandler(db, sessionMgr, errLog, logger)
	return handler, testutil.NewFixtures(t, db)
}

func registerReq(t *testing.T, variant, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/accounts/"+variant+"/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithChiURLParam(req, "variant", variant)
}

func TestHandleRegister_Admin(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	req := registerReq(t, "admin", `{"username":"Registrar","password":"sw0rdfish-9"}`)
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	// Password material must never appear in the response.
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("response leaks password material: %s", rec.Body.String())
	}

	count, err := fixtures.DB().Collection("accounts").CountDocuments(ctx, bson.M{"role": "admin", "username": "registrar"})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 admin account, got %d", count)
	}
}

func TestHandleRegister_UnknownVariant(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := registerReq(t, "superuser", `{"username":"x","password":"longenough"}`)
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleRegister_FamilyVariantRejected(t *testing.T) {
	handler, _ := newTestHandler(t)

	// Families must go through /family/signup and its linkage check.
	req := registerReq(t, "family", `{"username":"kin","password":"longenough"}`)
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestHandleRegister_PersonnelMissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := registerReq(t, "personnel", `{"username":"jawan","password":"longenough","full_name":"Arjun Singh"}`)
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}
	if response["error"] == "" {
		t.Error("expected an error message in the body")
	}
}

func TestHandleRegister_OfficerNeedsExistingDepartment(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	req := registerReq(t, "officer", `{"username":"gatekeeper","password":"longenough","department_id":"507f1f77bcf86cd799439011"}`)
	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown department: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	dept := fixtures.CreateDepartment(ctx, "Pension Cell")
	req = registerReq(t, "officer", `{"username":"gatekeeper","password":"longenough","department_id":"`+dept.ID.Hex()+`"}`)
	rec = httptest.NewRecorder()
	handler.HandleRegister(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	// The officer lands on the department roster.
	var stored struct {
		OfficerIDs []any `bson:"officer_ids"`
	}
	if err := fixtures.DB().Collection("departments").FindOne(ctx, bson.M{"_id": dept.ID}).Decode(&stored); err != nil {
		t.Fatalf("load department: %v", err)
	}
	if len(stored.OfficerIDs) != 1 {
		t.Errorf("expected 1 officer on roster, got %d", len(stored.OfficerIDs))
	}
}

func loginReq(t *testing.T, variant, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/accounts/"+variant+"/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return testutil.WithChiURLParam(req, "variant", variant)
}

func TestHandleLogin_SetsSessionCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, registerReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.HandleLogin(rec, loginReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}
	if response.Role != "admin" || response.ID == "" {
		t.Errorf("principal: got %+v", response)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie to be set")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, registerReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleLogin(rec, loginReq(t, "admin", `{"username":"registrar","password":"not-the-one"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleLogin_RoleScoped(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, registerReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}

	// The same credentials under another variant are not a login.
	rec = httptest.NewRecorder()
	handler.HandleLogin(rec, loginReq(t, "personnel", `{"username":"registrar","password":"sw0rdfish-9"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleLogout_DeletesServerSession(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx := testutil.TestContext(t)

	rec := httptest.NewRecorder()
	handler.HandleRegister(rec, registerReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.HandleLogin(rec, loginReq(t, "admin", `{"username":"registrar","password":"sw0rdfish-9"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()

	sessions := fixtures.DB().Collection("sessions")
	if n, err := sessions.CountDocuments(ctx, bson.M{}); err != nil || n != 1 {
		t.Fatalf("after login: %d session records (err=%v), want 1", n, err)
	}

	req := httptest.NewRequest("POST", "/accounts/admin/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req = testutil.WithChiURLParam(req, "variant", "admin")
	rec = httptest.NewRecorder()
	handler.HandleLogout(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: got %d", rec.Code)
	}

	// The record is gone, so any replayed copy of the cookie is dead.
	if n, err := sessions.CountDocuments(ctx, bson.M{}); err != nil || n != 0 {
		t.Errorf("after logout: %d session records (err=%v), want 0", n, err)
	}
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/accounts/admin/logout", nil)
	req = testutil.WithChiURLParam(req, "variant", "admin")
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

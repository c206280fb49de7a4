// Package accounts serves registration, login, and logout for all four
// account variants. The variant comes from the URL, so the same handlers
// cover admins, officers, personnel, and families; family registration is
// the exception and lives in the familysignup feature because it must
// redeem a linkage code first.
package accounts

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/normalize"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the account endpoints.
type Handler struct {
	Log         *zap.Logger
	Accounts    *accountstore.Store
	Departments *departmentstore.Store
	SessionMgr  *auth.SessionManager
	ErrLog      *errorsfeature.ErrorLogger
}

// NewHandler constructs an accounts Handler.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		Accounts:    accountstore.New(db),
		Departments: departmentstore.New(db),
		SessionMgr:  sessionMgr,
		ErrLog:      errLog,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Officer only.
	DepartmentID string `json:"department_id,omitempty"`

	// Personnel only.
	FullName      string        `json:"full_name,omitempty"`
	ServiceNumber string        `json:"service_number,omitempty"`
	Rank          string        `json:"rank,omitempty"`
	Unit          string        `json:"unit,omitempty"`
	JoinDate      time.Time     `json:"join_date,omitempty"`
	FamilyHead    *familyHeadIn `json:"family_head,omitempty"`
}

type familyHeadIn struct {
	FullName     string `json:"full_name"`
	AdhaarNumber string `json:"adhaar_number"`
}

// HandleRegister handles POST /accounts/{variant}/register for the admin,
// officer, and personnel variants. Families register through /family/signup.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	variant := normalize.Role(chi.URLParam(r, "variant"))

	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		acct models.Account
		err  error
	)
	switch variant {
	case models.RoleAdmin:
		acct, err = h.Accounts.CreateAdmin(ctx, req.Username, req.Password)

	case models.RoleOfficer:
		acct, err = h.registerOfficer(ctx, req)

	case models.RolePersonnel:
		profile := models.PersonnelProfile{
			FullName:      req.FullName,
			ServiceNumber: req.ServiceNumber,
			Rank:          req.Rank,
			Unit:          req.Unit,
			JoinDate:      req.JoinDate,
		}
		if req.FamilyHead != nil {
			profile.FamilyHead = &models.FamilyHead{
				FullName:     req.FamilyHead.FullName,
				AdhaarNumber: req.FamilyHead.AdhaarNumber,
			}
		}
		acct, err = h.Accounts.CreatePersonnel(ctx, req.Username, req.Password, profile)

	default:
		httpjson.Error(w, http.StatusBadRequest, "unknown account variant")
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.Log.Info("account registered",
		zap.String("role", acct.Role),
		zap.String("account_id", acct.ID.Hex()))
	httpjson.Created(w, acct)
}

// registerOfficer checks the department exists before creating the account,
// then records the officer on the department roster.
func (h *Handler) registerOfficer(ctx context.Context, req registerRequest) (models.Account, error) {
	deptID, err := primitive.ObjectIDFromHex(req.DepartmentID)
	if err != nil {
		return models.Account{}, departmentstore.ErrNotFound
	}
	if _, err := h.Departments.GetByID(ctx, deptID); err != nil {
		return models.Account{}, err
	}

	acct, err := h.Accounts.CreateOfficer(ctx, req.Username, req.Password, deptID)
	if err != nil {
		return models.Account{}, err
	}
	if err := h.Departments.AddOfficer(ctx, deptID, acct.ID); err != nil {
		// The account exists; the roster entry can be repaired later.
		h.Log.Error("officer created but roster update failed",
			zap.String("officer_id", acct.ID.Hex()),
			zap.String("department_id", deptID.Hex()),
			zap.Error(err))
	}
	return acct, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// HandleLogin handles POST /accounts/{variant}/login. On success a session
// cookie is set; the body echoes the resolved principal.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	variant := normalize.Role(chi.URLParam(r, "variant"))
	if !models.ValidRole(variant) {
		httpjson.Error(w, http.StatusBadRequest, "unknown account variant")
		return
	}

	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	acct, err := h.Accounts.VerifyCredential(ctx, variant, req.Username, req.Password)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	u := &auth.SessionUser{
		ID:   acct.ID.Hex(),
		Name: displayName(acct),
		Role: acct.Role,
	}
	if err := h.SessionMgr.CreateSession(w, r, u); err != nil {
		h.Log.Error("session create failed", zap.Error(err), zap.String("account_id", u.ID))
		httpjson.Error(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	h.Log.Info("login", zap.String("role", u.Role), zap.String("account_id", u.ID))
	httpjson.OK(w, loginResponse{ID: u.ID, Name: u.Name, Role: u.Role})
}

// HandleLogout handles POST /accounts/{variant}/logout. Logout always
// succeeds: a missing or damaged session still gets a deletion cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.ClearSession(w, r); err != nil {
		h.Log.Warn("session clear failed", zap.Error(err))
	}
	httpjson.OK(w, map[string]string{"status": "logged out"})
}

func displayName(acct *models.Account) string {
	switch {
	case acct.Role == models.RolePersonnel && acct.Personnel != nil:
		return acct.Personnel.FullName
	case acct.Role == models.RoleFamily && acct.Family != nil:
		return acct.Family.FamilyHead.FullName
	default:
		return acct.Username
	}
}

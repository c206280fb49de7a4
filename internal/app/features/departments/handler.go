// Package departments serves department administration. Creation and
// deletion are admin-only; deleting a department cascades into the accounts
// collection so no officer or admin keeps a dangling reference.
package departments

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	"github.com/sainikhub/sainikhub/internal/app/system/authz"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for department administration.
type Handler struct {
	Log         *zap.Logger
	Departments *departmentstore.Store
	Accounts    *accountstore.Store
	ErrLog      *errorsfeature.ErrorLogger
}

// NewHandler constructs a departments Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:         logger,
		Departments: departmentstore.New(db),
		Accounts:    accountstore.New(db),
		ErrLog:      errLog,
	}
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /departments. The creating admin is recorded as
// an owner of the new department.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dept, err := h.Departments.Create(ctx, req.Name)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if err := h.Accounts.AddDepartmentToAdmin(ctx, adminID, dept.ID); err != nil {
		h.Log.Error("department created but admin ownership update failed",
			zap.String("department_id", dept.ID.Hex()),
			zap.String("admin_id", adminID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("department created",
		zap.String("department_id", dept.ID.Hex()),
		zap.String("name", dept.Name))
	httpjson.Created(w, dept)
}

// HandleList handles GET /departments.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	depts, err := h.Departments.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.OK(w, depts)
}

// HandleDelete handles DELETE /departments/{id}. A department that still
// owns schemes cannot be deleted; on success every admin ownership entry and
// officer scope pointing at it is removed.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deptID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, departmentstore.ErrNotFound.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Departments.Delete(ctx, deptID); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if err := h.Accounts.PullDepartment(ctx, deptID); err != nil {
		h.Log.Error("department deleted but account cleanup failed",
			zap.String("department_id", deptID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("department deleted", zap.String("department_id", deptID.Hex()))
	httpjson.OK(w, map[string]string{"status": "deleted"})
}

// Package schemes serves the benefit-scheme catalog: public browsing with
// per-scheme outcome tallies, officer/admin publishing, and family
// applications against a scheme's required field set.
package schemes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	applicationstore "github.com/sainikhub/sainikhub/internal/app/store/applications"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	schemestore "github.com/sainikhub/sainikhub/internal/app/store/schemes"
	"github.com/sainikhub/sainikhub/internal/app/system/authz"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the scheme catalog.
type Handler struct {
	Log          *zap.Logger
	Schemes      *schemestore.Store
	Departments  *departmentstore.Store
	Applications *applicationstore.Store
	Accounts     *accountstore.Store
	ErrLog       *errorsfeature.ErrorLogger
}

// NewHandler constructs a schemes Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		Schemes:      schemestore.New(db),
		Departments:  departmentstore.New(db),
		Applications: applicationstore.New(db),
		Accounts:     accountstore.New(db),
		ErrLog:       errLog,
	}
}

// schemeView is a catalog entry: the scheme plus its application tallies.
type schemeView struct {
	models.Scheme
	Applications models.OutcomeCounts `json:"applications"`
}

// HandleList handles GET /schemes. An optional ?department=<id> query
// narrows the catalog to one department's schemes.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	var (
		schemes []models.Scheme
		err     error
	)
	if dept := r.URL.Query().Get("department"); dept != "" {
		deptID, parseErr := primitive.ObjectIDFromHex(dept)
		if parseErr != nil {
			httpjson.Error(w, http.StatusNotFound, departmentstore.ErrNotFound.Error())
			return
		}
		schemes, err = h.Schemes.ListByDepartment(ctx, deptID)
	} else {
		schemes, err = h.Schemes.List(ctx)
	}
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	views := make([]schemeView, 0, len(schemes))
	for _, scheme := range schemes {
		counts, err := h.Applications.CountByOutcome(ctx, scheme.ID)
		if err != nil {
			h.ErrLog.Respond(w, r, err)
			return
		}
		views = append(views, schemeView{Scheme: scheme, Applications: counts})
	}
	httpjson.OK(w, views)
}

// HandleGet handles GET /schemes/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	schemeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, schemestore.ErrNotFound.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scheme, err := h.Schemes.GetByID(ctx, schemeID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	counts, err := h.Applications.CountByOutcome(ctx, scheme.ID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.OK(w, schemeView{Scheme: *scheme, Applications: counts})
}

type createRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Steps          []string `json:"steps,omitempty"`
	RequiredFields []string `json:"required_fields"`

	// Admins must name a department; officers publish into their own.
	DepartmentID string `json:"department_id,omitempty"`
}

// HandleCreate handles POST /schemes. An officer always publishes into the
// department they are scoped to; an admin names the target department.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, accountID, ok := authz.UserCtx(r)
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

	deptID, err := h.resolveDepartment(ctx, r, accountID, req.DepartmentID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if _, err := h.Departments.GetByID(ctx, deptID); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	scheme, err := h.Schemes.Create(ctx, schemestore.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Steps:          req.Steps,
		RequiredFields: req.RequiredFields,
		DepartmentID:   deptID,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if err := h.Departments.AddScheme(ctx, deptID, scheme.ID); err != nil {
		h.Log.Error("scheme created but department listing failed",
			zap.String("scheme_id", scheme.ID.Hex()),
			zap.String("department_id", deptID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("scheme published",
		zap.String("scheme_id", scheme.ID.Hex()),
		zap.String("department_id", deptID.Hex()),
		zap.String("by", accountID.Hex()))
	httpjson.Created(w, scheme)
}

func (h *Handler) resolveDepartment(ctx context.Context, r *http.Request, accountID primitive.ObjectID, requested string) (primitive.ObjectID, error) {
	if authz.IsOfficer(r) {
		acct, err := h.Accounts.GetByID(ctx, models.RoleOfficer, accountID)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if acct.DepartmentID == nil {
			return primitive.NilObjectID, departmentstore.ErrNotFound
		}
		return *acct.DepartmentID, nil
	}

	deptID, err := primitive.ObjectIDFromHex(requested)
	if err != nil {
		return primitive.NilObjectID, departmentstore.ErrNotFound
	}
	return deptID, nil
}

type stepRequest struct {
	Content string `json:"content"`
}

// HandleAddStep handles POST /schemes/{id}/steps, appending a progress note
// to the scheme's step log. Admins annotate any scheme; an officer only the
// schemes of their own department.
func (h *Handler) HandleAddStep(w http.ResponseWriter, r *http.Request) {
	_, _, accountID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	schemeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, schemestore.ErrNotFound.Error())
		return
	}

	var req stepRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scheme, err := h.Schemes.GetByID(ctx, schemeID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	if authz.IsOfficer(r) {
		deptID, err := h.resolveDepartment(ctx, r, accountID, "")
		if err != nil {
			h.ErrLog.Respond(w, r, err)
			return
		}
		if deptID != scheme.DepartmentID {
			httpjson.Error(w, http.StatusForbidden, "scheme belongs to another department")
			return
		}
	}

	if err := h.Schemes.AddStep(ctx, schemeID, req.Content); err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	updated, err := h.Schemes.GetByID(ctx, schemeID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.Log.Info("scheme step added",
		zap.String("scheme_id", schemeID.Hex()),
		zap.String("by", accountID.Hex()))
	httpjson.OK(w, updated)
}

type applyRequest struct {
	Details []detailIn `json:"details"`
}

type detailIn struct {
	Field string `json:"field"`
	Data  string `json:"data"`
}

// HandleApply handles POST /schemes/{id}/apply. The submitted details must
// match the scheme's required field set exactly; a family may hold several
// applications against the same scheme, each decided independently.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	_, _, familyID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	schemeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, schemestore.ErrNotFound.Error())
		return
	}

	var req applyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scheme, err := h.Schemes.GetByID(ctx, schemeID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	details := make([]models.ApplicationDetail, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, models.ApplicationDetail{Field: d.Field, Data: d.Data})
	}

	app, err := h.Applications.Submit(ctx, familyID, scheme, details)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.Log.Info("application submitted",
		zap.String("application_id", app.ID.Hex()),
		zap.String("scheme_id", schemeID.Hex()),
		zap.String("family_id", familyID.Hex()))
	httpjson.Created(w, app)
}

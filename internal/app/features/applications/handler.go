// Package applications serves application decisions and lookups. Approve
// and reject are explicit POST verbs; the first decision on an application
// wins and later attempts get a 409.
package applications

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	applicationstore "github.com/sainikhub/sainikhub/internal/app/store/applications"
	"github.com/sainikhub/sainikhub/internal/app/system/authz"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for application decisions and lookups.
type Handler struct {
	Log          *zap.Logger
	Applications *applicationstore.Store
	Accounts     *accountstore.Store
	ErrLog       *errorsfeature.ErrorLogger
}

// NewHandler constructs an applications Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		Applications: applicationstore.New(db),
		Accounts:     accountstore.New(db),
		ErrLog:       errLog,
	}
}

// HandleApprove handles POST /applications/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(ctx context.Context, appID, officerID primitive.ObjectID) (*models.Application, error) {
		return h.Applications.Approve(ctx, appID, officerID)
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// HandleReject handles POST /applications/{id}/reject. A missing reason is
// stored as a generic placeholder.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.decide(w, r, func(ctx context.Context, appID, officerID primitive.ObjectID) (*models.Application, error) {
		return h.Applications.Reject(ctx, appID, officerID, req.Reason)
	})
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Application, error)) {
	_, _, deciderID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	appID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, applicationstore.ErrNotFound.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	app, err := op(ctx, appID, deciderID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	// Officers keep a record of what they processed; admins have no list.
	if authz.IsOfficer(r) {
		if err := h.Accounts.RecordProcessedApplication(ctx, deciderID, app.ID); err != nil {
			h.Log.Error("decision saved but officer record update failed",
				zap.String("application_id", app.ID.Hex()),
				zap.String("officer_id", deciderID.Hex()),
				zap.Error(err))
		}
	}

	h.Log.Info("application decided",
		zap.String("application_id", app.ID.Hex()),
		zap.String("outcome", app.Outcome()),
		zap.String("decision_id", app.DecisionID),
		zap.String("by", deciderID.Hex()))
	httpjson.OK(w, app)
}

// HandleGet handles GET /applications/{id}. Families see only their own;
// officers and admins see any.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, _, accountID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	appID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusNotFound, applicationstore.ErrNotFound.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	app, err := h.Applications.GetByID(ctx, appID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	if !authz.CanDecide(r) && app.OwnerID != accountID {
		httpjson.Error(w, http.StatusForbidden, "not your application")
		return
	}
	httpjson.OK(w, app)
}

// HandleMine handles GET /applications, listing the calling family's own
// applications newest first.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	_, _, familyID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	apps, err := h.Applications.ListByOwner(ctx, familyID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.OK(w, apps)
}

// HandleSimilar handles GET /applications/similar: other families'
// applications whose accepted flag matches the caller's latest application.
func (h *Handler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	_, _, familyID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	apps, err := h.Applications.ListSimilar(ctx, familyID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}
	httpjson.OK(w, apps)
}

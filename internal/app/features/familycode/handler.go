// Package familycode serves the linkage-code endpoint for personnel. Each
// call mints a fresh code and overwrites the previous one, so a leaked code
// can be revoked by simply requesting another.
package familycode

import (
	"context"
	"net/http"

	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	"github.com/sainikhub/sainikhub/internal/app/system/authz"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the family-code endpoint.
type Handler struct {
	Log      *zap.Logger
	Accounts *accountstore.Store
	ErrLog   *errorsfeature.ErrorLogger
}

// NewHandler constructs a familycode Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Accounts: accountstore.New(db),
		ErrLog:   errLog,
	}
}

// HandleIssue handles PUT /personnel/family-code. The route gate guarantees
// a personnel principal; the code is written onto the caller's own record.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	_, _, accountID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	code, err := h.Accounts.IssueFamilyCode(ctx, accountID)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.Log.Info("family code issued", zap.String("personnel_id", accountID.Hex()))
	httpjson.OK(w, map[string]string{"familyCode": code})
}

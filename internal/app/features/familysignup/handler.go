// Package familysignup serves family registration. Unlike the other
// variants, a family account can only exist through linkage: the claimed
// (code, family head name, adhaar) triple must exactly match a personnel
// record before any account is created. A mismatch never says which part
// was wrong.
package familysignup

import (
	"context"
	"net/http"

	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"github.com/sainikhub/sainikhub/internal/app/system/timeouts"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for family signup.
type Handler struct {
	Log      *zap.Logger
	Accounts *accountstore.Store
	ErrLog   *errorsfeature.ErrorLogger
}

// NewHandler constructs a familysignup Handler.
func NewHandler(db *mongo.Database, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:      logger,
		Accounts: accountstore.New(db),
		ErrLog:   errLog,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	FamilyCode     string `json:"family_code"`
	FamilyHeadName string `json:"family_head_name"`
	AdhaarNumber   string `json:"adhaar_number"`

	Members []memberIn `json:"members,omitempty"`
}

type memberIn struct {
	Name         string `json:"name"`
	AdhaarNumber string `json:"adhaar_number"`
	Relationship string `json:"relationship"`
}

// HandleSignup handles POST /family/signup.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	personnel, err := h.Accounts.RedeemFamilyCode(ctx, req.FamilyCode, req.FamilyHeadName, req.AdhaarNumber)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	// The stored head comes from the matched personnel record, not the
	// request, so the family profile carries the declared spelling.
	head := personnel.Personnel.FamilyHead
	profile := models.FamilyProfile{
		FamilyCode: personnel.Personnel.FamilyCode,
		FamilyHead: models.FamilyHead{
			FullName:     head.FullName,
			AdhaarNumber: head.AdhaarNumber,
		},
	}
	for _, m := range req.Members {
		profile.Members = append(profile.Members, models.FamilyMember{
			Name:         m.Name,
			AdhaarNumber: m.AdhaarNumber,
			Relationship: m.Relationship,
		})
	}

	acct, err := h.Accounts.CreateFamily(ctx, req.Username, req.Password, profile)
	if err != nil {
		h.ErrLog.Respond(w, r, err)
		return
	}

	h.Log.Info("family account linked",
		zap.String("family_id", acct.ID.Hex()),
		zap.String("personnel_id", personnel.ID.Hex()))
	httpjson.Created(w, acct)
}

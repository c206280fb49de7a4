package applicationstore_test

import (
	"errors"
	"testing"

	applicationstore "github.com/sainikhub/sainikhub/internal/app/store/applications"
	"github.com/sainikhub/sainikhub/internal/domain/models"
	"github.com/sainikhub/sainikhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubmitAndApprove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	dept := fx.CreateDepartment(ctx, "Pension Cell")
	scheme := fx.CreateScheme(ctx, "Disability Pension", dept.ID)
	ownerID := primitive.NewObjectID()
	officerID := primitive.NewObjectID()

	app, err := store.Submit(ctx, ownerID, &scheme, []models.ApplicationDetail{
		{Field: "service_number", Data: "SN-1"},
		{Field: "bank_account", Data: "123"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if app.Outcome() != models.OutcomeProcessing {
		t.Fatalf("fresh application outcome: got %q, want processing", app.Outcome())
	}

	decided, err := store.Approve(ctx, app.ID, officerID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if decided.Outcome() != models.OutcomeAccepted {
		t.Errorf("outcome: got %q, want accepted", decided.Outcome())
	}
	if decided.ProcessedBy == nil || *decided.ProcessedBy != officerID {
		t.Errorf("processed_by not recorded")
	}
	if decided.DecisionID == "" {
		t.Errorf("decision audit tag not recorded")
	}
}

func TestDecisionIsSingleShot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	app := fx.CreatePendingApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	officerID := primitive.NewObjectID()

	if _, err := store.Reject(ctx, app.ID, officerID, "incomplete service record"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if _, err := store.Approve(ctx, app.ID, officerID); !errors.Is(err, applicationstore.ErrAlreadyDecided) {
		t.Errorf("approve after reject: got %v, want ErrAlreadyDecided", err)
	}
	if _, err := store.Reject(ctx, app.ID, officerID, "again"); !errors.Is(err, applicationstore.ErrAlreadyDecided) {
		t.Errorf("reject after reject: got %v, want ErrAlreadyDecided", err)
	}

	// The stored outcome still reflects the first decision.
	got, err := store.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Outcome() != models.OutcomeRejected {
		t.Errorf("outcome: got %q, want rejected", got.Outcome())
	}
	if got.RejectReason != "incomplete service record" {
		t.Errorf("reject reason: got %q", got.RejectReason)
	}
}

func TestDecideMissingApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := applicationstore.New(db)

	if _, err := store.Approve(ctx, primitive.NewObjectID(), primitive.NewObjectID()); !errors.Is(err, applicationstore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestRejectWithoutReasonUsesPlaceholder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	app := fx.CreatePendingApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID())

	decided, err := store.Reject(ctx, app.ID, primitive.NewObjectID(), "   ")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if decided.Outcome() != models.OutcomeRejected {
		t.Errorf("outcome: got %q, want rejected", decided.Outcome())
	}
	if decided.RejectReason != applicationstore.DefaultRejectReason {
		t.Errorf("reason: got %q, want placeholder %q", decided.RejectReason, applicationstore.DefaultRejectReason)
	}

	// Markup-only reasons strip down to nothing and get the placeholder too.
	other := fx.CreatePendingApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	decided, err = store.Reject(ctx, other.ID, primitive.NewObjectID(), "<script></script>")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if decided.RejectReason != applicationstore.DefaultRejectReason {
		t.Errorf("reason: got %q, want placeholder %q", decided.RejectReason, applicationstore.DefaultRejectReason)
	}
}

func TestDuplicateSubmissionsAllowed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	dept := fx.CreateDepartment(ctx, "Pension Cell")
	scheme := fx.CreateScheme(ctx, "Disability Pension", dept.ID)
	ownerID := primitive.NewObjectID()
	details := []models.ApplicationDetail{
		{Field: "service_number", Data: "SN-1"},
		{Field: "bank_account", Data: "123"},
	}

	first, err := store.Submit(ctx, ownerID, &scheme, details)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second, err := store.Submit(ctx, ownerID, &scheme, details)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected distinct applications")
	}

	apps, err := store.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(apps) != 2 {
		t.Errorf("got %d applications, want 2", len(apps))
	}
}

func TestListSimilar(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	caller := primitive.NewObjectID()
	otherAccepted := primitive.NewObjectID()
	otherPending := primitive.NewObjectID()
	officerID := primitive.NewObjectID()
	schemeID := primitive.NewObjectID()

	// Caller's latest application gets accepted.
	mine := fx.CreatePendingApplication(ctx, caller, schemeID)
	if _, err := store.Approve(ctx, mine.ID, officerID); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	theirs := fx.CreatePendingApplication(ctx, otherAccepted, schemeID)
	if _, err := store.Approve(ctx, theirs.ID, officerID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	fx.CreatePendingApplication(ctx, otherPending, schemeID)

	similar, err := store.ListSimilar(ctx, caller)
	if err != nil {
		t.Fatalf("ListSimilar: %v", err)
	}
	if len(similar) != 1 {
		t.Fatalf("got %d similar applications, want 1", len(similar))
	}
	if similar[0].OwnerID != otherAccepted {
		t.Errorf("similar owner: got %s, want %s", similar[0].OwnerID.Hex(), otherAccepted.Hex())
	}
	if similar[0].OwnerID == caller {
		t.Error("caller's own applications must be excluded")
	}
}

func TestListSimilarWithoutApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := applicationstore.New(db)

	if _, err := store.ListSimilar(ctx, primitive.NewObjectID()); !errors.Is(err, applicationstore.ErrNoApplicationOnFile) {
		t.Errorf("got %v, want ErrNoApplicationOnFile", err)
	}
}

func TestCountByOutcome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := applicationstore.New(db)

	schemeID := primitive.NewObjectID()
	officerID := primitive.NewObjectID()

	a := fx.CreatePendingApplication(ctx, primitive.NewObjectID(), schemeID)
	b := fx.CreatePendingApplication(ctx, primitive.NewObjectID(), schemeID)
	fx.CreatePendingApplication(ctx, primitive.NewObjectID(), schemeID)
	// Another scheme's application must not bleed into the tally.
	fx.CreatePendingApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID())

	if _, err := store.Approve(ctx, a.ID, officerID); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := store.Reject(ctx, b.ID, officerID, "ineligible unit"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	counts, err := store.CountByOutcome(ctx, schemeID)
	if err != nil {
		t.Fatalf("CountByOutcome: %v", err)
	}
	want := models.OutcomeCounts{Processing: 1, Accepted: 1, Rejected: 1}
	if counts != want {
		t.Errorf("counts: got %+v, want %+v", counts, want)
	}
	if counts.Total() != 3 {
		t.Errorf("total: got %d, want 3", counts.Total())
	}

	// A zero scheme ID tallies across all schemes.
	all, err := store.CountByOutcome(ctx, primitive.NilObjectID)
	if err != nil {
		t.Fatalf("CountByOutcome unscoped: %v", err)
	}
	if all.Total() != 4 {
		t.Errorf("unscoped total: got %d, want 4", all.Total())
	}
	if all.Processing != 2 {
		t.Errorf("unscoped processing: got %d, want 2", all.Processing)
	}
}

// internal/app/store/coordinators/coordinatorstore_test.go
package coordinatorstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/carehub/internal/app/system/indexes"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/dalemusser/carehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	tenantID := primitive.NewObjectID()

	created, err := store.Create(ctx, models.ServiceCoordinator{
		TenantID: tenantID,
		SCID:     "SC-1001",
		FullName: "María García",
		Email:    "maria@example.org",
		Zone:     models.ZoneSW,
		Role:     models.RoleCoordinator,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.FullNameCI != "maria garcia" {
		t.Errorf("FullNameCI = %q, want folded name", created.FullNameCI)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SCID != "SC-1001" {
		t.Errorf("SCID = %q", got.SCID)
	}

	bySCID, err := store.GetBySCID(ctx, tenantID, "SC-1001")
	if err != nil {
		t.Fatalf("GetBySCID: %v", err)
	}
	if bySCID.ID != created.ID {
		t.Errorf("GetBySCID returned %s, want %s", bySCID.ID.Hex(), created.ID.Hex())
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := New(db)
	tenantID := primitive.NewObjectID()

	c := models.ServiceCoordinator{
		TenantID: tenantID,
		SCID:     "SC-1",
		FullName: "A",
		Email:    "same@example.org",
		Zone:     models.ZoneSW,
		Role:     models.RoleCoordinator,
		IsActive: true,
	}
	if _, err := store.Create(ctx, c); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	c.SCID = "SC-2"
	if _, err := store.Create(ctx, c); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestListCandidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	fx := testutil.NewFixtures(t, db)
	tenant := fx.CreateTenant(ctx, "Acme Care")
	max := 5

	busy := fx.CreateCoordinator(ctx, tenant.ID, "Busy", testutil.CoordinatorOpts{CurrentCaseload: 4})
	light := fx.CreateCoordinator(ctx, tenant.ID, "Light", testutil.CoordinatorOpts{CurrentCaseload: 1})
	fx.CreateCoordinator(ctx, tenant.ID, "Full", testutil.CoordinatorOpts{CurrentCaseload: 5, MaxCaseload: &max})
	fx.CreateCoordinator(ctx, tenant.ID, "Retired", testutil.CoordinatorOpts{Inactive: true})
	fx.CreateCoordinator(ctx, tenant.ID, "Elsewhere", testutil.CoordinatorOpts{Zone: models.ZoneNE})
	fx.CreateCoordinator(ctx, tenant.ID, "Boss", testutil.CoordinatorOpts{Role: models.RoleSupervisor})

	got, err := store.ListCandidates(ctx, tenant.ID, models.RoleCoordinator, models.ZoneSW)
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2 (full, inactive, wrong-zone, wrong-role excluded)", len(got))
	}
	if got[0].ID != light.ID || got[1].ID != busy.ID {
		t.Errorf("order = [%s %s], want least-loaded first", got[0].FullName, got[1].FullName)
	}
}

func TestIncrementCaseload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	fx := testutil.NewFixtures(t, db)
	tenant := fx.CreateTenant(ctx, "Acme Care")
	max := 2

	c := fx.CreateCoordinator(ctx, tenant.ID, "Cap", testutil.CoordinatorOpts{CurrentCaseload: 1, MaxCaseload: &max})

	change, err := store.IncrementCaseload(ctx, c.ID)
	if err != nil {
		t.Fatalf("IncrementCaseload: %v", err)
	}
	if change.Before != 1 || change.After != 2 {
		t.Errorf("change = %+v, want 1 -> 2", change)
	}

	// Now at max: the guarded filter must refuse the next slot.
	_, err = store.IncrementCaseload(ctx, c.ID)
	var capErr *faults.CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want *faults.CapacityExceededError", err)
	}
	if capErr.Current != 2 || capErr.Max != 2 {
		t.Errorf("CapacityExceededError = %+v", capErr)
	}
}

func TestIncrementCaseload_InactiveRefused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	fx := testutil.NewFixtures(t, db)
	tenant := fx.CreateTenant(ctx, "Acme Care")

	c := fx.CreateCoordinator(ctx, tenant.ID, "Gone", testutil.CoordinatorOpts{Inactive: true})
	var capErr *faults.CapacityExceededError
	if _, err := store.IncrementCaseload(ctx, c.ID); !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want *faults.CapacityExceededError for inactive coordinator", err)
	}
}

func TestDecrementCaseload_ClampsAtZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	fx := testutil.NewFixtures(t, db)
	tenant := fx.CreateTenant(ctx, "Acme Care")

	c := fx.CreateCoordinator(ctx, tenant.ID, "Idle", testutil.CoordinatorOpts{})
	change, err := store.DecrementCaseload(ctx, c.ID)
	if err != nil {
		t.Fatalf("DecrementCaseload: %v", err)
	}
	if !change.Clamped {
		t.Error("decrementing a zero counter must clamp")
	}

	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.CurrentCaseload != 0 {
		t.Errorf("caseload = %d, want 0", got.CurrentCaseload)
	}
}

func TestSetSupervisorChain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := New(db)
	fx := testutil.NewFixtures(t, db)
	tenant := fx.CreateTenant(ctx, "Acme Care")

	sup := fx.CreateCoordinator(ctx, tenant.ID, "Sup", testutil.CoordinatorOpts{Role: models.RoleSupervisor})
	worker := fx.CreateCoordinator(ctx, tenant.ID, "Worker", testutil.CoordinatorOpts{})

	if err := store.SetSupervisorChain(ctx, worker.ID, &sup.ID, nil, nil); err != nil {
		t.Fatalf("SetSupervisorChain: %v", err)
	}
	got, err := store.GetByID(ctx, worker.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SupervisorID == nil || *got.SupervisorID != sup.ID {
		t.Errorf("SupervisorID = %v, want %s", got.SupervisorID, sup.ID.Hex())
	}

	// Clearing the chain unsets all three parents.
	if err := store.SetSupervisorChain(ctx, worker.ID, nil, nil, nil); err != nil {
		t.Fatalf("SetSupervisorChain(clear): %v", err)
	}
	got, err = store.GetByID(ctx, worker.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SupervisorID != nil || got.ManagerID != nil || got.DirectorID != nil {
		t.Error("clearing the chain must remove all parent references")
	}
}

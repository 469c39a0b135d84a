package workflow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"datagate/internal/db"
	"datagate/internal/models"
	"datagate/internal/notify"
	"datagate/internal/policy"
)

type fixture struct {
	db       *gorm.DB
	policies *policy.Store
	notes    *notify.Store
	svc      *Service

	admin     models.User
	requester models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	f := &fixture{
		db:       gdb,
		policies: policy.NewStore(gdb),
		notes:    notify.NewStore(gdb),
	}
	f.svc = NewService(gdb, f.policies, f.notes)

	f.admin = models.User{Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, gdb.Create(&f.admin).Error)
	f.requester = models.User{Email: "user@example.com", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, gdb.Create(&f.requester).Error)
	return f
}

func (f *fixture) createRequest(t *testing.T, items ...ItemInput) *models.AccessRequest {
	t.Helper()
	req, err := f.svc.CreateRequest(&f.requester, 1, nil, items)
	require.NoError(t, err)
	return req
}

func TestCreateRequestNotifiesAdmins(t *testing.T) {
	f := newFixture(t)

	reason := "quarterly reporting"
	req, err := f.svc.CreateRequest(&f.requester, 1, &reason, []ItemInput{
		{TableID: 10, Effect: models.EffectAllow, Fields: models.FieldList{"a"}},
		{TableID: 11, Effect: models.EffectAllowAll},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Len(t, req.Items, 2)

	stored, err := f.svc.RequestWithItems(req.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	adminNotes, err := f.notes.ForUser(f.admin.ID)
	require.NoError(t, err)
	require.Len(t, adminNotes, 1)
	assert.Equal(t, models.NotifyNewRequest, adminNotes[0].Type)
	assert.Contains(t, adminNotes[0].Message, f.requester.Email)

	userNotes, err := f.notes.ForUser(f.requester.ID)
	require.NoError(t, err)
	assert.Empty(t, userNotes)
}

func TestCreateRequestRejectsUnknownEffect(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateRequest(&f.requester, 1, nil, []ItemInput{
		{TableID: 10, Effect: "readwrite"},
	})
	assert.Error(t, err)
}

func TestApproveMaterializesNonConflictingItems(t *testing.T) {
	f := newFixture(t)

	// Existing grant on table 10 makes the allowAll item conflict.
	_, err := f.policies.CreatePolicy(f.requester.ID, 1, 10, models.EffectAllow, models.FieldList{"order_id", "total"})
	require.NoError(t, err)

	req := f.createRequest(t,
		ItemInput{TableID: 10, Effect: models.EffectAllowAll},
		ItemInput{TableID: 11, Effect: models.EffectAllow, Fields: models.FieldList{"name"}},
		ItemInput{TableID: 12, Effect: models.EffectDeny, Fields: models.FieldList{"salary"}},
	)

	approved, skipped, err := f.svc.Approve(req.ID)
	require.NoError(t, err)

	// The request as a whole is approved even though one item was
	// dropped; only the skipped list tells the difference.
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.Len(t, skipped, 1)
	assert.Equal(t, int64(10), skipped[0].TableID)

	after, err := f.policies.PoliciesForUser(f.requester.ID)
	require.NoError(t, err)
	assert.Len(t, after, 3) // 1 pre-existing + 2 new

	// The pre-existing grant is untouched.
	var tableTen []models.AccessPolicy
	for _, p := range after {
		if p.TableID == 10 {
			tableTen = append(tableTen, p)
		}
	}
	require.Len(t, tableTen, 1)
	assert.Equal(t, models.EffectAllow, tableTen[0].Effect)

	userNotes, err := f.notes.ForUser(f.requester.ID)
	require.NoError(t, err)
	require.Len(t, userNotes, 1)
	assert.Equal(t, models.NotifyRequestApproved, userNotes[0].Type)
}

func TestApproveDisjointDenyAndAllow(t *testing.T) {
	f := newFixture(t)

	_, err := f.policies.CreatePolicy(f.requester.ID, 1, 10, models.EffectDeny, models.FieldList{"status"})
	require.NoError(t, err)

	req := f.createRequest(t, ItemInput{TableID: 10, Effect: models.EffectAllow, Fields: models.FieldList{"order_id"}})

	_, skipped, err := f.svc.Approve(req.ID)
	require.NoError(t, err)
	assert.Empty(t, skipped)

	after, err := f.policies.PoliciesForUser(f.requester.ID)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestApproveAllItemsConflicting(t *testing.T) {
	f := newFixture(t)

	_, err := f.policies.CreatePolicy(f.requester.ID, 1, 10, models.EffectAllowAll, nil)
	require.NoError(t, err)

	req := f.createRequest(t, ItemInput{TableID: 10, Effect: models.EffectDeny, Fields: models.FieldList{"x"}})

	approved, skipped, err := f.svc.Approve(req.ID)
	require.NoError(t, err)

	// Still reads approved with zero items applied.
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Len(t, skipped, 1)

	after, err := f.policies.PoliciesForUser(f.requester.ID)
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestRejectCreatesNoPolicies(t *testing.T) {
	f := newFixture(t)

	req := f.createRequest(t, ItemInput{TableID: 10, Effect: models.EffectAllow, Fields: models.FieldList{"a"}})

	rejected, err := f.svc.Reject(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	after, err := f.policies.PoliciesForUser(f.requester.ID)
	require.NoError(t, err)
	assert.Empty(t, after)

	userNotes, err := f.notes.ForUser(f.requester.ID)
	require.NoError(t, err)
	require.Len(t, userNotes, 1)
	assert.Equal(t, models.NotifyRequestRejected, userNotes[0].Type)
}

func TestDecideOnlyOnce(t *testing.T) {
	f := newFixture(t)

	req := f.createRequest(t, ItemInput{TableID: 10, Effect: models.EffectAllow, Fields: models.FieldList{"a"}})

	_, _, err := f.svc.Approve(req.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Approve(req.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = f.svc.Reject(req.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestDecideUnknownRequest(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Approve(999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Reject(999)
	assert.ErrorIs(t, err, ErrNotFound)
}

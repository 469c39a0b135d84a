package policy

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"datagate/internal/db"
	"datagate/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return NewStore(gdb)
}

func TestCreateAndListPolicies(t *testing.T) {
	s := testStore(t)

	p1, err := s.CreatePolicy(1, 1, 10, models.EffectAllow, models.FieldList{"a", "b"})
	require.NoError(t, err)
	p2, err := s.CreatePolicy(1, 1, 11, models.EffectDeny, nil)
	require.NoError(t, err)
	_, err = s.CreatePolicy(2, 1, 10, models.EffectAllowAll, nil)
	require.NoError(t, err)

	assert.NotEqual(t, p1.ID, p2.ID)

	mine, err := s.PoliciesForUser(1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := s.AllPolicies()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFieldListRoundTrip(t *testing.T) {
	s := testStore(t)

	// nil must stay nil (not field-scoped), an empty set must stay a
	// set; clients depend on the difference.
	unscoped, err := s.CreatePolicy(1, 1, 10, models.EffectAllowAll, nil)
	require.NoError(t, err)
	scoped, err := s.CreatePolicy(1, 1, 11, models.EffectAllow, models.FieldList{})
	require.NoError(t, err)

	policies, err := s.PoliciesForUser(1)
	require.NoError(t, err)
	byID := map[int64]models.AccessPolicy{}
	for _, p := range policies {
		byID[p.ID] = p
	}
	assert.Nil(t, byID[unscoped.ID].Fields)
	assert.NotNil(t, byID[scoped.ID].Fields)
	assert.Len(t, byID[scoped.ID].Fields, 0)
}

func TestDeletePolicy(t *testing.T) {
	s := testStore(t)

	p, err := s.CreatePolicy(1, 1, 10, models.EffectAllow, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeletePolicy(p.ID))
	assert.ErrorIs(t, s.DeletePolicy(p.ID), ErrNotFound)

	mine, err := s.PoliciesForUser(1)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestHasConflictScopedToTable(t *testing.T) {
	s := testStore(t)

	_, err := s.CreatePolicy(1, 1, 10, models.EffectAllowAll, nil)
	require.NoError(t, err)

	// Same table: allowAll is exclusive.
	got, err := s.HasConflict(1, 10, models.EffectAllow, models.FieldList{"a"})
	require.NoError(t, err)
	assert.True(t, got)

	// Different table, same user: no conflict.
	got, err = s.HasConflict(1, 11, models.EffectAllow, models.FieldList{"a"})
	require.NoError(t, err)
	assert.False(t, got)

	// Same table, different user: no conflict.
	got, err = s.HasConflict(2, 10, models.EffectAllow, models.FieldList{"a"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestApplyGrant(t *testing.T) {
	s := testStore(t)

	created, conflicted, err := s.ApplyGrant(1, 1, 10, models.EffectAllow, models.FieldList{"order_id", "total"})
	require.NoError(t, err)
	assert.False(t, conflicted)
	require.NotNil(t, created)

	// allowAll on the same table must be skipped and leave the
	// original grant untouched.
	p, conflicted, err := s.ApplyGrant(1, 1, 10, models.EffectAllowAll, nil)
	require.NoError(t, err)
	assert.True(t, conflicted)
	assert.Nil(t, p)

	mine, err := s.PoliciesForUser(1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.Equal(t, models.EffectAllow, mine[0].Effect)
}

func TestCopyPoliciesReplace(t *testing.T) {
	s := testStore(t)

	_, err := s.CreatePolicy(1, 1, 10, models.EffectAllow, models.FieldList{"a", "b"})
	require.NoError(t, err)
	_, err = s.CreatePolicy(1, 2, 20, models.EffectDeny, nil)
	require.NoError(t, err)

	old, err := s.CreatePolicy(2, 3, 30, models.EffectAllowAll, nil)
	require.NoError(t, err)

	copied, err := s.CopyPolicies(1, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, copied)

	source, err := s.PoliciesForUser(1)
	require.NoError(t, err)
	target, err := s.PoliciesForUser(2)
	require.NoError(t, err)
	require.Len(t, target, len(source))

	for i, p := range target {
		assert.NotEqual(t, old.ID, p.ID)
		assert.NotEqual(t, source[i].ID, p.ID)
		assert.Equal(t, int64(2), p.UserID)
		assert.Equal(t, source[i].SchemaID, p.SchemaID)
		assert.Equal(t, source[i].TableID, p.TableID)
		assert.Equal(t, source[i].Effect, p.Effect)
		assert.Equal(t, source[i].Fields, p.Fields)
	}
}

func TestCopyPoliciesMerge(t *testing.T) {
	s := testStore(t)

	_, err := s.CreatePolicy(1, 1, 10, models.EffectAllow, models.FieldList{"a"})
	require.NoError(t, err)
	_, err = s.CreatePolicy(1, 1, 11, models.EffectAllow, nil)
	require.NoError(t, err)

	_, err = s.CreatePolicy(2, 1, 10, models.EffectDeny, models.FieldList{"a"})
	require.NoError(t, err)

	copied, err := s.CopyPolicies(1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, copied)

	// No dedup: old target policies stay next to the copies.
	target, err := s.PoliciesForUser(2)
	require.NoError(t, err)
	assert.Len(t, target, 3)

	// The merge reintroduced an allow/deny overlap on table 10; the
	// report sees it, nothing blocks it.
	conflictCount, err := s.CountConflicts(2)
	require.NoError(t, err)
	assert.Equal(t, 1, conflictCount)
}

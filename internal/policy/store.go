package policy

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"datagate/internal/models"
)

var ErrNotFound = errors.New("policy not found")

// Store owns the AccessPolicy set. Lookups for the conflict check hit
// the composite (user_id, table_id) index rather than scanning the
// whole table.
//
// Check-then-create sequences are serialized per user: two concurrent
// approvals for the same user must not both pass the conflict check
// against a stale read.
type Store struct {
	db *gorm.DB

	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, users: make(map[int64]*sync.Mutex)}
}

func (s *Store) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.users[userID]
	if !ok {
		l = &sync.Mutex{}
		s.users[userID] = l
	}
	return l
}

// CreatePolicy inserts a new policy unconditionally. No conflict check
// runs here; callers that need one must go through ApplyGrant or check
// HasConflict first.
func (s *Store) CreatePolicy(userID, schemaID, tableID int64, effect models.Effect, fields models.FieldList) (*models.AccessPolicy, error) {
	p := models.AccessPolicy{
		UserID:   userID,
		SchemaID: schemaID,
		TableID:  tableID,
		Effect:   effect,
		Fields:   fields,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// PoliciesForUser returns every policy of one user, across all tables.
func (s *Store) PoliciesForUser(userID int64) ([]models.AccessPolicy, error) {
	var policies []models.AccessPolicy
	err := s.db.Where("user_id = ?", userID).Find(&policies).Error
	return policies, err
}

// AllPolicies is the administrative global view.
func (s *Store) AllPolicies() ([]models.AccessPolicy, error) {
	var policies []models.AccessPolicy
	err := s.db.Find(&policies).Error
	return policies, err
}

func (s *Store) DeletePolicy(id int64) error {
	res := s.db.Delete(&models.AccessPolicy{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) tablePolicies(tx *gorm.DB, userID, tableID int64) ([]models.AccessPolicy, error) {
	var policies []models.AccessPolicy
	err := tx.Where("user_id = ? AND table_id = ?", userID, tableID).Find(&policies).Error
	return policies, err
}

// HasConflict reports whether granting (effect, fields) to the user on
// the table would conflict with an existing policy. The schema is not
// part of the conflict key; a table belongs to exactly one schema.
func (s *Store) HasConflict(userID, tableID int64, effect models.Effect, fields models.FieldList) (bool, error) {
	existing, err := s.tablePolicies(s.db, userID, tableID)
	if err != nil {
		return false, err
	}
	return conflicts(existing, effect, fields), nil
}

// ApplyGrant runs the conflict check and, when clear, creates the
// policy — atomically with respect to other grants for the same user.
// It returns (nil, true, nil) when the grant was skipped as
// conflicting; a conflict is an expected outcome, not an error.
func (s *Store) ApplyGrant(userID, schemaID, tableID int64, effect models.Effect, fields models.FieldList) (*models.AccessPolicy, bool, error) {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	var created *models.AccessPolicy
	conflicted := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.tablePolicies(tx, userID, tableID)
		if err != nil {
			return err
		}
		if conflicts(existing, effect, fields) {
			conflicted = true
			return nil
		}
		p := models.AccessPolicy{
			UserID:   userID,
			SchemaID: schemaID,
			TableID:  tableID,
			Effect:   effect,
			Fields:   fields,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		created = &p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return created, conflicted, nil
}

// CopyPolicies duplicates every policy of the source user onto the
// target. With replaceExisting the target's old policies are deleted
// first; without it they remain alongside the copies, which may
// reintroduce conflicts — accepted admin-tool behavior, deliberately
// bypassing the conflict check so a known-good snapshot can be forced
// onto a user. Returns the number of policies copied.
func (s *Store) CopyPolicies(sourceUserID, targetUserID int64, replaceExisting bool) (int, error) {
	l := s.userLock(targetUserID)
	l.Lock()
	defer l.Unlock()

	copied := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if replaceExisting {
			if err := tx.Where("user_id = ?", targetUserID).Delete(&models.AccessPolicy{}).Error; err != nil {
				return err
			}
		}

		var source []models.AccessPolicy
		if err := tx.Where("user_id = ?", sourceUserID).Find(&source).Error; err != nil {
			return err
		}
		for _, p := range source {
			dup := models.AccessPolicy{
				UserID:   targetUserID,
				SchemaID: p.SchemaID,
				TableID:  p.TableID,
				Effect:   p.Effect,
				Fields:   p.Fields,
			}
			if err := tx.Create(&dup).Error; err != nil {
				return err
			}
			copied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return copied, nil
}

// CountConflicts counts the pairs of policies a user holds that are
// mutually incompatible under the grant rules. Used for the post-copy
// conflict report; it never blocks anything.
func (s *Store) CountConflicts(userID int64) (int, error) {
	policies, err := s.PoliciesForUser(userID)
	if err != nil {
		return 0, err
	}

	byTable := make(map[int64][]models.AccessPolicy)
	for _, p := range policies {
		byTable[p.TableID] = append(byTable[p.TableID], p)
	}

	count := 0
	for _, table := range byTable {
		for i := range table {
			for j := i + 1; j < len(table); j++ {
				if conflicts(table[i:i+1], table[j].Effect, table[j].Fields) {
					count++
				}
			}
		}
	}
	return count, nil
}

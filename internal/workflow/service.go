package workflow

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"datagate/internal/audit"
	"datagate/internal/models"
	"datagate/internal/notify"
	"datagate/internal/policy"
)

var (
	ErrNotFound       = errors.New("access request not found")
	ErrAlreadyDecided = errors.New("access request already decided")
)

// ItemInput is one table-scoped line of a new request.
type ItemInput struct {
	TableID int64            `json:"tableId" binding:"required"`
	Effect  models.Effect    `json:"effect" binding:"required"`
	Fields  models.FieldList `json:"fields"`
}

// Service drives the access-request lifecycle: create as pending,
// decide once, and on approval materialize the items into policies
// through the policy store's conflict check.
type Service struct {
	db       *gorm.DB
	policies *policy.Store
	notes    *notify.Store
}

func NewService(db *gorm.DB, policies *policy.Store, notes *notify.Store) *Service {
	return &Service{db: db, policies: policies, notes: notes}
}

// CreateRequest stores a pending request with its items and notifies
// every admin about it.
func (s *Service) CreateRequest(user *models.User, schemaID int64, reason *string, items []ItemInput) (*models.AccessRequest, error) {
	for _, item := range items {
		if !item.Effect.IsValid() {
			return nil, fmt.Errorf("invalid effect %q", item.Effect)
		}
	}

	req := models.AccessRequest{
		UserID:   user.ID,
		SchemaID: schemaID,
		Reason:   reason,
		Status:   models.StatusPending,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		for _, item := range items {
			line := models.AccessRequestItem{
				RequestID: req.ID,
				TableID:   item.TableID,
				Effect:    item.Effect,
				Fields:    item.Fields,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			req.Items = append(req.Items, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var admins []models.User
	if err := s.db.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		return nil, err
	}
	for _, admin := range admins {
		if _, err := s.notes.Create(admin.ID, models.NotifyNewRequest,
			fmt.Sprintf("New access request from %s", user.Email)); err != nil {
			return nil, err
		}
	}

	audit.Record(s.db, user.ID, "access_requests.create", "access_request", req.ID,
		map[string]interface{}{"schemaId": schemaID, "items": len(items)})
	return &req, nil
}

// Approve marks the request approved and materializes its items in
// order. Conflicting items are skipped, never surfaced as errors; the
// request still reports approved even if every item was skipped. The
// skipped items are returned so callers can report partial application.
func (s *Service) Approve(id int64) (*models.AccessRequest, []models.AccessRequestItem, error) {
	req, err := s.pendingRequest(id)
	if err != nil {
		return nil, nil, err
	}

	// The status transition is unconditional, regardless of how the
	// individual items fare below.
	if err := s.setStatus(req, models.StatusApproved); err != nil {
		return nil, nil, err
	}

	var skipped []models.AccessRequestItem
	for _, item := range req.Items {
		_, conflicted, err := s.policies.ApplyGrant(req.UserID, req.SchemaID, item.TableID, item.Effect, item.Fields)
		if err != nil {
			return nil, nil, err
		}
		if conflicted {
			log.Printf("workflow: conflict detected for user %d, table %d; item %d skipped", req.UserID, item.TableID, item.ID)
			skipped = append(skipped, item)
		}
	}

	if _, err := s.notes.Create(req.UserID, models.NotifyRequestApproved,
		"Your access request has been approved"); err != nil {
		return nil, nil, err
	}

	audit.Record(s.db, req.UserID, "access_requests.approve", "access_request", req.ID,
		map[string]interface{}{"items": len(req.Items), "skipped": len(skipped)})
	return req, skipped, nil
}

// Reject marks the request rejected and notifies the requester. No
// policies are touched.
func (s *Service) Reject(id int64) (*models.AccessRequest, error) {
	req, err := s.pendingRequest(id)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(req, models.StatusRejected); err != nil {
		return nil, err
	}
	if _, err := s.notes.Create(req.UserID, models.NotifyRequestRejected,
		"Your access request has been rejected"); err != nil {
		return nil, err
	}
	audit.Record(s.db, req.UserID, "access_requests.reject", "access_request", req.ID, nil)
	return req, nil
}

func (s *Service) pendingRequest(id int64) (*models.AccessRequest, error) {
	req, err := s.RequestWithItems(id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.StatusPending {
		return nil, ErrAlreadyDecided
	}
	return req, nil
}

func (s *Service) setStatus(req *models.AccessRequest, status models.RequestStatus) error {
	if err := s.db.Model(req).Update("status", status).Error; err != nil {
		return err
	}
	req.Status = status
	return nil
}

// RequestWithItems loads one request with its line items.
func (s *Service) RequestWithItems(id int64) (*models.AccessRequest, error) {
	var req models.AccessRequest
	err := s.db.Preload("Items").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Service) AllRequests() ([]models.AccessRequest, error) {
	var reqs []models.AccessRequest
	err := s.db.Find(&reqs).Error
	return reqs, err
}

func (s *Service) RequestsForUser(userID int64) ([]models.AccessRequest, error) {
	var reqs []models.AccessRequest
	err := s.db.Where("user_id = ?", userID).Find(&reqs).Error
	return reqs, err
}

package notify

import (
	"errors"

	"gorm.io/gorm"

	"datagate/internal/models"
)

var ErrNotFound = errors.New("notification not found")

// Store records user-visible messages. Delivery is pull-based: clients
// poll their list, there is no push channel.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(userID int64, typ models.NotificationType, message string) (*models.Notification, error) {
	n := models.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	if err := s.db.Create(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ForUser returns the user's notifications, newest first.
func (s *Store) ForUser(userID int64) ([]models.Notification, error) {
	var notes []models.Notification
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&notes).Error
	return notes, err
}

func (s *Store) Get(id int64) (*models.Notification, error) {
	var n models.Notification
	err := s.db.First(&n, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) MarkRead(id int64) error {
	return s.db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

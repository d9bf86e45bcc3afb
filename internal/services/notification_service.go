package services

import (
	"encoding/json"

	"renthub/internal/models"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/logger"
	"renthub/pkg/queue"

	"gorm.io/gorm"
)

// NotificationService persists workflow notifications and pushes them through
// the Redis queue for live delivery. The queue is optional: with a nil queue
// notifications are stored only.
type NotificationService struct {
	db    *gorm.DB
	queue *queue.RedisQueue
}

func NewNotificationService(db *gorm.DB, q *queue.RedisQueue) *NotificationService {
	return &NotificationService{db: db, queue: q}
}

// Notify stores a notification and publishes it. Publish failures are logged,
// not propagated: the durable row is the source of truth.
func (s *NotificationService) Notify(userID uint, kind, title, message string, payload map[string]interface{}) error {
	notification := &models.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			notification.Payload = data
		}
	}

	if err := s.db.Create(notification).Error; err != nil {
		return apperrors.Internal("create notification", err)
	}

	if s.queue != nil {
		err := s.queue.Publish(&queue.NotificationMessage{
			NotificationID: notification.ID,
			UserID:         userID,
			Kind:           kind,
			Title:          title,
			Message:        message,
			Payload:        payload,
		})
		if err != nil {
			logger.GetLogger().Warnf("Failed to publish notification %d: %v", notification.ID, err)
		}
	}
	return nil
}

// ListByUser returns the user's notifications, newest first, with an optional
// unread filter.
func (s *NotificationService) ListByUser(userID uint, unreadOnly bool, page, pageSize int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("count notifications", err)
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&notifications).Error
	if err != nil {
		return nil, 0, apperrors.Internal("list notifications", err)
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return apperrors.Internal("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

package notification

import (
	"errors"
	"fmt"
	"time"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
	"auctionhub/internal/repository"
	"auctionhub/utils"
)

// Mailer delivers a notification by email. Email transport itself lives
// outside this service; implementations only need to accept the message.
type Mailer interface {
	Send(toEmail, subject, body string) error
}

// LogMailer is the default Mailer: it records the outgoing mail in the log
// instead of sending it.
type LogMailer struct{}

func (LogMailer) Send(toEmail, subject, body string) error {
	utils.Info("email delivery skipped (log mailer)", map[string]any{
		"to":      toEmail,
		"subject": subject,
	})
	return nil
}

// Service records notifications and forwards the important ones to a Mailer
type Service struct {
	repo   repository.AuctionDB
	mailer Mailer
}

// NewService creates a new notification Service instance
func NewService(repo repository.AuctionDB, mailer Mailer) *Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Service{repo: repo, mailer: mailer}
}

// emailWorthy returns true for notification types that also go out by email
func emailWorthy(t model.NotificationType) bool {
	return t == model.NotificationAuctionWon || t == model.NotificationBidOutbid
}

// Create persists a notification for its recipient. Won/outbid notifications
// are additionally handed to the mailer; a mail failure never fails the
// notification itself.
func (s *Service) Create(n model.Notification) (model.Notification, error) {
	if n.RecipientID == "" || n.Type == "" {
		return model.Notification{}, fmt.Errorf("notification: missing recipient or type")
	}
	if n.NotificationID == "" {
		n.NotificationID = utils.GenerateID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.CreateNotification(n); err != nil {
		return model.Notification{}, fmt.Errorf("notification: failed to create for user %s: %w", n.RecipientID, err)
	}

	if emailWorthy(n.Type) {
		s.sendEmail(n)
	}
	return n, nil
}

func (s *Service) sendEmail(n model.Notification) {
	recipient, err := s.repo.GetUserByID(n.RecipientID)
	if err != nil || recipient.Email == "" {
		if err != nil && !errors.Is(err, auctionerrors.ErrUserNotFound) {
			utils.Warn("notification: recipient lookup failed", map[string]any{
				"recipient_id": n.RecipientID,
				"error":        err.Error(),
			})
		}
		return
	}
	if err := s.mailer.Send(recipient.Email, n.Title, n.Message); err != nil {
		utils.Error("notification: email send failed", map[string]any{
			"recipient_id": n.RecipientID,
			"type":         string(n.Type),
			"error":        err.Error(),
		})
	}
}

// GetUserNotifications returns a user's notifications, newest first
func (s *Service) GetUserNotifications(userID string, limit int) ([]model.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("notification: empty user ID")
	}
	if limit <= 0 {
		limit = 20
	}
	notifs, err := s.repo.GetNotificationsByUser(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("notification: failed to list for user %s: %w", userID, err)
	}
	return notifs, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *Service) UnreadCount(userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("notification: empty user ID")
	}
	count, err := s.repo.CountUnreadNotifications(userID)
	if err != nil {
		return 0, fmt.Errorf("notification: failed to count unread for user %s: %w", userID, err)
	}
	return count, nil
}

// MarkAsRead marks one notification read; only its recipient may do so
func (s *Service) MarkAsRead(notificationID, userID string) error {
	if notificationID == "" || userID == "" {
		return fmt.Errorf("notification: missing notification ID or user ID")
	}
	if err := s.repo.MarkNotificationRead(notificationID, userID); err != nil {
		return fmt.Errorf("notification: failed to mark %s read: %w", notificationID, err)
	}
	return nil
}

// MarkAllAsRead marks every unread notification of a user as read
func (s *Service) MarkAllAsRead(userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("notification: empty user ID")
	}
	count, err := s.repo.MarkAllNotificationsRead(userID)
	if err != nil {
		return 0, fmt.Errorf("notification: failed to mark all read for user %s: %w", userID, err)
	}
	return count, nil
}

// AlreadyNotified reports whether the recipient already has a notification of
// the given type for the listing. Used by the ending-soon job for de-dup.
func (s *Service) AlreadyNotified(userID string, notifType model.NotificationType, listingID string) (bool, error) {
	return s.repo.HasNotification(userID, notifType, listingID)
}

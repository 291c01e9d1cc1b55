package notification

import (
	"errors"
	"testing"

	"auctionhub/internal/auctionerrors"
	model "auctionhub/internal/models"
	"auctionhub/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingMailer captures outgoing mail for assertions
type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) Send(toEmail, subject, body string) error {
	m.sent = append(m.sent, toEmail)
	return m.err
}

// Tests Create
func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("fills_id_and_timestamp", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := repository.NewMockAuctionDB(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().CreateNotification(gomock.Any()).Return(nil)

		created, err := service.Create(model.Notification{
			RecipientID: "user1",
			Type:        model.NotificationBidPlaced,
			Title:       "Bid placed",
		})
		require.NoError(t, err)

		_, parseErr := uuid.Parse(created.NotificationID)
		require.NoError(t, parseErr)
		require.False(t, created.CreatedAt.IsZero())
	})

	t.Run("missing_recipient", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := NewService(repository.NewMockAuctionDB(ctrl), nil)

		_, err := service.Create(model.Notification{Type: model.NotificationBidPlaced})
		require.Error(t, err)
	})

	t.Run("missing_type", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service := NewService(repository.NewMockAuctionDB(ctrl), nil)

		_, err := service.Create(model.Notification{RecipientID: "user1"})
		require.Error(t, err)
	})

	t.Run("repo_failure", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := repository.NewMockAuctionDB(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().CreateNotification(gomock.Any()).Return(errors.New("write failed"))

		_, err := service.Create(model.Notification{
			RecipientID: "user1",
			Type:        model.NotificationBidPlaced,
		})
		require.Error(t, err)
	})
}

// Won and outbid notifications go out by email; the rest stay in-app only
func TestService_Create_EmailDelivery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		notifType   model.NotificationType
		expectEmail bool
	}{
		{name: "auction_won_emails", notifType: model.NotificationAuctionWon, expectEmail: true},
		{name: "bid_outbid_emails", notifType: model.NotificationBidOutbid, expectEmail: true},
		{name: "bid_placed_in_app_only", notifType: model.NotificationBidPlaced, expectEmail: false},
		{name: "auction_ending_in_app_only", notifType: model.NotificationAuctionEnding, expectEmail: false},
		{name: "payment_received_in_app_only", notifType: model.NotificationPaymentReceived, expectEmail: false},
	}

	for _, tc := range tests {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := repository.NewMockAuctionDB(ctrl)
			mailer := &recordingMailer{}
			service := NewService(mockRepo, mailer)

			mockRepo.EXPECT().CreateNotification(gomock.Any()).Return(nil)
			if tc.expectEmail {
				mockRepo.EXPECT().GetUserByID("user1").Return(model.User{UserID: "user1", Email: "user1@example.com"}, nil)
			}

			_, err := service.Create(model.Notification{
				RecipientID: "user1",
				Type:        tc.notifType,
				Title:       "subject",
				Message:     "body",
			})
			require.NoError(t, err)

			if tc.expectEmail {
				require.Equal(t, []string{"user1@example.com"}, mailer.sent)
			} else {
				require.Empty(t, mailer.sent)
			}
		})
	}
}

// Mail problems never fail the notification itself
func TestService_Create_EmailFailuresSwallowed(t *testing.T) {
	t.Parallel()

	t.Run("recipient_missing", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := repository.NewMockAuctionDB(ctrl)
		mailer := &recordingMailer{}
		service := NewService(mockRepo, mailer)

		mockRepo.EXPECT().CreateNotification(gomock.Any()).Return(nil)
		mockRepo.EXPECT().GetUserByID("ghost").Return(model.User{}, auctionerrors.ErrUserNotFound)

		_, err := service.Create(model.Notification{
			RecipientID: "ghost",
			Type:        model.NotificationAuctionWon,
		})
		require.NoError(t, err)
		require.Empty(t, mailer.sent)
	})

	t.Run("send_fails", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRepo := repository.NewMockAuctionDB(ctrl)
		mailer := &recordingMailer{err: errors.New("smtp down")}
		service := NewService(mockRepo, mailer)

		mockRepo.EXPECT().CreateNotification(gomock.Any()).Return(nil)
		mockRepo.EXPECT().GetUserByID("user1").Return(model.User{UserID: "user1", Email: "user1@example.com"}, nil)

		_, err := service.Create(model.Notification{
			RecipientID: "user1",
			Type:        model.NotificationAuctionWon,
		})
		require.NoError(t, err)
	})
}

// Tests the read-side operations
func TestService_ReadOperations(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := repository.NewMockAuctionDB(ctrl)
	service := NewService(mockRepo, nil)

	t.Run("list_defaults_limit", func(t *testing.T) {
		mockRepo.EXPECT().GetNotificationsByUser("user1", 20).Return([]model.Notification{}, nil)
		notifs, err := service.GetUserNotifications("user1", 0)
		require.NoError(t, err)
		require.Empty(t, notifs)
	})

	t.Run("list_empty_user", func(t *testing.T) {
		_, err := service.GetUserNotifications("", 10)
		require.Error(t, err)
	})

	t.Run("unread_count", func(t *testing.T) {
		mockRepo.EXPECT().CountUnreadNotifications("user1").Return(3, nil)
		count, err := service.UnreadCount("user1")
		require.NoError(t, err)
		require.Equal(t, 3, count)
	})

	t.Run("mark_as_read", func(t *testing.T) {
		mockRepo.EXPECT().MarkNotificationRead("n1", "user1").Return(nil)
		require.NoError(t, service.MarkAsRead("n1", "user1"))
	})

	t.Run("mark_as_read_wrong_user", func(t *testing.T) {
		mockRepo.EXPECT().MarkNotificationRead("n1", "user2").Return(auctionerrors.ErrNotificationNotFound)
		err := service.MarkAsRead("n1", "user2")
		require.Error(t, err)
		require.True(t, errors.Is(err, auctionerrors.ErrNotificationNotFound))
	})

	t.Run("mark_as_read_missing_args", func(t *testing.T) {
		require.Error(t, service.MarkAsRead("", "user1"))
		require.Error(t, service.MarkAsRead("n1", ""))
	})

	t.Run("mark_all_as_read", func(t *testing.T) {
		mockRepo.EXPECT().MarkAllNotificationsRead("user1").Return(2, nil)
		count, err := service.MarkAllAsRead("user1")
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})

	t.Run("already_notified", func(t *testing.T) {
		mockRepo.EXPECT().HasNotification("user1", model.NotificationAuctionEnding, "l1").Return(true, nil)
		has, err := service.AlreadyNotified("user1", model.NotificationAuctionEnding, "l1")
		require.NoError(t, err)
		require.True(t, has)
	})
}

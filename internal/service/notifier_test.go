package service

import (
	"context"

	"shepherd/internal/models"
	"shepherd/internal/notifications"

	"github.com/stretchr/testify/mock"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(_ context.Context, recipientID uint, typ models.NotificationType, message string, ref models.Reference) (*models.Notification, error) {
	args := m.Called(int(recipientID), typ, message, ref)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &models.Notification{UserID: recipientID, Type: typ, Message: message}, nil
}

func (m *mockNotifier) FanOutToFollowers(_ context.Context, leaderID uint, typ models.NotificationType, message string, ref models.Reference) (*notifications.FanOutReport, error) {
	args := m.Called(int(leaderID), typ, message, ref)
	report, _ := args.Get(0).(*notifications.FanOutReport)
	return report, args.Error(1)
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chatzilla-server/push-service/internal/messaging"
	"chatzilla-server/push-service/internal/models"
)

// Mock MessageDispatcher
type MessageDispatcher struct {
	mock.Mock
}

func (m *MessageDispatcher) Dispatch(ctx context.Context, event messaging.MessageCreatedEvent) (*models.SendResult, error) {
	args := m.Called(ctx, event)
	var result *models.SendResult
	if args.Get(0) != nil {
		result = args.Get(0).(*models.SendResult)
	}
	return result, args.Error(1)
}

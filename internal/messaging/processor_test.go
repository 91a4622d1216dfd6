package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/messaging"
	messagingMocks "chatzilla-server/push-service/internal/messaging/mocks"
	"chatzilla-server/push-service/internal/models"
)

// fakeAcknowledger записывает вызовы ack/nack для проверки в тестах.
type fakeAcknowledger struct {
	acked        bool
	nacked       bool
	nackRequeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = true
	f.nackRequeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.nackRequeued = requeue
	return nil
}

func validEvent() messaging.MessageCreatedEvent {
	return messaging.MessageCreatedEvent{
		Scope:     messaging.ScopeIndividual,
		RoomID:    "room-1",
		MessageID: "msg-1",
		Message: models.Message{
			SenderID:   "u1",
			ReceiverID: "u2",
			Content:    "hi",
			SenderName: "Ana",
		},
	}
}

func TestProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful dispatch", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		event := validEvent()

		mockDispatcher.On("Dispatch", mock.Anything, event).
			Return(&models.SendResult{StatusCode: 200, Body: json.RawMessage(`{"id":"n1"}`)}, nil).Once()

		err := processor.Process(ctx, event)

		assert.NoError(t, err)
		mockDispatcher.AssertExpectations(t)
	})

	t.Run("Skip is not an error", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		event := validEvent()

		// Штатный пропуск: (nil, nil)
		mockDispatcher.On("Dispatch", mock.Anything, event).Return(nil, nil).Once()

		err := processor.Process(ctx, event)

		assert.NoError(t, err)
		mockDispatcher.AssertExpectations(t)
	})

	t.Run("Dispatcher error propagated", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		event := validEvent()
		dispatchErr := errors.New("store unavailable")

		mockDispatcher.On("Dispatch", mock.Anything, event).Return(nil, dispatchErr).Once()

		err := processor.Process(ctx, event)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, dispatchErr))
	})
}

func TestProcessor_ProcessDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid event is acked", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		ack := &fakeAcknowledger{}

		body, err := json.Marshal(validEvent())
		assert.NoError(t, err)

		mockDispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(event messaging.MessageCreatedEvent) bool {
			return event.MessageID == "msg-1" && event.Message.SenderID == "u1"
		})).Return(nil, nil).Once()

		processor.ProcessDelivery(ctx, amqp.Delivery{Acknowledger: ack, Body: body, DeliveryTag: 1})

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
		mockDispatcher.AssertExpectations(t)
	})

	t.Run("Malformed JSON is nacked without requeue", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		ack := &fakeAcknowledger{}

		processor.ProcessDelivery(ctx, amqp.Delivery{Acknowledger: ack, Body: []byte("{not json"), DeliveryTag: 2})

		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.nackRequeued)
		// Пайплайн не должен вызываться для битого события
		mockDispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})

	t.Run("Collaborator failure is nacked", func(t *testing.T) {
		mockDispatcher := new(messagingMocks.MessageDispatcher)
		processor := messaging.NewProcessor(zap.NewNop(), mockDispatcher)
		ack := &fakeAcknowledger{}

		body, err := json.Marshal(validEvent())
		assert.NoError(t, err)

		mockDispatcher.On("Dispatch", mock.Anything, mock.Anything).
			Return(nil, errors.New("provider unavailable")).Once()

		processor.ProcessDelivery(ctx, amqp.Delivery{Acknowledger: ack, Body: body, DeliveryTag: 3})

		assert.False(t, ack.acked)
		assert.True(t, ack.nacked)
		assert.False(t, ack.nackRequeued)
	})
}

package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"chatzilla-server/push-service/internal/models"
	"chatzilla-server/push-service/internal/service"
	serviceMocks "chatzilla-server/push-service/internal/service/mocks"
)

const (
	testAPIURL = "https://api.onesignal.example/notifications"
	testAPIKey = "test-rest-api-key"
)

func providerResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testRequest() models.NotificationRequest {
	return models.NotificationRequest{
		AppID:           testAppID,
		SubscriptionIDs: []string{"tok1", "tok2"},
		Title:           "Ana",
		Body:            "hi",
	}
}

func TestOneSignalSender_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Serializes provider envelope and auth header", func(t *testing.T) {
		mockClient := new(serviceMocks.HTTPClient)
		sender := service.NewOneSignalSender(mockClient, testAPIURL, testAPIKey, zap.NewNop())

		var captured *http.Request
		mockClient.On("Do", mock.AnythingOfType("*http.Request")).
			Run(func(args mock.Arguments) {
				captured = args.Get(0).(*http.Request)
			}).
			Return(providerResponse(200, `{"id":"notif-1"}`), nil).Once()

		result, err := sender.Send(ctx, testRequest())

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, 200, result.StatusCode)
		assert.JSONEq(t, `{"id":"notif-1"}`, string(result.Body))

		// Проверяем сам HTTP запрос
		assert.Equal(t, http.MethodPost, captured.Method)
		assert.Equal(t, testAPIURL, captured.URL.String())
		assert.Equal(t, "Basic "+testAPIKey, captured.Header.Get("Authorization"))
		assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))

		// И конверт провайдера: фиксированная локаль en
		bodyBytes, readErr := io.ReadAll(captured.Body)
		assert.NoError(t, readErr)
		var envelope map[string]any
		assert.NoError(t, json.Unmarshal(bodyBytes, &envelope))
		assert.Equal(t, testAppID, envelope["app_id"])
		assert.Equal(t, []any{"tok1", "tok2"}, envelope["include_subscription_ids"])
		assert.Equal(t, map[string]any{"en": "Ana"}, envelope["headings"])
		assert.Equal(t, map[string]any{"en": "hi"}, envelope["contents"])
	})

	t.Run("Non-success status returns result and error", func(t *testing.T) {
		mockClient := new(serviceMocks.HTTPClient)
		sender := service.NewOneSignalSender(mockClient, testAPIURL, testAPIKey, zap.NewNop())

		mockClient.On("Do", mock.AnythingOfType("*http.Request")).
			Return(providerResponse(400, `{"errors":["invalid app_id"]}`), nil).Once()

		result, err := sender.Send(ctx, testRequest())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "400")
		// Сырой ответ провайдера все равно возвращается для наблюдаемости
		assert.NotNil(t, result)
		assert.Equal(t, 400, result.StatusCode)
	})

	t.Run("Transport error is wrapped", func(t *testing.T) {
		mockClient := new(serviceMocks.HTTPClient)
		sender := service.NewOneSignalSender(mockClient, testAPIURL, testAPIKey, zap.NewNop())
		netErr := errors.New("connection refused")

		mockClient.On("Do", mock.AnythingOfType("*http.Request")).Return(nil, netErr).Once()

		result, err := sender.Send(ctx, testRequest())

		assert.Error(t, err)
		assert.True(t, errors.Is(err, netErr))
		assert.Nil(t, result)
	})

	t.Run("Empty subscription ids is a contract violation", func(t *testing.T) {
		mockClient := new(serviceMocks.HTTPClient)
		sender := service.NewOneSignalSender(mockClient, testAPIURL, testAPIKey, zap.NewNop())

		req := testRequest()
		req.SubscriptionIDs = nil

		result, err := sender.Send(ctx, req)

		assert.Error(t, err)
		assert.Nil(t, result)
		// До HTTP дело дойти не должно
		mockClient.AssertNotCalled(t, "Do", mock.Anything)
	})

	t.Run("Missing API key falls back to stub", func(t *testing.T) {
		mockClient := new(serviceMocks.HTTPClient)
		sender := service.NewOneSignalSender(mockClient, testAPIURL, "", zap.NewNop())

		result, err := sender.Send(ctx, testRequest())

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, http.StatusOK, result.StatusCode)
		mockClient.AssertNotCalled(t, "Do", mock.Anything)
	})
}

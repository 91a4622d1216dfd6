package mocks

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"chatzilla-server/push-service/internal/models"
)

// Mock UserStore
type UserStore struct {
	mock.Mock
}

func (m *UserStore) GetByIDs(ctx context.Context, ids []string) ([]models.UserRecord, error) {
	args := m.Called(ctx, ids)
	var records []models.UserRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]models.UserRecord)
	}
	return records, args.Error(1)
}

func (m *UserStore) BatchCeiling() int {
	args := m.Called()
	return args.Int(0)
}

// Mock GroupStore
type GroupStore struct {
	mock.Mock
}

func (m *GroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	args := m.Called(ctx, id)
	var group *models.Group
	if args.Get(0) != nil {
		group = args.Get(0).(*models.Group)
	}
	return group, args.Error(1)
}

// Mock NotificationSender
type NotificationSender struct {
	mock.Mock
}

func (m *NotificationSender) Send(ctx context.Context, req models.NotificationRequest) (*models.SendResult, error) {
	args := m.Called(ctx, req)
	var result *models.SendResult
	if args.Get(0) != nil {
		result = args.Get(0).(*models.SendResult)
	}
	return result, args.Error(1)
}

// Mock HTTPClient
type HTTPClient struct {
	mock.Mock
}

func (m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	var resp *http.Response
	if args.Get(0) != nil {
		resp = args.Get(0).(*http.Response)
	}
	return resp, args.Error(1)
}

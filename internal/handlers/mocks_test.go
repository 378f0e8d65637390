package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/services"
)

type MockLinkManager struct {
	mock.Mock
}

func (m *MockLinkManager) IssueCode(ctx context.Context, ownerID, currency, relayNumber string) (*services.IssuedCode, error) {
	args := m.Called(ctx, ownerID, currency, relayNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.IssuedCode), args.Error(1)
}

func (m *MockLinkManager) Status(ctx context.Context, ownerID string) (*models.LinkedIdentity, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkedIdentity), args.Error(1)
}

func (m *MockLinkManager) Unlink(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

type MockMessageHandler struct {
	mock.Mock
}

func (m *MockMessageHandler) HandleMessage(ctx context.Context, msg models.InboundMessage) models.Reply {
	args := m.Called(ctx, msg)
	return args.Get(0).(models.Reply)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) ValidSignature(url string, params map[string]string, signature string) bool {
	return m.Called(url, params, signature).Bool(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveTransaction(ctx context.Context, rec models.TransactionRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockStore) PendingTransactions(ctx context.Context, ownerID string) ([]models.TransactionRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TransactionRecord), args.Error(1)
}

func (m *MockStore) MarkSynced(ctx context.Context, ownerID string, ids []string) (int64, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Categories(ctx context.Context, ownerID string) ([]models.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockStore) ReplaceCategories(ctx context.Context, ownerID string, categories []models.Category) error {
	return m.Called(ctx, ownerID, categories).Error(0)
}

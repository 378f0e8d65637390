package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spenly/backend/internal/models"
	"github.com/spenly/backend/internal/oracle"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req oracle.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Name() string { return "mock" }

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) VerifyAndLink(ctx context.Context, code, address string) (*models.LinkOutcome, error) {
	args := m.Called(ctx, code, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkOutcome), args.Error(1)
}

func (m *MockLinker) IdentityFor(ctx context.Context, address string) (*models.LinkedIdentity, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkedIdentity), args.Error(1)
}

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) SaveTransaction(ctx context.Context, rec models.TransactionRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionStore) PendingTransactions(ctx context.Context, ownerID string) ([]models.TransactionRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TransactionRecord), args.Error(1)
}

func (m *MockTransactionStore) MarkSynced(ctx context.Context, ownerID string, ids []string) (int64, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) Categories(ctx context.Context, ownerID string) ([]models.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryStore) ReplaceCategories(ctx context.Context, ownerID string, categories []models.Category) error {
	args := m.Called(ctx, ownerID, categories)
	return args.Error(0)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, in ExtractionInput) (*models.ParsedTransaction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParsedTransaction), args.Error(1)
}

type MockMediaFetcher struct {
	mock.Mock
}

func (m *MockMediaFetcher) Fetch(ctx context.Context, url, contentType string) (*Media, error) {
	args := m.Called(ctx, url, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Media), args.Error(1)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, media *Media) (string, error) {
	args := m.Called(ctx, media)
	return args.String(0), args.Error(1)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, ownerID string, media *Media) (string, error) {
	args := m.Called(ctx, ownerID, media)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, to, text string) error {
	args := m.Called(ctx, to, text)
	return args.Error(0)
}

type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) ComposeReply(ctx context.Context, text string, intent models.Intent) (string, error) {
	args := m.Called(ctx, text, intent)
	return args.String(0), args.Error(1)
}

package voucher_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/storage"
	"github.com/sanad/backend/internal/infrastructure/voucherpdf"
	"github.com/stretchr/testify/mock"
)

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*voucher.Receipt, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByBarcodeID(ctx context.Context, barcodeID string) (*voucher.Receipt, error) {
	args := m.Called(ctx, barcodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*voucher.Receipt, error) {
	args := m.Called(ctx, receiptNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) UpdatePDFPath(ctx context.Context, organizationID, id uuid.UUID, path string) error {
	args := m.Called(ctx, organizationID, id, path)
	return args.Error(0)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*voucher.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucher.Organization), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req voucherpdf.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPDFStore struct {
	mock.Mock
}

func (m *MockPDFStore) Put(ctx context.Context, key string, data []byte, opts storage.PutOptions) error {
	args := m.Called(ctx, key, data, opts)
	return args.Error(0)
}

func (m *MockPDFStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFStore) Driver() string {
	return storage.DriverFilesystem
}

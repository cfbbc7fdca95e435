package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/interfaces/http/dto"
	"github.com/sanad/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// setJWTContext simulates an authenticated request without a real token
func setJWTContext(c *gin.Context, tenantID, userID uuid.UUID) {
	c.Set(middleware.JWTTenantIDKey, tenantID.String())
	c.Set(middleware.JWTUserIDKey, userID.String())
}

func authenticated(tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		setJWTContext(c, tenantID, uuid.New())
		c.Next()
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

type MockVoucherDocuments struct {
	mock.Mock
}

func (m *MockVoucherDocuments) Generate(ctx context.Context, tenantID, receiptID uuid.UUID) (*voucherapp.PDFResult, error) {
	args := m.Called(ctx, tenantID, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucherapp.PDFResult), args.Error(1)
}

func (m *MockVoucherDocuments) Get(ctx context.Context, tenantID, receiptID uuid.UUID) (*voucherapp.PDFResult, error) {
	args := m.Called(ctx, tenantID, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucherapp.PDFResult), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, candidate string) (*voucherapp.VerificationResult, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*voucherapp.VerificationResult), args.Error(1)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newVerifyRouter(v Verifier) *gin.Engine {
	h := NewVerifyHandler(v)
	router := gin.New()
	router.GET("/api/v1/receipts/verify", h.Verify)
	return router
}

func verifyRequest(router *gin.Engine, rawQuery string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/verify"+rawQuery, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestVerifyHandler_Found(t *testing.T) {
	verifier := new(MockVerifier)
	receipt := &voucher.PublicReceipt{
		ID:            uuid.MustParse("7d7c1c9e-0c53-4a4e-8d3e-5b2f0a9b1c11"),
		ReceiptNumber: "REC-2024-000001",
		ReceiptType:   voucher.KindReceipt,
		ReceiptTypeAR: voucher.KindReceipt.LabelAR(),
		Amount:        json.Number("1000.00"),
		RecipientName: "محمد",
		Date:          "2024-03-01",
		CreatedAt:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		BarcodeID:     "RCP-2024-000001",
		Organization:  voucher.PublicOrganization{NameAR: "جمعية البر", NameEN: "Al Birr"},
	}
	verifier.On("Verify", mock.Anything, "RCP-2024-000001").
		Return(&voucherapp.VerificationResult{Valid: true, Receipt: receipt}, nil)

	rec := verifyRequest(newVerifyRouter(verifier), "?barcode_id=RCP-2024-000001")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, "تم التحقق من الإيصال بنجاح", body["message"])
	assert.Equal(t, "Receipt verified successfully", body["message_en"])
	assert.Contains(t, rec.Body.String(), `"amount":1000.00`)
	assert.Contains(t, rec.Body.String(), `"barcode_id":"RCP-2024-000001"`)
	assert.NotContains(t, body, "error")
}

func TestVerifyHandler_NotFound(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "RCP-2024-999999").
		Return(&voucherapp.VerificationResult{Valid: false}, nil)

	rec := verifyRequest(newVerifyRouter(verifier), "?barcode_id=RCP-2024-999999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{
		"valid": false,
		"message": "الإيصال غير موجود أو الباركود غير صحيح",
		"message_en": "Receipt not found or invalid barcode"
	}`, rec.Body.String())
}

func TestVerifyHandler_RejectsBeforeLookup(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantBody string
	}{
		{
			name:     "missing parameter",
			query:    "",
			wantBody: `{"valid":false,"error":"Barcode ID is required","code":"BARCODE_REQUIRED"}`,
		},
		{
			name:     "empty parameter",
			query:    "?barcode_id=",
			wantBody: `{"valid":false,"error":"Barcode ID is required","code":"BARCODE_REQUIRED"}`,
		},
		{
			name:     "whitespace parameter",
			query:    "?barcode_id=" + url.QueryEscape("   "),
			wantBody: `{"valid":false,"error":"Barcode ID is required","code":"BARCODE_REQUIRED"}`,
		},
		{
			name:     "wrong shape",
			query:    "?barcode_id=RCP-24-1",
			wantBody: `{"valid":false,"error":"Invalid barcode format","code":"INVALID_BARCODE_FORMAT"}`,
		},
		{
			name:     "injection attempt",
			query:    "?barcode_id=" + url.QueryEscape("RCP-2024-000001' OR '1'='1"),
			wantBody: `{"valid":false,"error":"Invalid barcode format","code":"INVALID_BARCODE_FORMAT"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockVerifier)

			rec := verifyRequest(newVerifyRouter(verifier), tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		})
	}
}

func TestVerifyHandler_ServiceRejection(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "REC-2024-000001").Return(nil, voucherapp.ErrInvalidBarcodeFormat)

	rec := verifyRequest(newVerifyRouter(verifier), "?barcode_id=REC-2024-000001")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"valid":false,"error":"Invalid barcode format","code":"INVALID_BARCODE_FORMAT"}`, rec.Body.String())
}

func TestVerifyHandler_InternalError(t *testing.T) {
	verifier := new(MockVerifier)
	verifier.On("Verify", mock.Anything, "RCP-2024-000001").Return(nil, errors.New("connection reset"))

	rec := verifyRequest(newVerifyRouter(verifier), "?barcode_id=RCP-2024-000001")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
	assert.Contains(t, rec.Body.String(), `"valid":false`)
}

func TestVerifyHandler_RateLimited(t *testing.T) {
	h := NewVerifyHandler(new(MockVerifier))
	c, w := newTestContext()

	h.RateLimited(c)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, c.IsAborted())
	assert.Contains(t, w.Body.String(), `"valid":false`)
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.7\n%test\n")

func newReceiptRouter(docs VoucherDocuments, tenantID uuid.UUID) *gin.Engine {
	h := NewReceiptHandler(docs)
	router := gin.New()
	group := router.Group("/api/v1/receipts")
	if tenantID != uuid.Nil {
		group.Use(authenticated(tenantID))
	}
	group.POST("/generate-pdf", h.GeneratePDF)
	group.GET("/get-pdf", h.GetPDF)
	group.POST("/get-pdf", h.GetPDF)
	return router
}

func TestReceiptHandler_GeneratePDF(t *testing.T) {
	tenantID := uuid.New()
	receiptID := uuid.New()

	t.Run("returns attachment", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Generate", mock.Anything, tenantID, receiptID).Return(&voucherapp.PDFResult{
			Filename:    "REC-2024-000001.pdf",
			Content:     pdfBytes,
			Disposition: voucherapp.DispositionAttachment,
			Source:      voucherapp.SourceRendered,
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/generate-pdf",
			strings.NewReader(`{"receiptId":"`+receiptID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="REC-2024-000001.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, pdfBytes, rec.Body.Bytes())
		docs.AssertExpectations(t)
	})

	t.Run("logo precondition", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Generate", mock.Anything, tenantID, receiptID).Return(nil, voucher.ErrLogoRequired)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/generate-pdf",
			strings.NewReader(`{"receiptId":"`+receiptID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeLogoRequired, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "Organization logo is required")
	})

	t.Run("receipt not found", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Generate", mock.Anything, tenantID, receiptID).Return(nil, voucherapp.ErrReceiptNotFound)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/generate-pdf",
			strings.NewReader(`{"receiptId":"`+receiptID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, dto.ErrCodeReceiptNotFound, decodeResponse(t, rec).Error.Code)
	})

	t.Run("rejects invalid bodies", func(t *testing.T) {
		tests := []struct {
			name     string
			body     string
			wantCode string
		}{
			{"missing id", `{}`, dto.ErrCodeValidation},
			{"not a uuid", `{"receiptId":"42"}`, dto.ErrCodeValidation},
			{"malformed json", `{"receiptId":`, dto.ErrCodeInvalidJSON},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				docs := new(MockVoucherDocuments)

				req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/generate-pdf", strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
				rec := httptest.NewRecorder()
				newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tt.wantCode, decodeResponse(t, rec).Error.Code)
				docs.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("requires tenant claim", func(t *testing.T) {
		docs := new(MockVoucherDocuments)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/generate-pdf",
			strings.NewReader(`{"receiptId":"`+receiptID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, uuid.Nil).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, rec).Error.Code)
	})
}

func TestReceiptHandler_GetPDF(t *testing.T) {
	tenantID := uuid.New()
	receiptID := uuid.New()
	inline := &voucherapp.PDFResult{
		Filename:    "REC-2024-000007.pdf",
		Content:     pdfBytes,
		Disposition: voucherapp.DispositionInline,
		Source:      voucherapp.SourceStorage,
	}

	t.Run("receipt id from query", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Get", mock.Anything, tenantID, receiptID).Return(inline, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/get-pdf?receiptId="+receiptID.String(), nil)
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `inline; filename="REC-2024-000007.pdf"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
		assert.Equal(t, pdfBytes, rec.Body.Bytes())
	})

	t.Run("receipt id from body", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Get", mock.Anything, tenantID, receiptID).Return(inline, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/get-pdf",
			strings.NewReader(`{"receiptId":"`+receiptID.String()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		docs.AssertExpectations(t)
	})

	t.Run("query wins over body", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Get", mock.Anything, tenantID, receiptID).Return(inline, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/receipts/get-pdf?receiptId="+receiptID.String(),
			strings.NewReader(`{"receiptId":"`+uuid.NewString()+`"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		docs.AssertExpectations(t)
	})

	t.Run("missing receipt id", func(t *testing.T) {
		docs := new(MockVoucherDocuments)

		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/get-pdf", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "receiptId", resp.Error.Details[0].Field)
	})

	t.Run("generation failure is opaque", func(t *testing.T) {
		docs := new(MockVoucherDocuments)
		docs.On("Get", mock.Anything, tenantID, receiptID).Return(nil, voucherapp.ErrPDFGenerationFailed)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/get-pdf?receiptId="+receiptID.String(), nil)
		rec := httptest.NewRecorder()
		newReceiptRouter(docs, tenantID).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeResponse(t, rec)
		assert.Equal(t, dto.ErrCodePDFGenerationFailed, resp.Error.Code)
		assert.Equal(t, "Failed to generate PDF", resp.Error.Message)
	})
}

func TestWritePDF_SanitizesFilename(t *testing.T) {
	c, w := newTestContext()
	writePDF(c, &voucherapp.PDFResult{
		Filename:    "bad\"name\r\n.pdf",
		Content:     pdfBytes,
		Disposition: voucherapp.DispositionAttachment,
	})
	assert.Equal(t, `attachment; filename="badname.pdf"`, w.Header().Get("Content-Disposition"))
}

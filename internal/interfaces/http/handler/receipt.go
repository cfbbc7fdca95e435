package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/interfaces/http/dto"
)

// VoucherDocuments renders and retrieves voucher PDFs
type VoucherDocuments interface {
	Generate(ctx context.Context, tenantID, receiptID uuid.UUID) (*voucherapp.PDFResult, error)
	Get(ctx context.Context, tenantID, receiptID uuid.UUID) (*voucherapp.PDFResult, error)
}

// ReceiptHandler serves voucher documents to authenticated staff
type ReceiptHandler struct {
	BaseHandler
	documents VoucherDocuments
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(documents VoucherDocuments) *ReceiptHandler {
	return &ReceiptHandler{documents: documents}
}

// GeneratePDF godoc
// @ID           generateReceiptPDF
// @Summary      Regenerate a voucher PDF
// @Description  Renders the voucher again, replaces the stored copy and returns it as a download
// @Tags         receipts
// @Accept       json
// @Produce      application/pdf
// @Param        request body dto.ReceiptPDFRequest true "Receipt to render"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /receipts/generate-pdf [post]
func (h *ReceiptHandler) GeneratePDF(c *gin.Context) {
	tenantID, receiptID, ok := h.bindRequest(c, func(req *dto.ReceiptPDFRequest) error {
		return c.ShouldBindJSON(req)
	})
	if !ok {
		return
	}

	result, err := h.documents.Generate(c.Request.Context(), tenantID, receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePDF(c, result)
}

// GetPDF godoc
// @ID           getReceiptPDF
// @Summary      Get a voucher PDF
// @Description  Returns the stored voucher, rendering and storing it on first access
// @Tags         receipts
// @Produce      application/pdf
// @Param        receiptId query string false "Receipt ID (or JSON body on POST)"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /receipts/get-pdf [get]
func (h *ReceiptHandler) GetPDF(c *gin.Context) {
	tenantID, receiptID, ok := h.bindRequest(c, func(req *dto.ReceiptPDFRequest) error {
		if id := c.Query("receiptId"); id != "" || c.Request.Method == http.MethodGet {
			req.ReceiptID = id
			return binding.Validator.ValidateStruct(req)
		}
		return c.ShouldBindJSON(req)
	})
	if !ok {
		return
	}

	result, err := h.documents.Get(c.Request.Context(), tenantID, receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePDF(c, result)
}

func (h *ReceiptHandler) bindRequest(c *gin.Context, bind func(*dto.ReceiptPDFRequest) error) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Organization not found in token")
		return uuid.Nil, uuid.Nil, false
	}

	var req dto.ReceiptPDFRequest
	if err := bind(&req); err != nil {
		h.HandleBindError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	receiptID, err := uuid.Parse(req.ReceiptID)
	if err != nil {
		h.BadRequest(c, dto.ErrCodeValidationFormat, "Invalid receipt ID")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, receiptID, true
}

var filenameReplacer = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "")

func writePDF(c *gin.Context, result *voucherapp.PDFResult) {
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s"`,
		result.Disposition, filenameReplacer.Replace(result.Filename)))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

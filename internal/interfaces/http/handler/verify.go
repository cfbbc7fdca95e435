package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	voucherapp "github.com/sanad/backend/internal/application/voucher"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Verifier answers public authenticity lookups
type Verifier interface {
	Verify(ctx context.Context, candidate string) (*voucherapp.VerificationResult, error)
}

// VerifyHandler serves the public verification endpoint printed on vouchers.
// Its bodies are the flat VerifyResponse shape rather than dto.Response.
type VerifyHandler struct {
	verifier Verifier
}

// NewVerifyHandler creates a new VerifyHandler
func NewVerifyHandler(verifier Verifier) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// Verify godoc
// @ID           verifyReceipt
// @Summary      Verify a voucher
// @Description  Looks up a voucher by barcode ID or receipt number and returns its public details
// @Tags         receipts
// @Produce      json
// @Param        barcode_id query string true "Barcode ID, e.g. RCP-2024-000001"
// @Success      200 {object} dto.VerifyResponse
// @Failure      400 {object} dto.VerifyResponse
// @Failure      404 {object} dto.VerifyResponse
// @Failure      429 {object} dto.VerifyResponse
// @Router       /receipts/verify [get]
func (h *VerifyHandler) Verify(c *gin.Context) {
	var query dto.VerifyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		if strings.TrimSpace(query.BarcodeID) == "" {
			rejectVerify(c, voucherapp.ErrBarcodeRequired)
			return
		}
		rejectVerify(c, voucherapp.ErrInvalidBarcodeFormat)
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), query.BarcodeID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && dto.GetHTTPStatus(domainErr.Code) == http.StatusBadRequest {
			rejectVerify(c, domainErr)
			return
		}
		logger.L(c.Request.Context()).Error("Receipt verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			dto.NewVerifyErrorResponse(dto.ErrCodeInternal, "Internal server error"))
		return
	}

	if !result.Valid {
		c.JSON(http.StatusNotFound, dto.NewNotFoundVerifyResponse())
		return
	}
	c.JSON(http.StatusOK, dto.NewVerifiedResponse(result.Receipt))
}

// RateLimited writes the verification-shaped 429 body
func (h *VerifyHandler) RateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests,
		dto.NewVerifyErrorResponse(dto.ErrCodeRateLimited, "Too many requests, please try again later"))
}

func rejectVerify(c *gin.Context, err *shared.DomainError) {
	c.JSON(http.StatusBadRequest, dto.NewVerifyErrorResponse(err.Code, err.Message))
}

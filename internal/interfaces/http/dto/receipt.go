package dto

import "github.com/sanad/backend/internal/domain/voucher"

// Verification messages shown to whoever scanned the voucher
const (
	VerifySuccessMessageAR  = "تم التحقق من الإيصال بنجاح"
	VerifySuccessMessageEN  = "Receipt verified successfully"
	VerifyNotFoundMessageAR = "الإيصال غير موجود أو الباركود غير صحيح"
	VerifyNotFoundMessageEN = "Receipt not found or invalid barcode"
)

// ReceiptPDFRequest identifies the receipt whose document is requested.
// get-pdf also accepts receiptId as a query parameter.
type ReceiptPDFRequest struct {
	ReceiptID string `json:"receiptId" form:"receiptId" binding:"required,uuid"`
}

// VerifyQuery is the public verification query
type VerifyQuery struct {
	BarcodeID string `form:"barcode_id" binding:"required,barcode_id"`
}

// VerifyResponse is the public verification body. The shape is consumed by
// the printed QR landing page and is not wrapped in Response.
type VerifyResponse struct {
	Valid     bool                   `json:"valid"`
	Message   string                 `json:"message,omitempty"`
	MessageEN string                 `json:"message_en,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Code      string                 `json:"code,omitempty"`
	Receipt   *voucher.PublicReceipt `json:"receipt,omitempty"`
}

// NewVerifiedResponse creates the body for a genuine voucher
func NewVerifiedResponse(r *voucher.PublicReceipt) VerifyResponse {
	return VerifyResponse{
		Valid:     true,
		Message:   VerifySuccessMessageAR,
		MessageEN: VerifySuccessMessageEN,
		Receipt:   r,
	}
}

// NewNotFoundVerifyResponse creates the body for an unknown identifier
func NewNotFoundVerifyResponse() VerifyResponse {
	return VerifyResponse{
		Valid:     false,
		Message:   VerifyNotFoundMessageAR,
		MessageEN: VerifyNotFoundMessageEN,
	}
}

// NewVerifyErrorResponse creates the body for a rejected lookup
func NewVerifyErrorResponse(code, message string) VerifyResponse {
	return VerifyResponse{
		Valid: false,
		Error: message,
		Code:  code,
	}
}

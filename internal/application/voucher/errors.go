package voucher

import "github.com/sanad/backend/internal/domain/shared"

// Error codes returned by the voucher services
const (
	ErrCodeReceiptNotFound      = "RECEIPT_NOT_FOUND"
	ErrCodeOrganizationNotFound = "ORGANIZATION_NOT_FOUND"
	ErrCodeInvalidBarcodeFormat = "INVALID_BARCODE_FORMAT"
	ErrCodePDFGenerationFailed  = "PDF_GENERATION_FAILED"
	ErrCodePDFUploadFailed      = "PDF_UPLOAD_FAILED"
	ErrCodeBarcodeRequired      = "BARCODE_REQUIRED"
)

var (
	ErrReceiptNotFound      = shared.NewDomainError(ErrCodeReceiptNotFound, "Receipt not found")
	ErrOrganizationNotFound = shared.NewDomainError(ErrCodeOrganizationNotFound, "Organization not found")
	ErrInvalidBarcodeFormat = shared.NewDomainError(ErrCodeInvalidBarcodeFormat, "Invalid barcode format")
	ErrBarcodeRequired      = shared.NewDomainError(ErrCodeBarcodeRequired, "Barcode ID is required")
	ErrPDFGenerationFailed  = shared.NewDomainError(ErrCodePDFGenerationFailed, "Failed to generate PDF")
	ErrPDFUploadFailed      = shared.NewDomainError(ErrCodePDFUploadFailed, "Failed to upload PDF")
)

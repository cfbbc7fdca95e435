package dto

import "net/http"

// Transport error codes, ERR_<CATEGORY>[_<DETAIL>]
const (
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeInvalidInput       = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON        = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge    = "ERR_REQUEST_TOO_LARGE"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
)

// Voucher error codes. These are returned verbatim so clients can branch
// on them (LOGO_REQUIRED sends the user to onboarding).
const (
	ErrCodeLogoRequired         = "LOGO_REQUIRED"
	ErrCodeReceiptNotFound      = "RECEIPT_NOT_FOUND"
	ErrCodeOrganizationNotFound = "ORGANIZATION_NOT_FOUND"
	ErrCodeInvalidBarcodeFormat = "INVALID_BARCODE_FORMAT"
	ErrCodeBarcodeRequired      = "BARCODE_REQUIRED"
	ErrCodePDFGenerationFailed  = "PDF_GENERATION_FAILED"
	ErrCodePDFUploadFailed      = "PDF_UPLOAD_FAILED"
)

var statusByCode = map[string]int{
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeInvalidInput:       http.StatusBadRequest,
	ErrCodeInvalidJSON:        http.StatusBadRequest,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeLogoRequired:         http.StatusBadRequest,
	ErrCodeInvalidBarcodeFormat: http.StatusBadRequest,
	ErrCodeBarcodeRequired:      http.StatusBadRequest,
	ErrCodeReceiptNotFound:      http.StatusNotFound,
	ErrCodeOrganizationNotFound: http.StatusNotFound,
}

// GetHTTPStatus returns the status of an error code. Unknown codes,
// including the PDF failure codes, are server errors.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domain error codes that have a transport counterpart
var domainCodes = map[string]string{
	"NOT_FOUND":     ErrCodeNotFound,
	"INVALID_INPUT": ErrCodeInvalidInput,
}

// NormalizeErrorCode translates a generic domain code into its ERR_ form.
// Voucher codes and unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainCodes[code]; ok {
		return mapped
	}
	return code
}

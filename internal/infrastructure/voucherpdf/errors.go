package voucherpdf

import (
	"errors"
	"fmt"
)

// Render error codes. Each names the pipeline step that failed.
const (
	ErrCodeLogoRequired       = "LOGO_REQUIRED"
	ErrCodeTemplateLoadFailed = "TEMPLATE_LOAD_FAILED"
	ErrCodeFontLoadFailed     = "FONT_LOAD_FAILED"
	ErrCodeBindFailed         = "BIND_FAILED"
	ErrCodeFlattenFailed      = "FLATTEN_FAILED"
	ErrCodeBarcodeFailed      = "BARCODE_FAILED"
	ErrCodeSerializeFailed    = "SERIALIZE_FAILED"
	ErrCodeRenderFailed       = "RENDER_FAILED"
)

// RenderError represents a fatal voucher rendering error
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewRenderError creates a new render error
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// RenderErrorCode returns the code of a RenderError in err's chain, or "".
func RenderErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

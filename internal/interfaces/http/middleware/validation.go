package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/interfaces/http/dto"
)

// BarcodeIDTag validates the public verification identifier shape
const BarcodeIDTag = "barcode_id"

// SetupValidator configures gin's validator: errors use json/form tag names
// and the barcode_id tag is registered.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	RegisterValidations(v)
	return nil
}

// RegisterValidations installs the custom tags on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// registration only fails for an empty tag
	_ = v.RegisterValidation(BarcodeIDTag, func(fl validator.FieldLevel) bool {
		return voucher.IsValidBarcodeID(strings.TrimSpace(fl.Field().String()))
	})
}

// FormatValidationErrors builds the 400 body listing every failed field
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	errors.As(err, &fieldErrs)

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		code := dto.ErrCodeValidationFormat
		if fe.Tag() == "required" {
			code = dto.ErrCodeValidationRequired
		}
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe), Code: code})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers the request with the validation body
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// FirstFailedTag returns the tag of the first failed rule, or "" when err is
// not a validation error.
func FirstFailedTag(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Tag()
	}
	return ""
}

var fixedMessages = map[string]string{
	"required":   "This field is required",
	"uuid":       "Invalid UUID format",
	BarcodeIDTag: "Must look like RCP-2024-000001",
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit
	case "max":
		return "Must be at most " + fe.Param() + unit
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return "Invalid value"
}

package voucher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier prefixes accepted as public lookup keys
const (
	BarcodePrefix       = "RCP"
	ReceiptNumberPrefix = "REC"
)

var identifierPattern = regexp.MustCompile(`^[A-Z]{3}-\d{4}-\d{6}$`)

// GenerateBarcodeID formats a verification identifier as PREFIX-YYYY-NNNNNN.
func GenerateBarcodeID(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%04d-%06d", prefix, year, sequence)
}

// BarcodeIDFromReceiptNumber derives the barcode identifier from the numeric tail of a receipt number.
func BarcodeIDFromReceiptNumber(receiptNumber string, year int) (string, error) {
	tail := receiptNumber
	if i := strings.LastIndex(receiptNumber, "-"); i >= 0 {
		tail = receiptNumber[i+1:]
	}
	seq, err := strconv.Atoi(tail)
	if err != nil || seq < 0 || len(tail) > 6 {
		return "", fmt.Errorf("receipt number %q has no numeric sequence", receiptNumber)
	}
	return GenerateBarcodeID(BarcodePrefix, year, seq), nil
}

// HasIdentifierShape checks only the fixed PREFIX-YYYY-NNNNNN shape.
func HasIdentifierShape(candidate string) bool {
	return identifierPattern.MatchString(candidate)
}

// IsValidBarcodeID accepts well-shaped identifiers carrying a known prefix
func IsValidBarcodeID(candidate string) bool {
	if !HasIdentifierShape(candidate) {
		return false
	}
	switch candidate[:3] {
	case BarcodePrefix, ReceiptNumberPrefix:
		return true
	}
	return false
}

// IsReceiptNumber reports whether the identifier uses the receipt-number prefix
func IsReceiptNumber(candidate string) bool {
	return strings.HasPrefix(candidate, ReceiptNumberPrefix+"-")
}

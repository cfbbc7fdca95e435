package voucher

import (
	"github.com/sanad/backend/internal/domain/voucher"
)

// Disposition tells the transport how the document should be presented
type Disposition string

const (
	DispositionAttachment Disposition = "attachment"
	DispositionInline     Disposition = "inline"
)

// Source records where the returned document bytes came from
type Source string

const (
	SourceStorage  Source = "storage"
	SourceRendered Source = "rendered"
)

// PDFResult is a rendered or stored voucher document
type PDFResult struct {
	Filename    string
	Content     []byte
	Disposition Disposition
	Source      Source
	// StoragePath is the object key now recorded on the receipt, if any.
	StoragePath string
}

// VerificationResult is the outcome of a public lookup. A miss is a
// result with Valid false, not an error.
type VerificationResult struct {
	Valid   bool                   `json:"valid"`
	Receipt *voucher.PublicReceipt `json:"receipt,omitempty"`
}

func filenameFor(r *voucher.Receipt) string {
	return r.ReceiptNumber + ".pdf"
}

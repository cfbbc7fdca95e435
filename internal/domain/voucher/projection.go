package voucher

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PublicReceipt is the only view of a receipt exposed to unauthenticated
// verification callers. Bank details, national ids and stored document
// paths are deliberately absent.
type PublicReceipt struct {
	ID            uuid.UUID          `json:"id"`
	ReceiptNumber string             `json:"receipt_number"`
	ReceiptType   Kind               `json:"receipt_type"`
	ReceiptTypeAR string             `json:"receipt_type_ar"`
	Amount        json.Number        `json:"amount"`
	RecipientName string             `json:"recipient_name"`
	Date          string             `json:"date"`
	CreatedAt     time.Time          `json:"created_at"`
	BarcodeID     string             `json:"barcode_id"`
	Organization  PublicOrganization `json:"organization"`
}

// PublicOrganization is the issuer block of a PublicReceipt
type PublicOrganization struct {
	NameAR                 string `json:"name_ar"`
	NameEN                 string `json:"name_en"`
	CommercialRegistration string `json:"commercial_registration"`
	TaxNumber              string `json:"tax_number"`
}

// NewPublicReceipt projects a receipt and its issuer. org may be nil when
// the issuer row is gone; the organization block is then empty.
func NewPublicReceipt(r *Receipt, org *Organization) *PublicReceipt {
	p := &PublicReceipt{
		ID:            r.ID,
		ReceiptNumber: r.ReceiptNumber,
		ReceiptType:   r.Kind,
		ReceiptTypeAR: r.Kind.LabelAR(),
		Amount:        json.Number(r.Amount.StringFixed(2)),
		RecipientName: r.RecipientName,
		Date:          r.Date.Format(time.DateOnly),
		CreatedAt:     r.CreatedAt,
		BarcodeID:     r.BarcodeID,
	}
	if org != nil {
		p.Organization = PublicOrganization{
			NameAR:                 org.NameAR,
			NameEN:                 org.NameEN,
			CommercialRegistration: org.CommercialRegistration,
			TaxNumber:              org.TaxNumber,
		}
	}
	return p
}

package voucher

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind distinguishes money-in from money-out vouchers
type Kind string

const (
	KindReceipt Kind = "receipt" // Money received by the organization
	KindPayment Kind = "payment" // Money paid out by the organization
)

// IsValid checks if the kind is a valid Kind
func (k Kind) IsValid() bool {
	return k == KindReceipt || k == KindPayment
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// LabelAR returns the Arabic document title for the kind
func (k Kind) LabelAR() string {
	if k == KindReceipt {
		return "سند قبض"
	}
	return "سند صرف"
}

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// OrCash returns the method, treating an empty value as cash.
func (m PaymentMethod) OrCash() PaymentMethod {
	if strings.TrimSpace(string(m)) == "" {
		return PaymentMethodCash
	}
	return m
}

// Receipt is a single voucher issued by an organization.
// Once created it is immutable except for the rendered PDF pointer.
type Receipt struct {
	shared.TenantEntity
	ReceiptNumber  string
	Kind           Kind
	RecipientName  string
	Amount         decimal.Decimal
	VATAmount      *decimal.Decimal
	TotalAmount    *decimal.Decimal
	Description    string
	PaymentMethod  PaymentMethod
	BankName       string
	ChequeNumber   string
	TransferNumber string
	NationalIDFrom string
	NationalIDTo   string
	Date           time.Time
	BarcodeID      string
	PDFPath        string
}

// VAT returns the tax amount, zero when absent
func (r *Receipt) VAT() decimal.Decimal {
	if r.VATAmount == nil {
		return decimal.Zero
	}
	return *r.VATAmount
}

// Total returns amount + tax.
func (r *Receipt) Total() decimal.Decimal {
	return r.Amount.Add(r.VAT())
}

// Validate checks the receipt invariants
func (r *Receipt) Validate() error {
	if strings.TrimSpace(r.ReceiptNumber) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Receipt number is required")
	}
	if !r.Kind.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Receipt type must be receipt or payment")
	}
	if strings.TrimSpace(r.RecipientName) == "" {
		return shared.NewDomainError("INVALID_INPUT", "Recipient name is required")
	}
	if !r.Amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Amount must be positive")
	}
	if r.VAT().IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "VAT amount cannot be negative")
	}
	if r.TotalAmount != nil && !r.TotalAmount.Equal(r.Total()) {
		return shared.NewDomainError("INVALID_INPUT", "Total amount must equal amount plus VAT")
	}

	method := r.PaymentMethod.OrCash()
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unsupported payment method: "+string(r.PaymentMethod))
	}

	bank := strings.TrimSpace(r.BankName)
	cheque := strings.TrimSpace(r.ChequeNumber)
	transfer := strings.TrimSpace(r.TransferNumber)
	switch method {
	case PaymentMethodCheck:
		if bank == "" || cheque == "" {
			return shared.NewDomainError("INVALID_INPUT", "Bank name and cheque number are required for cheque payments")
		}
		if transfer != "" {
			return shared.NewDomainError("INVALID_INPUT", "Transfer number is not allowed for cheque payments")
		}
	case PaymentMethodBankTransfer:
		if bank == "" || transfer == "" {
			return shared.NewDomainError("INVALID_INPUT", "Bank name and transfer number are required for bank transfers")
		}
		if cheque != "" {
			return shared.NewDomainError("INVALID_INPUT", "Cheque number is not allowed for bank transfers")
		}
	default:
		if bank != "" || cheque != "" || transfer != "" {
			return shared.NewDomainError("INVALID_INPUT", "Bank details are not allowed for cash payments")
		}
	}

	if r.BarcodeID != "" && !IsValidBarcodeID(r.BarcodeID) {
		return shared.NewDomainError("INVALID_INPUT", "Barcode ID has an invalid format")
	}
	return nil
}

// HasPDF reports whether a rendered document was stored before
func (r *Receipt) HasPDF() bool {
	return strings.TrimSpace(r.PDFPath) != ""
}

// AttachPDF records where the rendered document was stored
func (r *Receipt) AttachPDF(path string) error {
	if strings.TrimSpace(path) == "" {
		return shared.NewDomainError("INVALID_INPUT", "PDF path is required")
	}
	r.PDFPath = path
	r.Touch()
	return nil
}

// StorageKey builds the object key for a rendered document.
// Keys embed the organization, receipt number and a millisecond timestamp.
func (r *Receipt) StorageKey(at time.Time) string {
	return r.TenantID.String() + "/" + r.ReceiptNumber + "-" + strconv.FormatInt(at.UnixMilli(), 10) + ".pdf"
}

// NewReceiptParams carries the inputs for NewReceipt
type NewReceiptParams struct {
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	ReceiptNumber  string
	Kind           Kind
	RecipientName  string
	Amount         decimal.Decimal
	VATAmount      *decimal.Decimal
	Description    string
	PaymentMethod  PaymentMethod
	BankName       string
	ChequeNumber   string
	TransferNumber string
	NationalIDFrom string
	NationalIDTo   string
	Date           time.Time
	BarcodeID      string
}

// NewReceipt creates a validated receipt with its total computed
func NewReceipt(p NewReceiptParams) (*Receipt, error) {
	r := &Receipt{
		TenantEntity:   shared.NewTenantEntityWithCreator(p.OrganizationID, p.CreatedBy),
		ReceiptNumber:  p.ReceiptNumber,
		Kind:           p.Kind,
		RecipientName:  p.RecipientName,
		Amount:         p.Amount,
		VATAmount:      p.VATAmount,
		Description:    p.Description,
		PaymentMethod:  p.PaymentMethod.OrCash(),
		BankName:       p.BankName,
		ChequeNumber:   p.ChequeNumber,
		TransferNumber: p.TransferNumber,
		NationalIDFrom: p.NationalIDFrom,
		NationalIDTo:   p.NationalIDTo,
		Date:           p.Date,
		BarcodeID:      p.BarcodeID,
	}
	total := r.Total()
	r.TotalAmount = &total
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

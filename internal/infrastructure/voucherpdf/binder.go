package voucherpdf

import (
	"time"

	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// FieldValues maps template field names to display text
type FieldValues map[string]string

// Get returns the value and whether the binder produced it
func (v FieldValues) Get(name string) (string, bool) {
	s, ok := v[name]
	return s, ok
}

// Payment method display labels
var paymentMethodLabels = map[voucher.PaymentMethod]string{
	voucher.PaymentMethodCash:         "نقداً",
	voucher.PaymentMethodCheck:        "شيك",
	voucher.PaymentMethodBankTransfer: "حوالة بنكية",
}

// PaymentMethodLabel returns the display label, passing unknown methods through unchanged
func PaymentMethodLabel(m voucher.PaymentMethod) string {
	m = m.OrCash()
	if label, ok := paymentMethodLabels[m]; ok {
		return label
	}
	return string(m)
}

// Binder produces field values from a receipt and its organization
type Binder struct {
	location *time.Location
}

// NewBinder creates a binder formatting dates in loc (UTC when nil)
func NewBinder(loc *time.Location) *Binder {
	if loc == nil {
		loc = time.UTC
	}
	return &Binder{location: loc}
}

// Bind maps the receipt and organization onto template fields.
// Text is used verbatim apart from Eastern Arabic digit normalization.
func (b *Binder) Bind(r *voucher.Receipt, org *voucher.Organization) FieldValues {
	total := r.Total()
	values := FieldValues{
		FieldCompanyName:        org.NameAR,
		FieldCompanyDescription: org.Description,
		FieldAddress:            org.Address,
		FieldPhone:              org.Phone,
		FieldVATRight:           org.TaxNumber,
		FieldVATLeft:            org.TaxNumber,
		FieldCRRight:            org.CommercialRegistration,
		FieldCRLeft:             org.CommercialRegistration,
		FieldReceiptNumber:      r.ReceiptNumber,
		FieldDate:               r.Date.In(b.location).Format("02-01-2006"),
		FieldTime:               r.CreatedAt.In(b.location).Format("15:04"),
		FieldPurpose:            r.Description,
		FieldAmountWithoutVAT:   FormatMoney(r.Amount),
		FieldVAT:                FormatMoney(r.VAT()),
		FieldTotal:              FormatMoney(total),
		FieldAmountWithVAT:      FormatMoney(total),
		FieldDocType:            r.Kind.LabelAR(),
		FieldPaymentMethod:      PaymentMethodLabel(r.PaymentMethod),
		FieldNationalIDFrom:     r.NationalIDFrom,
		FieldNationalIDTo:       r.NationalIDTo,
		FieldAmountInWords:      AmountInWords(total),
	}

	if r.Kind == voucher.KindReceipt {
		values[FieldFromName] = r.RecipientName
		values[FieldToName] = org.NameAR
	} else {
		values[FieldFromName] = org.NameAR
		values[FieldToName] = r.RecipientName
	}

	switch r.PaymentMethod.OrCash() {
	case voucher.PaymentMethodCheck:
		values[FieldChequeBankName] = r.BankName
		values[FieldChequeNumber] = r.ChequeNumber
	case voucher.PaymentMethodBankTransfer:
		values[FieldTransferBankName] = r.BankName
		values[FieldTransferNumber] = r.TransferNumber
	}

	for name, value := range values {
		values[name] = NormalizeDigits(value)
	}
	return values
}

// FormatMoney renders an amount with exactly two decimals
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NormalizeDigits maps Arabic-Indic and Extended Arabic-Indic digits to ASCII digits.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(digitNormalizer, s)
	if err != nil {
		return s
	}
	return out
}

var digitNormalizer = runes.Map(func(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
})

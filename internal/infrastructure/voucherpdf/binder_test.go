package voucherpdf

import (
	"testing"
	"time"

	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBinder_SwapsPartiesByKind(t *testing.T) {
	org := newTestOrganization("logo.png")
	b := NewBinder(nil)

	r := newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCash)
	values := b.Bind(r, org)
	assert.Equal(t, "Ahmed", values[FieldFromName])
	assert.Equal(t, org.NameAR, values[FieldToName])
	assert.Equal(t, "سند قبض", values[FieldDocType])

	r.Kind = voucher.KindPayment
	values = b.Bind(r, org)
	assert.Equal(t, org.NameAR, values[FieldFromName])
	assert.Equal(t, "Ahmed", values[FieldToName])
	assert.Equal(t, "سند صرف", values[FieldDocType])
}

func TestBinder_MoneyAndTotals(t *testing.T) {
	r := newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCash)
	r.Amount = decimal.RequireFromString("1000.5")
	vat := decimal.RequireFromString("150.075")
	r.VATAmount = &vat

	values := NewBinder(nil).Bind(r, newTestOrganization("logo.png"))
	assert.Equal(t, "1000.50", values[FieldAmountWithoutVAT])
	assert.Equal(t, "150.08", values[FieldVAT])
	assert.Equal(t, r.Amount.Add(vat).StringFixed(2), values[FieldTotal])
	assert.Equal(t, values[FieldTotal], values[FieldAmountWithVAT])
}

func TestBinder_VATDefaultsToZero(t *testing.T) {
	r := newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCash)
	values := NewBinder(nil).Bind(r, newTestOrganization("logo.png"))
	assert.Equal(t, "0.00", values[FieldVAT])
	assert.Equal(t, "1000.00", values[FieldTotal])
}

func TestBinder_DateAndTime(t *testing.T) {
	r := newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCash)
	r.CreatedAt = time.Date(2024, 3, 5, 21, 7, 0, 0, time.UTC)

	values := NewBinder(nil).Bind(r, newTestOrganization("logo.png"))
	assert.Equal(t, "05-03-2024", values[FieldDate])
	assert.Equal(t, "21:07", values[FieldTime])

	riyadh := time.FixedZone("AST", 3*60*60)
	values = NewBinder(riyadh).Bind(r, newTestOrganization("logo.png"))
	assert.Equal(t, "00:07", values[FieldTime])
}

func TestBinder_OrganizationIdentifiers(t *testing.T) {
	org := newTestOrganization("logo.png")
	values := NewBinder(nil).Bind(newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCash), org)
	assert.Equal(t, org.TaxNumber, values[FieldVATRight])
	assert.Equal(t, org.TaxNumber, values[FieldVATLeft])
	assert.Equal(t, org.CommercialRegistration, values[FieldCRRight])
	assert.Equal(t, org.CommercialRegistration, values[FieldCRLeft])
	assert.Equal(t, "REC-2024-000042", values[FieldReceiptNumber])
}

func TestBinder_MethodSpecificValues(t *testing.T) {
	r := newTestReceipt(voucher.KindReceipt, voucher.PaymentMethodCheck)
	r.BankName = "Bank A"
	r.ChequeNumber = "CH-77"

	values := NewBinder(nil).Bind(r, newTestOrganization("logo.png"))
	assert.Equal(t, "Bank A", values[FieldChequeBankName])
	assert.Equal(t, "CH-77", values[FieldChequeNumber])
	_, hasTransfer := values[FieldTransferNumber]
	assert.False(t, hasTransfer)
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, "نقداً", PaymentMethodLabel(voucher.PaymentMethodCash))
	assert.Equal(t, "شيك", PaymentMethodLabel(voucher.PaymentMethodCheck))
	assert.Equal(t, "حوالة بنكية", PaymentMethodLabel(voucher.PaymentMethodBankTransfer))
	assert.Equal(t, "نقداً", PaymentMethodLabel(""))
	assert.Equal(t, "mada", PaymentMethodLabel("mada"))
}

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "0123456789", NormalizeDigits("٠١٢٣٤٥٦٧٨٩"))
	assert.Equal(t, "45", NormalizeDigits("۴۵"))
	assert.Equal(t, "شركة 12", NormalizeDigits("شركة ١٢"))
}

func TestBinder_TextIsVerbatim(t *testing.T) {
	org := newTestOrganization("logo.png")
	org.NameAR = "مؤسسة  النور"
	values := NewBinder(nil).Bind(newTestReceipt(voucher.KindPayment, voucher.PaymentMethodCash), org)
	assert.Equal(t, "مؤسسة  النور", values[FieldFromName])
}

package voucher

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() NewReceiptParams {
	return NewReceiptParams{
		OrganizationID: uuid.New(),
		CreatedBy:      uuid.New(),
		ReceiptNumber:  "REC-2024-000042",
		Kind:           KindReceipt,
		RecipientName:  "Ahmed",
		Amount:         decimal.NewFromInt(1000),
		PaymentMethod:  PaymentMethodCash,
		Date:           time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		BarcodeID:      "RCP-2024-000042",
	}
}

func TestNewReceipt_ComputesTotal(t *testing.T) {
	p := validParams()
	vat := decimal.NewFromInt(150)
	p.VATAmount = &vat

	r, err := NewReceipt(p)
	require.NoError(t, err)
	require.NotNil(t, r.TotalAmount)
	assert.True(t, r.TotalAmount.Equal(decimal.NewFromInt(1150)))
	assert.True(t, r.Total().Equal(decimal.NewFromInt(1150)))
}

func TestReceipt_VATDefaultsToZero(t *testing.T) {
	r, err := NewReceipt(validParams())
	require.NoError(t, err)
	assert.True(t, r.VAT().IsZero())
	assert.True(t, r.Total().Equal(decimal.NewFromInt(1000)))
}

func TestNewReceipt_EmptyMethodIsCash(t *testing.T) {
	p := validParams()
	p.PaymentMethod = ""
	r, err := NewReceipt(p)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCash, r.PaymentMethod)
}

func TestReceipt_Validate_MethodSpecificFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *NewReceiptParams)
		wantErr bool
	}{
		{"cash without bank details", func(p *NewReceiptParams) {}, false},
		{"cash with bank name", func(p *NewReceiptParams) { p.BankName = "Bank A" }, true},
		{"cheque complete", func(p *NewReceiptParams) {
			p.PaymentMethod = PaymentMethodCheck
			p.BankName = "Bank A"
			p.ChequeNumber = "CH-1"
		}, false},
		{"cheque missing number", func(p *NewReceiptParams) {
			p.PaymentMethod = PaymentMethodCheck
			p.BankName = "Bank A"
		}, true},
		{"cheque with transfer number", func(p *NewReceiptParams) {
			p.PaymentMethod = PaymentMethodCheck
			p.BankName = "Bank A"
			p.ChequeNumber = "CH-1"
			p.TransferNumber = "TX1"
		}, true},
		{"transfer complete", func(p *NewReceiptParams) {
			p.PaymentMethod = PaymentMethodBankTransfer
			p.BankName = "Bank A"
			p.TransferNumber = "TX123"
		}, false},
		{"transfer missing bank", func(p *NewReceiptParams) {
			p.PaymentMethod = PaymentMethodBankTransfer
			p.TransferNumber = "TX123"
		}, true},
		{"unknown method", func(p *NewReceiptParams) { p.PaymentMethod = "crypto" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewReceipt(p)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "INVALID_INPUT", shared.CodeOf(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestReceipt_Validate_TotalMismatch(t *testing.T) {
	r, err := NewReceipt(validParams())
	require.NoError(t, err)

	wrong := decimal.NewFromInt(999)
	r.TotalAmount = &wrong
	assert.Error(t, r.Validate())
}

func TestReceipt_AttachPDF(t *testing.T) {
	r, err := NewReceipt(validParams())
	require.NoError(t, err)
	assert.False(t, r.HasPDF())

	assert.Error(t, r.AttachPDF("  "))
	require.NoError(t, r.AttachPDF("org/REC-2024-000042-1.pdf"))
	assert.True(t, r.HasPDF())
}

func TestReceipt_StorageKey(t *testing.T) {
	r, err := NewReceipt(validParams())
	require.NoError(t, err)

	at := time.UnixMilli(1717171717171)
	assert.Equal(t, r.TenantID.String()+"/REC-2024-000042-1717171717171.pdf", r.StorageKey(at))
}

func TestKind_LabelAR(t *testing.T) {
	assert.Equal(t, "سند قبض", KindReceipt.LabelAR())
	assert.Equal(t, "سند صرف", KindPayment.LabelAR())
}

func TestOrganization_EnsureRenderable(t *testing.T) {
	tests := []struct {
		name string
		logo string
		ok   bool
	}{
		{"empty", "", false},
		{"blank", "   ", false},
		{"placeholder", PlaceholderLogo, false},
		{"real", "https://cdn.example.com/logo.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := &Organization{NameAR: "شركة المثال", LogoURL: tt.logo}
			err := org.EnsureRenderable()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrLogoRequired)
		})
	}

	var nilOrg *Organization
	assert.ErrorIs(t, nilOrg.EnsureRenderable(), ErrLogoRequired)
}

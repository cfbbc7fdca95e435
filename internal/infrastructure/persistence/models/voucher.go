package models

import (
	"time"

	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/shopspring/decimal"
)

// ReceiptModel is the persistence model for the Receipt entity.
type ReceiptModel struct {
	OrganizationOwnedModel
	ReceiptNumber  string                `gorm:"type:varchar(50);not null;index"`
	ReceiptType    voucher.Kind          `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	VATAmount      *decimal.Decimal      `gorm:"type:decimal(18,2)"`
	TotalAmount    *decimal.Decimal      `gorm:"type:decimal(18,2)"`
	RecipientName  string                `gorm:"type:varchar(200);not null"`
	Description    string                `gorm:"type:text;not null;default:''"`
	PaymentMethod  voucher.PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'"`
	BankName       string                `gorm:"type:varchar(200);not null;default:''"`
	ChequeNumber   string                `gorm:"type:varchar(50);not null;default:''"`
	TransferNumber string                `gorm:"type:varchar(50);not null;default:''"`
	NationalIDFrom string                `gorm:"type:varchar(20);not null;default:''"`
	NationalIDTo   string                `gorm:"type:varchar(20);not null;default:''"`
	Date           time.Time             `gorm:"type:date;not null"`
	BarcodeID      string                `gorm:"type:varchar(20);not null;default:'';index"`
	PDFURL         string                `gorm:"column:pdf_url;type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt
func (m *ReceiptModel) ToDomain() *voucher.Receipt {
	return &voucher.Receipt{
		TenantEntity:   m.tenantEntity(),
		ReceiptNumber:  m.ReceiptNumber,
		Kind:           m.ReceiptType,
		RecipientName:  m.RecipientName,
		Amount:         m.Amount,
		VATAmount:      m.VATAmount,
		TotalAmount:    m.TotalAmount,
		Description:    m.Description,
		PaymentMethod:  m.PaymentMethod,
		BankName:       m.BankName,
		ChequeNumber:   m.ChequeNumber,
		TransferNumber: m.TransferNumber,
		NationalIDFrom: m.NationalIDFrom,
		NationalIDTo:   m.NationalIDTo,
		Date:           m.Date,
		BarcodeID:      m.BarcodeID,
		PDFPath:        m.PDFURL,
	}
}

// FromDomain populates the persistence model from a domain Receipt
func (m *ReceiptModel) FromDomain(r *voucher.Receipt) {
	m.OrganizationOwnedModel = ownedModelOf(r.TenantEntity)
	m.ReceiptNumber = r.ReceiptNumber
	m.ReceiptType = r.Kind
	m.Amount = r.Amount
	m.VATAmount = r.VATAmount
	m.TotalAmount = r.TotalAmount
	m.RecipientName = r.RecipientName
	m.Description = r.Description
	m.PaymentMethod = r.PaymentMethod.OrCash()
	m.BankName = r.BankName
	m.ChequeNumber = r.ChequeNumber
	m.TransferNumber = r.TransferNumber
	m.NationalIDFrom = r.NationalIDFrom
	m.NationalIDTo = r.NationalIDTo
	m.Date = r.Date
	m.BarcodeID = r.BarcodeID
	m.PDFURL = r.PDFPath
}

// ReceiptModelFromDomain creates a persistence model from a domain Receipt
func ReceiptModelFromDomain(r *voucher.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// OrganizationModel is the persistence model for the Organization entity.
type OrganizationModel struct {
	BaseModel
	NameAR                 string             `gorm:"type:varchar(200);not null"`
	NameEN                 string             `gorm:"type:varchar(200);not null"`
	EntityType             voucher.EntityType `gorm:"type:varchar(20);not null;default:'company'"`
	CommercialRegistration string             `gorm:"type:varchar(50);not null;default:''"`
	TaxNumber              string             `gorm:"type:varchar(50);not null;default:''"`
	Address                string             `gorm:"type:text;not null;default:''"`
	Phone                  string             `gorm:"type:varchar(30);not null;default:''"`
	Email                  string             `gorm:"type:varchar(200);not null;default:''"`
	Description            string             `gorm:"type:text;not null;default:''"`
	LogoURL                string             `gorm:"type:text;not null;default:''"`
	StampURL               string             `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization
func (m *OrganizationModel) ToDomain() *voucher.Organization {
	return &voucher.Organization{
		BaseEntity:             m.entity(),
		NameAR:                 m.NameAR,
		NameEN:                 m.NameEN,
		EntityType:             m.EntityType,
		CommercialRegistration: m.CommercialRegistration,
		TaxNumber:              m.TaxNumber,
		Address:                m.Address,
		Phone:                  m.Phone,
		Email:                  m.Email,
		Description:            m.Description,
		LogoURL:                m.LogoURL,
		StampURL:               m.StampURL,
	}
}

// FromDomain populates the persistence model from a domain Organization
func (m *OrganizationModel) FromDomain(o *voucher.Organization) {
	m.BaseModel = baseModelOf(o.BaseEntity)
	m.NameAR = o.NameAR
	m.NameEN = o.NameEN
	m.EntityType = o.EntityType
	m.CommercialRegistration = o.CommercialRegistration
	m.TaxNumber = o.TaxNumber
	m.Address = o.Address
	m.Phone = o.Phone
	m.Email = o.Email
	m.Description = o.Description
	m.LogoURL = o.LogoURL
	m.StampURL = o.StampURL
}

// OrganizationModelFromDomain creates a persistence model from a domain Organization
func OrganizationModelFromDomain(o *voucher.Organization) *OrganizationModel {
	m := &OrganizationModel{}
	m.FromDomain(o)
	return m
}

// AllModels lists every model managed by AutoMigrate in development
func AllModels() []any {
	return []any{&OrganizationModel{}, &ReceiptModel{}}
}

package voucher

import (
	"context"

	"github.com/google/uuid"
)

// ReceiptRepository reads and updates persisted receipts
type ReceiptRepository interface {
	// FindByIDForOrganization loads a receipt owned by the organization.
	FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*Receipt, error)
	// FindByBarcodeID returns shared.ErrNotFound when no receipt carries the identifier.
	FindByBarcodeID(ctx context.Context, barcodeID string) (*Receipt, error)
	// FindByReceiptNumber requires exactly one match across organizations.
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*Receipt, error)
	UpdatePDFPath(ctx context.Context, organizationID, id uuid.UUID, path string) error
}

// OrganizationRepository reads organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
}

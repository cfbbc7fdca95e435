package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceiptRepository implements voucher.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

var _ voucher.ReceiptRepository = (*GormReceiptRepository)(nil)

// FindByIDForOrganization finds a receipt owned by the organization
func (r *GormReceiptRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*voucher.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBarcodeID finds the receipt carrying a verification identifier
func (r *GormReceiptRepository) FindByBarcodeID(ctx context.Context, barcodeID string) (*voucher.Receipt, error) {
	var model models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("barcode_id = ?", barcodeID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReceiptNumber finds a receipt by number across organizations.
// Receipt numbers are only unique per organization, so more than one match
// is reported as not found rather than picking one.
func (r *GormReceiptRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*voucher.Receipt, error) {
	var found []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("receipt_number = ?", receiptNumber).
		Limit(2).
		Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) != 1 {
		return nil, shared.ErrNotFound
	}
	return found[0].ToDomain(), nil
}

// UpdatePDFPath stores the object key of the rendered document
func (r *GormReceiptRepository) UpdatePDFPath(ctx context.Context, organizationID, id uuid.UUID, path string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Where("organization_id = ? AND id = ?", organizationID, id).
		Update("pdf_url", path)
	if result.Error != nil {
		return fmt.Errorf("failed to update pdf path: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *voucher.Receipt) error {
	return r.db.WithContext(ctx).Save(models.ReceiptModelFromDomain(receipt)).Error
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
)

// BaseModel holds the identity and timestamp columns of every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func baseModelOf(e shared.BaseEntity) BaseModel {
	return BaseModel{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// OrganizationOwnedModel is a row issued by an organization. The organization
// is the tenant; CreatedBy is the issuing user when known.
type OrganizationOwnedModel struct {
	BaseModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid;index"`
}

func (m OrganizationOwnedModel) tenantEntity() shared.TenantEntity {
	return shared.TenantEntity{BaseEntity: m.entity(), TenantID: m.OrganizationID, CreatedBy: m.CreatedBy}
}

func ownedModelOf(e shared.TenantEntity) OrganizationOwnedModel {
	return OrganizationOwnedModel{BaseModel: baseModelOf(e.BaseEntity), OrganizationID: e.TenantID, CreatedBy: e.CreatedBy}
}

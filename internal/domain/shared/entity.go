package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps every persisted record has
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns an entity with a fresh ID stamped now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch moves UpdatedAt to now.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// TenantEntity is a record owned by one organization. Reads and writes of
// tenant data are always scoped by TenantID.
type TenantEntity struct {
	BaseEntity
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantEntityWithCreator stamps a new tenant record with the user who made it
func NewTenantEntityWithCreator(tenantID, createdBy uuid.UUID) TenantEntity {
	e := TenantEntity{BaseEntity: NewBaseEntity(), TenantID: tenantID}
	if createdBy != uuid.Nil {
		e.CreatedBy = &createdBy
	}
	return e
}

// BelongsTo reports whether the record is owned by tenantID
func (e *TenantEntity) BelongsTo(tenantID uuid.UUID) bool {
	return e.TenantID != uuid.Nil && e.TenantID == tenantID
}

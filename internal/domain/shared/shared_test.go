package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	err := fmt.Errorf("load receipt: %w", NewDomainError("NOT_FOUND", "Receipt not found"))

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "NOT_FOUND", CodeOf(err))
	assert.Equal(t, "load receipt: Receipt not found", err.Error())
	assert.False(t, errors.Is(err, NewDomainError("INVALID_AMOUNT", "")))
	assert.Empty(t, CodeOf(errors.New("plain")))
}

func TestTenantEntity(t *testing.T) {
	tenant := uuid.New()

	e := NewTenantEntityWithCreator(tenant, uuid.Nil)
	assert.Nil(t, e.CreatedBy)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.True(t, e.BelongsTo(tenant))
	assert.False(t, e.BelongsTo(uuid.New()))

	user := uuid.New()
	e = NewTenantEntityWithCreator(tenant, user)
	assert.Equal(t, user, *e.CreatedBy)

	before := e.UpdatedAt
	e.Touch()
	assert.False(t, e.UpdatedAt.Before(before))

	assert.False(t, (&TenantEntity{}).BelongsTo(uuid.Nil))
}

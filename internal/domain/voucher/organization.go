package voucher

import (
	"strings"

	"github.com/sanad/backend/internal/domain/shared"
)

// PlaceholderLogo is the sentinel stored for organizations that skipped the logo upload
const PlaceholderLogo = "PLACEHOLDER_LOGO_REQUIRED"

// EntityType classifies the legal form of an organization
type EntityType string

const (
	EntityTypeCompany       EntityType = "company"
	EntityTypeEstablishment EntityType = "establishment"
	EntityTypeOffice        EntityType = "office"
	EntityTypeOther         EntityType = "other"
)

// IsValid checks if the entity type is known
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeCompany, EntityTypeEstablishment, EntityTypeOffice, EntityTypeOther:
		return true
	}
	return false
}

// Organization is the issuing party printed on every voucher
type Organization struct {
	shared.BaseEntity
	NameAR                 string
	NameEN                 string
	EntityType             EntityType
	CommercialRegistration string
	TaxNumber              string
	Address                string
	Phone                  string
	Email                  string
	Description            string
	LogoURL                string
	StampURL               string
}

// HasLogo reports whether a real logo reference is present.
func (o *Organization) HasLogo() bool {
	logo := strings.TrimSpace(o.LogoURL)
	return logo != "" && logo != PlaceholderLogo
}

// HasStamp reports whether a stamp reference is present
func (o *Organization) HasStamp() bool {
	stamp := strings.TrimSpace(o.StampURL)
	return stamp != "" && stamp != PlaceholderLogo
}

// ErrLogoRequired is returned when a voucher is requested for an organization without a logo
var ErrLogoRequired = shared.NewDomainError(
	"LOGO_REQUIRED",
	"Organization logo is required. Please complete onboarding and upload a logo before generating receipts.",
)

// EnsureRenderable checks the preconditions for producing a voucher document
func (o *Organization) EnsureRenderable() error {
	if o == nil || !o.HasLogo() {
		return ErrLogoRequired
	}
	return nil
}

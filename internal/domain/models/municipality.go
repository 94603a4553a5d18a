package models

import "time"

// Municipality is the tenant root. Every other tenant-scoped document
// carries its ID in municipality_id.
//
// The ID is a stable, human-readable slug (e.g. "saint-lazare") that doubles
// as the subdomain on the platform base domain. Municipalities are never
// deleted; they are deactivated by setting Active to false.
type Municipality struct {
	ID       string    `bson:"_id" json:"id"`
	Name     Localized `bson:"name" json:"name"`
	NameCI   string    `bson:"name_ci" json:"-"` // folded french name for sorting
	Province string    `bson:"province" json:"province"`

	Colors  BrandColors `bson:"colors" json:"colors"`
	Contact ContactInfo `bson:"contact" json:"contact"`

	Active  bool            `bson:"active" json:"active"`
	Website WebsiteSettings `bson:"website" json:"website"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// BrandColors holds the hex colors used by the app and website builder.
type BrandColors struct {
	Primary    string `bson:"primary" json:"primary"`
	Secondary  string `bson:"secondary" json:"secondary"`
	Background string `bson:"background" json:"background"`
}

// ContactInfo is the municipality's public contact block.
type ContactInfo struct {
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Website string `bson:"website,omitempty" json:"website,omitempty"`
	Address string `bson:"address,omitempty" json:"address,omitempty"`
}

// WebsiteSettings configures the public website of a municipality.
type WebsiteSettings struct {
	// CustomDomain is a verified hostname (e.g. "www.saint-lazare.ca") that
	// resolves to this tenant. Empty when none is configured.
	CustomDomain   string     `bson:"custom_domain,omitempty" json:"customDomain,omitempty"`
	DomainVerified bool       `bson:"domain_verified" json:"domainVerified"`
	VerifiedAt     *time.Time `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
}

// HasCustomDomain reports whether a custom domain is configured.
func (m Municipality) HasCustomDomain() bool {
	return m.Website.CustomDomain != ""
}

package models

import "time"

// Admin roles, lowest to highest.
const (
	RoleViewer     = "viewer"
	RoleEditor     = "editor"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// AdminAccount is a municipal staff account. ID is the identity-provider
// UID. MunicipalityID is fixed at creation for every role except
// super-admin, which has none.
type AdminAccount struct {
	ID             string     `bson:"_id" json:"id"`
	Email          string     `bson:"email" json:"email"`
	EmailCI        string     `bson:"email_ci" json:"-"`
	Name           string     `bson:"name" json:"name"`
	Role           string     `bson:"role" json:"role"`
	MunicipalityID string     `bson:"municipality_id,omitempty" json:"municipalityId,omitempty"`
	Active         bool       `bson:"active" json:"active"`
	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsSuperAdmin reports whether the account is a platform super-admin.
func (a AdminAccount) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

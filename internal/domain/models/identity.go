package models

import "time"

// Identity is the credential record behind an admin account. ID matches
// AdminAccount.ID.
type Identity struct {
	ID            string     `bson:"_id"`
	EmailCI       string     `bson:"email_ci"`
	PasswordHash  string     `bson:"password_hash"`
	ResetCodeHash string     `bson:"reset_code_hash,omitempty"`
	ResetExpires  *time.Time `bson:"reset_expires,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

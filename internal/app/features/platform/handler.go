// Package platform serves the super-admin API: the municipality directory
// and admin account management.
package platform

import (
	"context"

	adminstore "github.com/civickey/civickey/internal/app/store/admins"
	municipalitystore "github.com/civickey/civickey/internal/app/store/municipalities"
	"github.com/civickey/civickey/internal/app/system/domains"
	"github.com/civickey/civickey/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Credentials creates and resets admin passwords.
type Credentials interface {
	Register(ctx context.Context, uid, email, password string) error
	RequestReset(ctx context.Context, email string) error
}

// Handler owns the platform handlers.
type Handler struct {
	Munis  *municipalitystore.Store
	Admins *adminstore.Store
	Creds  Credentials
	// Hosts drops cached custom-domain lookups when a municipality is
	// deactivated.
	Hosts domains.Invalidator

	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// NewHandler constructs a Handler over db.
func NewHandler(db *mongo.Database, creds Credentials, hosts domains.Invalidator, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Munis:   municipalitystore.New(db),
		Admins:  adminstore.New(db),
		Creds:   creds,
		Hosts:   hosts,
		Metrics: m,
		Log:     logger,
	}
}

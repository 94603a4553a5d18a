// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	adminstore "github.com/civickey/civickey/internal/app/store/admins"
	identitystore "github.com/civickey/civickey/internal/app/store/identities"
	"github.com/civickey/civickey/internal/app/system/authutil"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after the schema is in place.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.Timeouts)
	if appCfg.SuperAdminEmail == "" {
		return nil
	}
	return ensureSuperAdmin(ctx, deps.MongoDatabase, appCfg.SuperAdminEmail, appCfg.SuperAdminPassword, logger)
}

// ensureSuperAdmin makes the account with email an active super-admin,
// creating it when missing. Credentials are only created when the account
// has none; an existing password is never overwritten. Without a password
// the super-admin signs in through a password reset.
func ensureSuperAdmin(ctx context.Context, db *mongo.Database, email, password string, logger *zap.Logger) error {
	admins := adminstore.New(db)
	acct, err := admins.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, adminstore.ErrNotFound):
		acct, err = admins.Create(ctx, models.AdminAccount{
			ID:     uuid.NewString(),
			Email:  email,
			Name:   "Super Admin",
			Role:   models.RoleSuperAdmin,
			Active: true,
		})
		if err != nil {
			return fmt.Errorf("create super-admin: %w", err)
		}
		logger.Info("created super-admin", zap.String("email", acct.Email), zap.String("uid", acct.ID))
	case err != nil:
		return fmt.Errorf("load super-admin: %w", err)
	case !acct.IsSuperAdmin() || !acct.Active:
		acct, err = admins.PromoteToSuperAdmin(ctx, acct.ID)
		if err != nil {
			return fmt.Errorf("promote super-admin: %w", err)
		}
		logger.Info("promoted account to super-admin", zap.String("email", acct.Email), zap.String("uid", acct.ID))
	}

	creds := identitystore.New(db)
	if _, err := creds.Get(ctx, acct.ID); err == nil {
		return nil
	} else if !errors.Is(err, identitystore.ErrNotFound) {
		return fmt.Errorf("load super-admin credentials: %w", err)
	}
	if password == "" {
		logger.Warn("super-admin has no password; request a password reset to sign in",
			zap.String("email", acct.Email))
		return nil
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("superadmin_password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash super-admin password: %w", err)
	}
	if _, err := creds.Create(ctx, acct.ID, acct.Email, hash); err != nil {
		return fmt.Errorf("store super-admin credentials: %w", err)
	}
	return nil
}

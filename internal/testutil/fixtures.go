package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMunicipality inserts an active municipality with the given slug ID.
func (f *Fixtures) CreateMunicipality(ctx context.Context, id, name string) models.Municipality {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Municipality{
		ID:       id,
		Name:     models.Localized{EN: name, FR: name},
		NameCI:   normalize.Fold(name),
		Province: "QC",
		Colors: models.BrandColors{
			Primary:    "#003366",
			Secondary:  "#66a3d2",
			Background: "#ffffff",
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("municipalities").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test municipality: %v", err)
	}
	return m
}

// CreateInactiveMunicipality inserts a deactivated municipality.
func (f *Fixtures) CreateInactiveMunicipality(ctx context.Context, id, name string) models.Municipality {
	f.t.Helper()
	m := f.CreateMunicipality(ctx, id, name)
	if _, err := f.db.Collection("municipalities").UpdateByID(ctx, id,
		map[string]any{"$set": map[string]any{"active": false}}); err != nil {
		f.t.Fatalf("failed to deactivate test municipality: %v", err)
	}
	m.Active = false
	return m
}

// CreateZone inserts a zone of municipalityID.
func (f *Fixtures) CreateZone(ctx context.Context, municipalityID, zoneID, name string, sortOrder int) models.Zone {
	f.t.Helper()

	z := models.Zone{
		MunicipalityID: municipalityID,
		ZoneID:         zoneID,
		Name:           models.Localized{EN: name, FR: name},
		SortOrder:      sortOrder,
	}
	if _, err := f.db.Collection("zones").InsertOne(ctx, z); err != nil {
		f.t.Fatalf("failed to create test zone: %v", err)
	}
	return z
}

// CreateAdmin inserts an active admin account with the given role. Pass an
// empty municipalityID for super-admins.
func (f *Fixtures) CreateAdmin(ctx context.Context, email, role, municipalityID string) models.AdminAccount {
	f.t.Helper()

	now := time.Now().UTC()
	a := models.AdminAccount{
		ID:             primitive.NewObjectID().Hex(),
		Email:          email,
		EmailCI:        normalize.Email(email),
		Name:           "Test " + role,
		Role:           role,
		MunicipalityID: municipalityID,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := f.db.Collection("admins").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return a
}

// CreateSuperAdmin inserts an active super-admin.
func (f *Fixtures) CreateSuperAdmin(ctx context.Context, email string) models.AdminAccount {
	f.t.Helper()
	return f.CreateAdmin(ctx, email, models.RoleSuperAdmin, "")
}

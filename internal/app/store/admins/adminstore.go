// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds admin accounts. It is not tenant-scoped because
// super-admins belong to no municipality.
const Collection = "admins"

var (
	ErrNotFound           = errors.New("admin not found")
	ErrDuplicateEmail     = errors.New("an admin with this email already exists")
	ErrBadRole            = errors.New(`role must be "viewer"|"editor"|"admin"|"super-admin"`)
	ErrMunicipalityNeeded = errors.New("viewer/editor/admin must have a municipality")
	ErrBadEmail           = errors.New("a valid email address is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// FetchAccount loads the account for uid. It returns nil, nil when none
// exists so sessions for deleted accounts can be told apart from errors.
func (s *Store) FetchAccount(ctx context.Context, uid string) (*models.AdminAccount, error) {
	var a models.AdminAccount
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) Get(ctx context.Context, uid string) (models.AdminAccount, error) {
	a, err := s.FetchAccount(ctx, uid)
	if err != nil {
		return models.AdminAccount{}, err
	}
	if a == nil {
		return models.AdminAccount{}, ErrNotFound
	}
	return *a, nil
}

// GetByEmail looks up an account by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.AdminAccount, error) {
	var a models.AdminAccount
	err := s.c.FindOne(ctx, bson.M{"email_ci": normalize.Email(email)}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AdminAccount{}, ErrNotFound
	}
	if err != nil {
		return models.AdminAccount{}, err
	}
	return a, nil
}

// ListByMunicipality returns the staff of one municipality by email.
// Super-admins are never listed here.
func (s *Store) ListByMunicipality(ctx context.Context, municipalityID string) ([]models.AdminAccount, error) {
	return s.find(ctx, bson.M{"municipality_id": municipalityID})
}

// ListSuperAdmins returns every super-admin account.
func (s *Store) ListSuperAdmins(ctx context.Context) ([]models.AdminAccount, error) {
	return s.find(ctx, bson.M{"role": models.RoleSuperAdmin})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.AdminAccount, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "email_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.AdminAccount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts an account whose ID is the identity UID. Super-admins
// never carry a municipality; everyone else must.
func (s *Store) Create(ctx context.Context, a models.AdminAccount) (models.AdminAccount, error) {
	a.Role = normalize.Role(a.Role)
	if authz.RoleRank(a.Role) == 0 {
		return models.AdminAccount{}, ErrBadRole
	}
	if !inputval.IsValidEmail(a.Email) {
		return models.AdminAccount{}, ErrBadEmail
	}
	if a.IsSuperAdmin() {
		a.MunicipalityID = ""
	} else if a.MunicipalityID == "" {
		return models.AdminAccount{}, ErrMunicipalityNeeded
	}

	now := time.Now().UTC()
	a.Email = normalize.Email(a.Email)
	a.EmailCI = a.Email
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AdminAccount{}, ErrDuplicateEmail
		}
		return models.AdminAccount{}, err
	}
	return a, nil
}

// UpdateProfile changes the name and role of an account within its
// municipality. The municipality itself is immutable, and no account can
// be promoted to or demoted from super-admin here.
func (s *Store) UpdateProfile(ctx context.Context, municipalityID, uid, name, role string) (models.AdminAccount, error) {
	role = normalize.Role(role)
	if authz.RoleRank(role) == 0 || role == models.RoleSuperAdmin {
		return models.AdminAccount{}, ErrBadRole
	}
	return s.update(ctx, bson.M{"_id": uid, "municipality_id": municipalityID},
		bson.M{"name": name, "role": role})
}

// PromoteToSuperAdmin makes uid an active super-admin and detaches it from
// its municipality.
func (s *Store) PromoteToSuperAdmin(ctx context.Context, uid string) (models.AdminAccount, error) {
	return s.update(ctx, bson.M{"_id": uid},
		bson.M{"role": models.RoleSuperAdmin, "municipality_id": "", "active": true})
}

// SetActive enables or disables an account. Disabled accounts are signed
// out on their next request.
func (s *Store) SetActive(ctx context.Context, uid string, active bool) (models.AdminAccount, error) {
	return s.update(ctx, bson.M{"_id": uid}, bson.M{"active": active})
}

// Delete removes an account. It is used to roll back a creation whose
// credentials could not be stored.
func (s *Store) Delete(ctx context.Context, uid string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLastLogin records a successful sign-in.
func (s *Store) SetLastLogin(ctx context.Context, uid string, at time.Time) error {
	at = at.UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"last_login_at": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) update(ctx context.Context, filter, set bson.M) (models.AdminAccount, error) {
	set["updated_at"] = time.Now().UTC()
	var a models.AdminAccount
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AdminAccount{}, ErrNotFound
	}
	if err != nil {
		return models.AdminAccount{}, err
	}
	return a, nil
}

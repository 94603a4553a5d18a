// internal/app/store/identities/identitystore.go
package identitystore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "identities"

var (
	ErrNotFound       = errors.New("identity not found")
	ErrDuplicateEmail = errors.New("an identity with this email already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	return s.findOne(ctx, bson.M{"email_ci": normalize.Email(email)})
}

func (s *Store) Get(ctx context.Context, uid string) (models.Identity, error) {
	return s.findOne(ctx, bson.M{"_id": uid})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Identity, error) {
	var id models.Identity
	err := s.c.FindOne(ctx, filter).Decode(&id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, err
	}
	return id, nil
}

// Create stores a new identity with an already hashed password.
func (s *Store) Create(ctx context.Context, uid, email, passwordHash string) (models.Identity, error) {
	now := time.Now().UTC()
	id := models.Identity{
		ID:           uid,
		EmailCI:      normalize.Email(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, id); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateEmail
		}
		return models.Identity{}, err
	}
	return id, nil
}

// SetPasswordHash replaces the password and clears any pending reset.
func (s *Store) SetPasswordHash(ctx context.Context, uid, hash string) error {
	return s.update(ctx, uid, bson.M{
		"$set":   bson.M{"password_hash": hash, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"reset_code_hash": "", "reset_expires": ""},
	})
}

// SetReset stores a hashed reset code that is valid until expires.
func (s *Store) SetReset(ctx context.Context, uid, codeHash string, expires time.Time) error {
	return s.update(ctx, uid, bson.M{"$set": bson.M{
		"reset_code_hash": codeHash,
		"reset_expires":   expires.UTC(),
		"updated_at":      time.Now().UTC(),
	}})
}

func (s *Store) update(ctx context.Context, uid string, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

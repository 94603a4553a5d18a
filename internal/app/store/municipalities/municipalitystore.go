// internal/app/store/municipalities/municipalitystore.go
package municipalitystore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the tenant directory collection.
const Collection = "municipalities"

var (
	ErrNotFound    = errors.New("municipality not found")
	ErrDuplicate   = errors.New("a municipality with this id or custom domain already exists")
	ErrDomainInUse = errors.New("custom domain is already assigned to another municipality")
	ErrInvalidID   = errors.New("municipality id must be a lowercase slug")
)

// Store is the tenant directory. Municipalities are never deleted.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a new municipality. The ID must already be a slug since
// it doubles as the subdomain.
func (s *Store) Create(ctx context.Context, m models.Municipality) (models.Municipality, error) {
	if !inputval.IsSlug(m.ID) {
		return models.Municipality{}, ErrInvalidID
	}
	now := time.Now().UTC()
	m.NameCI = normalize.Fold(m.Name.FR)
	m.Website.CustomDomain = normalize.Hostname(m.Website.CustomDomain)
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Municipality{}, ErrDuplicate
		}
		return models.Municipality{}, err
	}
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Municipality, error) {
	var m models.Municipality
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Municipality{}, ErrNotFound
	}
	if err != nil {
		return models.Municipality{}, err
	}
	return m, nil
}

// GetActive returns the municipality only when it is active.
func (s *Store) GetActive(ctx context.Context, id string) (models.Municipality, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Municipality{}, err
	}
	if !m.Active {
		return models.Municipality{}, ErrNotFound
	}
	return m, nil
}

// List returns municipalities sorted by folded french name.
func (s *Store) List(ctx context.Context, includeInactive bool) ([]models.Municipality, error) {
	filter := bson.M{}
	if !includeInactive {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Municipality{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile replaces the editable profile fields: name, province,
// colors and contact.
func (s *Store) UpdateProfile(ctx context.Context, id string, m models.Municipality) (models.Municipality, error) {
	set := bson.M{
		"name":       m.Name,
		"name_ci":    normalize.Fold(m.Name.FR),
		"province":   m.Province,
		"colors":     m.Colors,
		"contact":    m.Contact,
		"updated_at": time.Now().UTC(),
	}
	return s.update(ctx, id, set)
}

// SetActive activates or deactivates a municipality.
func (s *Store) SetActive(ctx context.Context, id string, active bool) (models.Municipality, error) {
	return s.update(ctx, id, bson.M{"active": active, "updated_at": time.Now().UTC()})
}

// SetCustomDomain assigns a verified custom domain.
func (s *Store) SetCustomDomain(ctx context.Context, id, host string, verifiedAt time.Time) (models.Municipality, error) {
	host = normalize.Hostname(host)
	m, err := s.update(ctx, id, bson.M{
		"website.custom_domain":   host,
		"website.domain_verified": true,
		"website.verified_at":     verifiedAt.UTC(),
		"updated_at":              time.Now().UTC(),
	})
	if err != nil && wafflemongo.IsDup(err) {
		return models.Municipality{}, ErrDomainInUse
	}
	return m, err
}

// ClearCustomDomain removes the custom domain.
func (s *Store) ClearCustomDomain(ctx context.Context, id string) (models.Municipality, error) {
	var m models.Municipality
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"website.custom_domain": "", "website.verified_at": ""},
		"$set":   bson.M{"website.domain_verified": false, "updated_at": time.Now().UTC()},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Municipality{}, ErrNotFound
	}
	return m, err
}

func (s *Store) update(ctx context.Context, id string, set bson.M) (models.Municipality, error) {
	var m models.Municipality
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Municipality{}, ErrNotFound
	}
	if err != nil {
		return models.Municipality{}, err
	}
	return m, nil
}

// MunicipalityIDByCustomDomain returns the active municipality that owns
// host, or "" when none does.
func (s *Store) MunicipalityIDByCustomDomain(ctx context.Context, host string) (string, error) {
	var m struct {
		ID string `bson:"_id"`
	}
	err := s.c.FindOne(ctx,
		bson.M{"website.custom_domain": normalize.Hostname(host), "active": true},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// IsActiveMunicipality reports whether id names an active municipality.
func (s *Store) IsActiveMunicipality(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id, "active": true}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

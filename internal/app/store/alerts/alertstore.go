// internal/app/store/alerts/alertstore.go
package alertstore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "alerts"

var ErrNotFound = errors.New("alert not found")

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}

// List returns every alert, newest first.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.Alert, error) {
	out := []models.Alert{}
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, options.Find().SetSort(newestFirst)); err != nil {
		return nil, err
	}
	return out, nil
}

// Active returns the alerts visible on today (YYYY-MM-DD), newest first.
// The active flag is filtered in the query; the optional date window is
// applied here since either bound may be missing.
func (s *Store) Active(ctx context.Context, municipalityID, today string) ([]models.Alert, error) {
	var all []models.Alert
	if err := s.c.Find(ctx, municipalityID, bson.M{"active": true}, &all, options.Find().SetSort(newestFirst)); err != nil {
		return nil, err
	}
	out := make([]models.Alert, 0, len(all))
	for _, a := range all {
		if a.VisibleOn(today) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.Alert, error) {
	var a models.Alert
	err := s.c.FindOne(ctx, municipalityID, bson.M{"_id": id}, &a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Alert{}, ErrNotFound
	}
	if err != nil {
		return models.Alert{}, err
	}
	return a, nil
}

func (s *Store) Create(ctx context.Context, municipalityID string, a models.Alert) (models.Alert, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID().Hex()
	a.MunicipalityID = municipalityID
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := s.c.InsertOne(ctx, municipalityID, a); err != nil {
		return models.Alert{}, err
	}
	return a, nil
}

func (s *Store) Update(ctx context.Context, municipalityID, id string, a models.Alert) (models.Alert, error) {
	a.UpdatedAt = time.Now().UTC()
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, a)
	if err != nil {
		return models.Alert{}, err
	}
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	return s.Get(ctx, municipalityID, id)
}

func (s *Store) Delete(ctx context.Context, municipalityID, id string) error {
	ok, err := s.c.DeleteOne(ctx, municipalityID, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

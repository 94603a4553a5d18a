// internal/app/store/events/eventstore.go
package eventstore

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

const Collection = "events"

var ErrNotFound = errors.New("event not found")

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

var byDate = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "_id", Value: 1}}

// List returns every event of the municipality by date.
func (s *Store) List(ctx context.Context, municipalityID string) ([]models.Event, error) {
	out := []models.Event{}
	if err := s.c.Find(ctx, municipalityID, bson.M{}, &out, options.Find().SetSort(byDate)); err != nil {
		return nil, err
	}
	return out, nil
}

// Upcoming returns events whose last day is today (YYYY-MM-DD) or later,
// by date. limit <= 0 means no limit.
func (s *Store) Upcoming(ctx context.Context, municipalityID, today string, limit int) ([]models.Event, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"date": bson.M{"$gte": today}},
		bson.M{"end_date": bson.M{"$gte": today}},
	}}
	opts := options.Find().SetSort(byDate)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	out := []models.Event{}
	if err := s.c.Find(ctx, municipalityID, filter, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, municipalityID, bson.M{"_id": id}, &e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Event{}, ErrNotFound
	}
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) Create(ctx context.Context, municipalityID string, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID().Hex()
	e.MunicipalityID = municipalityID
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := s.c.InsertOne(ctx, municipalityID, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) Update(ctx context.Context, municipalityID, id string, e models.Event) (models.Event, error) {
	e.UpdatedAt = time.Now().UTC()
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, e)
	if err != nil {
		return models.Event{}, err
	}
	if !ok {
		return models.Event{}, ErrNotFound
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

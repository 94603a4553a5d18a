// internal/app/store/roadclosures/roadclosurestore.go
package roadclosurestore

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

const Collection = "road_closures"

var ErrNotFound = errors.New("road closure not found")

type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

// List returns road closures by start date. When includeCompleted is false,
// completed closures are omitted.
func (s *Store) List(ctx context.Context, municipalityID string, includeCompleted bool) ([]models.RoadClosure, error) {
	filter := bson.M{}
	if !includeCompleted {
		filter["status"] = bson.M{"$ne": models.ClosureCompleted}
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}})
	out := []models.RoadClosure{}
	if err := s.c.Find(ctx, municipalityID, filter, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, municipalityID, id string) (models.RoadClosure, error) {
	var rc models.RoadClosure
	err := s.c.FindOne(ctx, municipalityID, bson.M{"_id": id}, &rc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoadClosure{}, ErrNotFound
	}
	if err != nil {
		return models.RoadClosure{}, err
	}
	return rc, nil
}

func (s *Store) Create(ctx context.Context, municipalityID string, rc models.RoadClosure) (models.RoadClosure, error) {
	now := time.Now().UTC()
	rc.ID = primitive.NewObjectID().Hex()
	rc.MunicipalityID = municipalityID
	rc.CreatedAt = now
	rc.UpdatedAt = now
	if err := s.c.InsertOne(ctx, municipalityID, rc); err != nil {
		return models.RoadClosure{}, err
	}
	return rc, nil
}

func (s *Store) Update(ctx context.Context, municipalityID, id string, rc models.RoadClosure) (models.RoadClosure, error) {
	rc.UpdatedAt = time.Now().UTC()
	ok, err := s.c.SetFields(ctx, municipalityID, bson.M{"_id": id}, rc)
	if err != nil {
		return models.RoadClosure{}, err
	}
	if !ok {
		return models.RoadClosure{}, ErrNotFound
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

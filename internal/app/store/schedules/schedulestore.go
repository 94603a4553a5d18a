// internal/app/store/schedules/schedulestore.go
package schedulestore

import (
	"context"
	"errors"
	"time"

	"github.com/civickey/civickey/internal/app/store/scoped"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "schedules"

var ErrNotFound = errors.New("schedule not found")

// Store holds the single schedule document of each municipality.
type Store struct {
	c scoped.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: scoped.New(db.Collection(Collection))}
}

func (s *Store) Get(ctx context.Context, municipalityID string) (models.Schedule, error) {
	var sch models.Schedule
	err := s.c.FindOne(ctx, municipalityID, bson.M{}, &sch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Schedule{}, ErrNotFound
	}
	if err != nil {
		return models.Schedule{}, err
	}
	if sch.Schedules == nil {
		sch.Schedules = map[string]models.ZoneSchedule{}
	}
	if sch.CollectionTypes == nil {
		sch.CollectionTypes = []models.CollectionType{}
	}
	return sch, nil
}

// Put replaces (or creates) the municipality's schedule.
func (s *Store) Put(ctx context.Context, municipalityID string, sch models.Schedule) (models.Schedule, error) {
	sch.MunicipalityID = municipalityID
	sch.UpdatedAt = time.Now().UTC()
	if sch.Schedules == nil {
		sch.Schedules = map[string]models.ZoneSchedule{}
	}
	if sch.CollectionTypes == nil {
		sch.CollectionTypes = []models.CollectionType{}
	}
	if _, err := s.c.ReplaceOne(ctx, municipalityID, bson.M{}, sch, true); err != nil {
		return models.Schedule{}, err
	}
	return sch, nil
}

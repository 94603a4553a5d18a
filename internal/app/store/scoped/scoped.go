// Package scoped wraps a Mongo collection so every query is confined to one
// municipality.
//
// The municipality_id condition is added to every filter and stamped on
// every insert, and callers cannot remove it. Tenant-scoped stores only
// reach their collection through a Collection, so a cross-tenant read would
// need code outside this package.
package scoped

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Field is the tenant key present on every tenant-scoped document.
const Field = "municipality_id"

// ErrNoMunicipality is returned when a scoped operation is attempted without
// a municipality ID.
var ErrNoMunicipality = errors.New("scoped: municipality id is required")

// Collection is a tenant-scoped view of a Mongo collection.
type Collection struct {
	c *mongo.Collection
}

// New wraps c.
func New(c *mongo.Collection) Collection {
	return Collection{c: c}
}

// Raw returns the underlying collection for index management.
func (s Collection) Raw() *mongo.Collection {
	return s.c
}

// Filter returns filter with the municipality condition added. The caller's
// map is not modified; any municipality_id in it is overridden.
func Filter(municipalityID string, filter bson.M) bson.M {
	out := make(bson.M, len(filter)+1)
	for k, v := range filter {
		out[k] = v
	}
	out[Field] = municipalityID
	return out
}

// Find decodes every matching document of the municipality into results.
func (s Collection) Find(ctx context.Context, municipalityID string, filter bson.M, results any, opts ...*options.FindOptions) error {
	if municipalityID == "" {
		return ErrNoMunicipality
	}
	cur, err := s.c.Find(ctx, Filter(municipalityID, filter), opts...)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, results)
}

// FindOne decodes the first matching document into result. It returns
// mongo.ErrNoDocuments when nothing matches.
func (s Collection) FindOne(ctx context.Context, municipalityID string, filter bson.M, result any, opts ...*options.FindOneOptions) error {
	if municipalityID == "" {
		return ErrNoMunicipality
	}
	return s.c.FindOne(ctx, Filter(municipalityID, filter), opts...).Decode(result)
}

// Count counts matching documents of the municipality.
func (s Collection) Count(ctx context.Context, municipalityID string, filter bson.M) (int64, error) {
	if municipalityID == "" {
		return 0, ErrNoMunicipality
	}
	return s.c.CountDocuments(ctx, Filter(municipalityID, filter))
}

// InsertOne inserts doc after setting its municipality_id. doc must be a
// struct or map that marshals to a document.
func (s Collection) InsertOne(ctx context.Context, municipalityID string, doc any) error {
	if municipalityID == "" {
		return ErrNoMunicipality
	}
	m, err := toM(doc)
	if err != nil {
		return err
	}
	m[Field] = municipalityID
	_, err = s.c.InsertOne(ctx, m)
	return err
}

// UpdateOne applies update to the first matching document of the
// municipality and reports whether one matched. The update may not change
// municipality_id.
func (s Collection) UpdateOne(ctx context.Context, municipalityID string, filter bson.M, update bson.M) (bool, error) {
	if municipalityID == "" {
		return false, ErrNoMunicipality
	}
	if set, ok := update["$set"].(bson.M); ok {
		delete(set, Field)
	}
	res, err := s.c.UpdateOne(ctx, Filter(municipalityID, filter), update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// SetFields overwrites the fields of the first matching document with those
// of doc, leaving _id, municipality_id and created_at untouched. It reports
// whether a document matched.
func (s Collection) SetFields(ctx context.Context, municipalityID string, filter bson.M, doc any) (bool, error) {
	if municipalityID == "" {
		return false, ErrNoMunicipality
	}
	set, err := toM(doc)
	if err != nil {
		return false, err
	}
	delete(set, "_id")
	delete(set, "created_at")
	return s.UpdateOne(ctx, municipalityID, filter, bson.M{"$set": set})
}

// ReplaceOne replaces the first matching document of the municipality, or
// inserts it when upsert is set. The replacement's municipality_id is forced.
func (s Collection) ReplaceOne(ctx context.Context, municipalityID string, filter bson.M, doc any, upsert bool) (bool, error) {
	if municipalityID == "" {
		return false, ErrNoMunicipality
	}
	m, err := toM(doc)
	if err != nil {
		return false, err
	}
	m[Field] = municipalityID
	res, err := s.c.ReplaceOne(ctx, Filter(municipalityID, filter), m, options.Replace().SetUpsert(upsert))
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0 || res.UpsertedCount > 0, nil
}

// DeleteOne deletes the first matching document of the municipality and
// reports whether one was deleted.
func (s Collection) DeleteOne(ctx context.Context, municipalityID string, filter bson.M) (bool, error) {
	if municipalityID == "" {
		return false, ErrNoMunicipality
	}
	res, err := s.c.DeleteOne(ctx, Filter(municipalityID, filter))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func toM(doc any) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

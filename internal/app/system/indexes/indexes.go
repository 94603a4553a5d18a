// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models, logger); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func keys(kv ...string) bson.D {
	d := make(bson.D, 0, len(kv))
	for _, k := range kv {
		dir := 1
		if strings.HasPrefix(k, "-") {
			dir, k = -1, k[1:]
		}
		d = append(d, bson.E{Key: k, Value: dir})
	}
	return d
}

// desired lists every index the application relies on. Tenant collections
// lead with municipality_id so each scoped query is an index prefix.
func desired() []indexSet {
	return []indexSet{
		{"municipalities", []mongo.IndexModel{
			// a custom domain maps to at most one tenant
			{Keys: keys("website.custom_domain"), Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_municipalities_custom_domain")},
			{Keys: keys("active", "name_ci", "_id"), Options: options.Index().SetName("idx_municipalities_active_nameci__id")},
		}},
		{"zones", []mongo.IndexModel{
			{Keys: keys("municipality_id", "zone_id"), Options: options.Index().SetUnique(true).SetName("uniq_zones_muni_zone")},
			{Keys: keys("municipality_id", "sort_order", "zone_id"), Options: options.Index().SetName("idx_zones_muni_sort")},
		}},
		{"schedules", []mongo.IndexModel{
			{Keys: keys("municipality_id"), Options: options.Index().SetUnique(true).SetName("uniq_schedules_muni")},
		}},
		{"events", []mongo.IndexModel{
			{Keys: keys("municipality_id", "date", "_id"), Options: options.Index().SetName("idx_events_muni_date")},
			{Keys: keys("municipality_id", "end_date"), Options: options.Index().SetName("idx_events_muni_enddate")},
		}},
		{"alerts", []mongo.IndexModel{
			{Keys: keys("municipality_id", "active", "-created_at"), Options: options.Index().SetName("idx_alerts_muni_active_created")},
		}},
		{"facilities", []mongo.IndexModel{
			{Keys: keys("municipality_id", "name_ci", "_id"), Options: options.Index().SetName("idx_facilities_muni_nameci")},
		}},
		{"road_closures", []mongo.IndexModel{
			{Keys: keys("municipality_id", "status", "start_date"), Options: options.Index().SetName("idx_roadclosures_muni_status_start")},
		}},
		{"pages", []mongo.IndexModel{
			{Keys: keys("municipality_id", "slug"), Options: options.Index().SetUnique(true).SetName("uniq_pages_muni_slug")},
			{Keys: keys("municipality_id", "published", "sort_order"), Options: options.Index().SetName("idx_pages_muni_published_sort")},
		}},
		{"waste_items", []mongo.IndexModel{
			{Keys: keys("municipality_id", "sort_order", "_id"), Options: options.Index().SetName("idx_wasteitems_muni_sort")},
		}},
		{"admins", []mongo.IndexModel{
			{Keys: keys("email_ci"), Options: options.Index().SetUnique(true).SetName("uniq_admins_emailci")},
			{Keys: keys("municipality_id", "role"), Options: options.Index().SetName("idx_admins_muni_role")},
		}},
		{"identities", []mongo.IndexModel{
			{Keys: keys("email_ci"), Options: options.Index().SetUnique(true).SetName("uniq_identities_emailci")},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
	Sparse *bool  `bson:"sparse,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listIndexes(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique, desiredSparse bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = boolVal(m.Options.Unique)
			desiredSparse = boolVal(m.Options.Sparse)
		}
		desiredSig := keySig(m.Keys.(bson.D))
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique))

		start := time.Now()
		log.Debug("ensuring index")

		recreate := func(oldName string) error {
			if _, err := coll.Indexes().DropOne(ctx, oldName); err != nil {
				return fmt.Errorf("drop %s failed: %w", oldName, err)
			}
			if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
				if isDuplicateKeyErr(err) && desiredUnique {
					return errors.New("cannot create unique index (duplicates present)")
				}
				return err
			}
			return nil
		}

		ex, ok := listIndexes(ctx, coll, logger)[desiredSig]
		if !ok {
			_, err := coll.Indexes().CreateOne(ctx, m)
			if err == nil {
				log.Info("index ensured", zap.Duration("took", time.Since(start)))
				continue
			}
			if !isOptionsConflictErr(err) {
				log.Warn("index ensure failed", zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}
			// The same keys appeared under other options; reconcile below.
			if ex, ok = listIndexes(ctx, coll, logger)[desiredSig]; !ok {
				log.Warn("index ensure failed", zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
				continue
			}
		}

		sameOptions := boolVal(ex.Unique) == desiredUnique && boolVal(ex.Sparse) == desiredSparse
		if sameOptions && (desiredName == "" || ex.Name == desiredName) {
			log.Debug("reusing existing index", zap.Duration("took", time.Since(start)))
			continue
		}

		// Options or name differ: drop and recreate with the desired shape.
		if err := recreate(ex.Name); err != nil {
			log.Warn("index recreate failed", zap.String("existing", ex.Name), zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		log.Info("index dropped and recreated",
			zap.String("existing", ex.Name),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

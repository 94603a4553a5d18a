// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/civickey/civickey/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema, logger); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Tenant directory and accounts
	ensure("municipalities", municipalitiesSchema())
	ensure("admins", adminsSchema())
	ensure("identities", identitiesSchema())

	// Tenant-scoped content
	ensure("zones", zonesSchema())
	ensure("schedules", tenantSchema())
	ensure("events", eventsSchema())
	ensure("alerts", alertsSchema())
	ensure("facilities", tenantSchema())
	ensure("road_closures", roadClosuresSchema())
	ensure("pages", pagesSchema())
	ensure("waste_items", wasteItemsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		logger.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			logger.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonEmpty  = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	localized = bson.M{"bsonType": "object", "properties": bson.M{"en": bson.M{"bsonType": "string"}, "fr": bson.M{"bsonType": "string"}}}
	isoDate   = bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"}
)

func enumOf[T ~string](values ...T) bson.A {
	out := bson.A{}
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

// tenantSchema is the minimum every tenant-scoped document satisfies.
func tenantSchema(extra ...string) bson.M {
	return schema(append([]string{"municipality_id"}, extra...), bson.M{"municipality_id": nonEmpty})
}

func schema(required []string, props bson.M) bson.M {
	req := bson.A{}
	for _, r := range required {
		req = append(req, r)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   req,
			"properties": props,
		},
	}
}

func municipalitiesSchema() bson.M {
	return schema([]string{"name", "active"}, bson.M{
		"_id":    bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
		"name":   localized,
		"active": bson.M{"bsonType": "bool"},
	})
}

func adminsSchema() bson.M {
	return schema([]string{"email", "email_ci", "role", "active"}, bson.M{
		"email":    nonEmpty,
		"email_ci": nonEmpty,
		"role":     bson.M{"enum": enumOf(models.RoleViewer, models.RoleEditor, models.RoleAdmin, models.RoleSuperAdmin)},
		"active":   bson.M{"bsonType": "bool"},
	})
}

func identitiesSchema() bson.M {
	return schema([]string{"email_ci", "password_hash"}, bson.M{
		"email_ci":      nonEmpty,
		"password_hash": nonEmpty,
	})
}

func zonesSchema() bson.M {
	s := tenantSchema("zone_id", "name")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["zone_id"] = nonEmpty
	props["name"] = localized
	return s
}

func eventsSchema() bson.M {
	s := tenantSchema("title", "date")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["title"] = localized
	props["date"] = isoDate
	return s
}

func alertsSchema() bson.M {
	s := tenantSchema("title", "type", "active")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["title"] = localized
	props["type"] = bson.M{"enum": enumOf(models.AlertInfo, models.AlertWarning, models.AlertUrgent, models.AlertCollection)}
	props["active"] = bson.M{"bsonType": "bool"}
	return s
}

func roadClosuresSchema() bson.M {
	s := tenantSchema("title", "severity", "status")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["title"] = localized
	props["severity"] = bson.M{"enum": enumOf(models.SeverityFullClosure, models.SeverityPartial, models.SeverityDetour)}
	props["status"] = bson.M{"enum": enumOf(models.ClosureActive, models.ClosureScheduled, models.ClosureCompleted)}
	return s
}

func pagesSchema() bson.M {
	s := tenantSchema("slug", "type", "published")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["slug"] = nonEmpty
	props["type"] = bson.M{"enum": enumOf(models.PageTypes...)}
	props["published"] = bson.M{"bsonType": "bool"}
	props["content"] = bson.M{"bsonType": "object"}
	return s
}

func wasteItemsSchema() bson.M {
	s := tenantSchema("name", "bin_id", "search_terms")
	props := s["$jsonSchema"].(bson.M)["properties"].(bson.M)
	props["name"] = localized
	props["bin_id"] = nonEmpty
	props["search_terms"] = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}}
	return s
}

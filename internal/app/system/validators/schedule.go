package validators

import (
	"fmt"
	"strings"

	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/domain/models"
)

// Schedule checks a schedule document against the municipality's zones.
// Zone keys that name no existing zone are rejected, as are rules that
// reference a collection type missing from the catalog.
func Schedule(s models.Schedule, zoneIDs []string) error {
	var probs Problems

	seen := map[string]bool{}
	for i, ct := range s.CollectionTypes {
		switch {
		case strings.TrimSpace(ct.ID) == "":
			probs.addf("collectionTypes[%d].id is required", i)
		case seen[ct.ID]:
			probs.addf("collectionTypes[%d].id %q is duplicated", i, ct.ID)
		}
		seen[ct.ID] = true
		if ct.Name.IsZero() {
			probs.addf("collectionTypes[%d].name is required", i)
		}
		if ct.Color != "" && !inputval.IsHexColor(ct.Color) {
			probs.addf("collectionTypes[%d].color must look like #1a2b3c", i)
		}
	}

	for _, z := range s.OrphanZones(zoneIDs) {
		probs.addf("schedules references unknown zone %q", z)
	}
	for zoneID, zs := range s.Schedules {
		for typeID, rule := range zs {
			if _, ok := s.CollectionType(typeID); !ok {
				probs.addf("schedules[%s] references unknown collection type %q", zoneID, typeID)
			}
			if rule.DayOfWeek < 0 || rule.DayOfWeek > 6 {
				probs.addf("schedules[%s][%s].dayOfWeek must be 0-6", zoneID, typeID)
			}
			if !rule.Frequency.Valid() {
				probs.addf("schedules[%s][%s].frequency must be weekly or biweekly", zoneID, typeID)
			}
		}
	}

	known := map[string]bool{}
	for _, id := range zoneIDs {
		known[id] = true
	}
	for i, sc := range s.SpecialCollections {
		if strings.TrimSpace(sc.ID) == "" {
			probs.addf("specialCollections[%d].id is required", i)
		}
		if !inputval.IsDate(sc.Date) {
			probs.addf("specialCollections[%d].date must be YYYY-MM-DD", i)
		}
		for _, z := range sc.Zones {
			if !known[z] {
				probs.addf("specialCollections[%d] references unknown zone %q", i, z)
			}
		}
	}
	return probs.err()
}

// WasteItemBin checks that binID names a collection type of the schedule.
func WasteItemBin(s models.Schedule, binID string) error {
	if _, ok := s.CollectionType(binID); !ok {
		return Problems{fmt.Sprintf("binId references unknown collection type %q", binID)}
	}
	return nil
}

package models

// Zone is a geographic subdivision of a municipality with its own
// collection schedule. ZoneID is unique within the municipality only.
type Zone struct {
	MunicipalityID string    `bson:"municipality_id" json:"municipalityId"`
	ZoneID         string    `bson:"zone_id" json:"id"`
	Name           Localized `bson:"name" json:"name"`
	Description    Localized `bson:"description" json:"description"`
	SortOrder      int       `bson:"sort_order" json:"sortOrder"`
}

// ZoneIDs returns the IDs of the given zones in order.
func ZoneIDs(zones []Zone) []string {
	ids := make([]string, 0, len(zones))
	for _, z := range zones {
		ids = append(ids, z.ZoneID)
	}
	return ids
}

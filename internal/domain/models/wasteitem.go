package models

import "time"

// WasteItem tells residents which bin an item goes in. SearchTerms holds
// normalized (folded, diacritic-free) tokens computed on write.
type WasteItem struct {
	ID             string    `bson:"_id" json:"id"`
	MunicipalityID string    `bson:"municipality_id" json:"municipalityId"`
	Name           Localized `bson:"name" json:"name"`
	Note           Localized `bson:"note" json:"note"`
	BinID          string    `bson:"bin_id" json:"binId"`
	Keywords       []string  `bson:"keywords,omitempty" json:"keywords,omitempty"`
	SearchTerms    []string  `bson:"search_terms" json:"searchTerms"`
	SortOrder      int       `bson:"sort_order" json:"sortOrder"`

	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

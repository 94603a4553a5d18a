package models

import "time"

// Snapshot parts, used as keys of Snapshot.Errors.
const (
	PartConfig     = "config"
	PartZones      = "zones"
	PartSchedule   = "schedule"
	PartEvents     = "events"
	PartAlerts     = "alerts"
	PartFacilities = "facilities"
)

// Snapshot is everything a client needs to render a municipality, fetched
// in one call. A part that failed to load is left empty and its error
// message recorded in Errors under the part name.
type Snapshot struct {
	MunicipalityID string        `json:"municipalityId"`
	Config         *Municipality `json:"config"`
	Zones          []Zone        `json:"zones"`
	Schedule       *Schedule     `json:"schedule"`
	Events         []Event       `json:"events"`
	Alerts         []Alert       `json:"alerts"`
	Facilities     []Facility    `json:"facilities"`

	// DefaultZoneID is set when the municipality has exactly one zone.
	DefaultZoneID string `json:"defaultZoneId,omitempty"`

	FetchedAt time.Time         `json:"fetchedAt"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Complete reports whether every part loaded.
func (s Snapshot) Complete() bool {
	return len(s.Errors) == 0
}

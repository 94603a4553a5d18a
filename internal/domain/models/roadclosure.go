package models

import "time"

// ClosureSeverity describes how much of the road is affected.
type ClosureSeverity string

const (
	SeverityFullClosure ClosureSeverity = "full-closure"
	SeverityPartial     ClosureSeverity = "partial"
	SeverityDetour      ClosureSeverity = "detour"
)

// Valid reports whether s is a known severity.
func (s ClosureSeverity) Valid() bool {
	switch s {
	case SeverityFullClosure, SeverityPartial, SeverityDetour:
		return true
	}
	return false
}

// ClosureStatus is the lifecycle state of a road closure.
type ClosureStatus string

const (
	ClosureActive    ClosureStatus = "active"
	ClosureScheduled ClosureStatus = "scheduled"
	ClosureCompleted ClosureStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ClosureStatus) Valid() bool {
	switch s {
	case ClosureActive, ClosureScheduled, ClosureCompleted:
		return true
	}
	return false
}

// RoadClosure is a road work or closure notice.
type RoadClosure struct {
	ID             string          `bson:"_id" json:"id"`
	MunicipalityID string          `bson:"municipality_id" json:"municipalityId"`
	Title          Localized       `bson:"title" json:"title"`
	Description    Localized       `bson:"description" json:"description"`
	Location       string          `bson:"location" json:"location"`
	Severity       ClosureSeverity `bson:"severity" json:"severity"`
	Status         ClosureStatus   `bson:"status" json:"status"`
	StartDate      string          `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate        string          `bson:"end_date,omitempty" json:"endDate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

package models

import "time"

// AlertType classifies an alert for display.
type AlertType string

const (
	AlertInfo       AlertType = "info"
	AlertWarning    AlertType = "warning"
	AlertUrgent     AlertType = "urgent"
	AlertCollection AlertType = "collection"
)

// Alert is a municipal announcement. It is visible only when Active and
// today falls within [StartDate, EndDate]; either bound may be empty.
type Alert struct {
	ID             string    `bson:"_id" json:"id"`
	MunicipalityID string    `bson:"municipality_id" json:"municipalityId"`
	Title          Localized `bson:"title" json:"title"`
	Message        Localized `bson:"message" json:"message"`
	Type           AlertType `bson:"type" json:"type"`
	Active         bool      `bson:"active" json:"active"`
	StartDate      string    `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate        string    `bson:"end_date,omitempty" json:"endDate,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// VisibleOn reports whether the alert should be shown on the given day.
func (a Alert) VisibleOn(today string) bool {
	if !a.Active {
		return false
	}
	if a.StartDate != "" && today < a.StartDate {
		return false
	}
	if a.EndDate != "" && today > a.EndDate {
		return false
	}
	return true
}

package models

import "time"

// Event is a municipal event. Dates are calendar dates (YYYY-MM-DD) in the
// municipality's local time; Time/EndTime are HH:MM.
type Event struct {
	ID             string    `bson:"_id" json:"id"`
	MunicipalityID string    `bson:"municipality_id" json:"municipalityId"`
	Title          Localized `bson:"title" json:"title"`
	Description    Localized `bson:"description" json:"description"`

	Date    string `bson:"date" json:"date"`
	EndDate string `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Time    string `bson:"time,omitempty" json:"time,omitempty"`
	EndTime string `bson:"end_time,omitempty" json:"endTime,omitempty"`

	Location        string `bson:"location,omitempty" json:"location,omitempty"`
	Category        string `bson:"category,omitempty" json:"category,omitempty"`
	AgeGroup        string `bson:"age_group,omitempty" json:"ageGroup,omitempty"`
	ResidentsOnly   bool   `bson:"residents_only" json:"residentsOnly"`
	MaxParticipants *int   `bson:"max_participants,omitempty" json:"maxParticipants,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// LastDay returns the final calendar day of the event.
func (e Event) LastDay() string {
	if e.EndDate != "" && e.EndDate > e.Date {
		return e.EndDate
	}
	return e.Date
}

// UpcomingOn reports whether the event has not finished as of today
// (YYYY-MM-DD). Multi-day events stay upcoming until their end date.
func (e Event) UpcomingOn(today string) bool {
	return e.LastDay() >= today
}

package models

import "time"

// DayHours is the opening schedule of a facility for one weekday.
type DayHours struct {
	Day    int    `bson:"day" json:"day"` // time.Weekday
	Open   string `bson:"open,omitempty" json:"open,omitempty"`
	Close  string `bson:"close,omitempty" json:"close,omitempty"`
	Closed bool   `bson:"closed" json:"closed"`
}

// Facility is a public building or service point (arena, library, ecocentre).
type Facility struct {
	ID             string     `bson:"_id" json:"id"`
	MunicipalityID string     `bson:"municipality_id" json:"municipalityId"`
	Name           Localized  `bson:"name" json:"name"`
	Description    Localized  `bson:"description" json:"description"`
	Address        string     `bson:"address,omitempty" json:"address,omitempty"`
	Phone          string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string     `bson:"email,omitempty" json:"email,omitempty"`
	Hours          []DayHours `bson:"hours,omitempty" json:"hours,omitempty"`
	NameCI         string     `bson:"name_ci" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

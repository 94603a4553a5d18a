package validators

import (
	"errors"
	"strings"
	"testing"

	"github.com/civickey/civickey/internal/domain/models"
)

func validSchedule() models.Schedule {
	return models.Schedule{
		CollectionTypes: []models.CollectionType{
			{ID: "recycling", Name: models.Localized{EN: "Recycling", FR: "Recyclage"}, Color: "#1e88e5"},
			{ID: "garbage", Name: models.Localized{EN: "Garbage", FR: "Ordures"}, Color: "#424242"},
		},
		Schedules: map[string]models.ZoneSchedule{
			"east": {"recycling": {DayOfWeek: 2, Frequency: models.FrequencyWeekly}},
			"west": {"garbage": {DayOfWeek: 4, Frequency: models.FrequencyBiweekly}},
		},
		SpecialCollections: []models.SpecialCollection{
			{ID: "bulky-spring", Date: "2026-05-12", Zones: []string{"east"}, Active: true},
		},
	}
}

func TestSchedule_Valid(t *testing.T) {
	if err := Schedule(validSchedule(), []string{"east", "west"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
}

func TestSchedule_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Schedule)
		zones   []string
		wantMsg string
	}{
		{"orphan zone", func(*models.Schedule) {}, []string{"east"}, `unknown zone "west"`},
		{"unknown type", func(s *models.Schedule) {
			s.Schedules["east"]["compost"] = models.ZoneCollection{DayOfWeek: 1, Frequency: models.FrequencyWeekly}
		}, []string{"east", "west"}, `unknown collection type "compost"`},
		{"bad day", func(s *models.Schedule) {
			s.Schedules["east"]["recycling"] = models.ZoneCollection{DayOfWeek: 7, Frequency: models.FrequencyWeekly}
		}, []string{"east", "west"}, "dayOfWeek must be 0-6"},
		{"bad frequency", func(s *models.Schedule) {
			s.Schedules["east"]["recycling"] = models.ZoneCollection{DayOfWeek: 2, Frequency: "monthly"}
		}, []string{"east", "west"}, "frequency must be"},
		{"duplicate type", func(s *models.Schedule) {
			s.CollectionTypes = append(s.CollectionTypes, s.CollectionTypes[0])
		}, []string{"east", "west"}, "is duplicated"},
		{"special for unknown zone", func(s *models.Schedule) {
			s.SpecialCollections[0].Zones = []string{"north"}
		}, []string{"east", "west"}, `unknown zone "north"`},
		{"special bad date", func(s *models.Schedule) {
			s.SpecialCollections[0].Date = "12/05/2026"
		}, []string{"east", "west"}, "date must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchedule()
			tt.mutate(&s)
			err := Schedule(s, tt.zones)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error does not wrap ErrInvalid")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestWasteItemBin(t *testing.T) {
	s := validSchedule()
	if err := WasteItemBin(s, "recycling"); err != nil {
		t.Errorf("known bin rejected: %v", err)
	}
	if err := WasteItemBin(s, "hazardous"); err == nil {
		t.Error("unknown bin accepted")
	}
}

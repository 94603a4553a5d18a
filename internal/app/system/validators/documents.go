package validators

import (
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/domain/models"
)

func checkDateRange(p *Problems, start, end string, startRequired bool) {
	switch {
	case start == "" && startRequired:
		p.addf("date is required")
	case start != "" && !inputval.IsDate(start):
		p.addf("date must be YYYY-MM-DD")
	}
	if end == "" {
		return
	}
	if !inputval.IsDate(end) {
		p.addf("endDate must be YYYY-MM-DD")
		return
	}
	if start != "" && end < start {
		p.addf("endDate must not be before the start date")
	}
}

func checkClock(p *Problems, field, v string) {
	if v != "" && !inputval.IsClock(v) {
		p.addf("%s must be HH:MM", field)
	}
}

func Event(e models.Event) error {
	var probs Problems
	if e.Title.IsZero() {
		probs.addf("title is required")
	}
	checkDateRange(&probs, e.Date, e.EndDate, true)
	checkClock(&probs, "time", e.Time)
	checkClock(&probs, "endTime", e.EndTime)
	if e.MaxParticipants != nil && *e.MaxParticipants < 1 {
		probs.addf("maxParticipants must be positive")
	}
	return probs.err()
}

func Alert(a models.Alert) error {
	var probs Problems
	if a.Title.IsZero() {
		probs.addf("title is required")
	}
	if a.Message.IsZero() {
		probs.addf("message is required")
	}
	switch a.Type {
	case models.AlertInfo, models.AlertWarning, models.AlertUrgent, models.AlertCollection:
	default:
		probs.addf("type %q is not one of info, warning, urgent, collection", a.Type)
	}
	checkDateRange(&probs, a.StartDate, a.EndDate, false)
	return probs.err()
}

func Facility(f models.Facility) error {
	var probs Problems
	if f.Name.IsZero() {
		probs.addf("name is required")
	}
	checkEmail(&probs, "email", f.Email)
	days := map[int]bool{}
	for i, h := range f.Hours {
		if h.Day < 0 || h.Day > 6 {
			probs.addf("hours[%d].day must be 0-6", i)
		} else if days[h.Day] {
			probs.addf("hours[%d].day %d is listed twice", i, h.Day)
		}
		days[h.Day] = true
		if h.Closed {
			continue
		}
		if !inputval.IsClock(h.Open) || !inputval.IsClock(h.Close) {
			probs.addf("hours[%d] needs open and close as HH:MM", i)
		}
	}
	return probs.err()
}

func RoadClosure(rc models.RoadClosure) error {
	var probs Problems
	if rc.Title.IsZero() {
		probs.addf("title is required")
	}
	if rc.Location == "" {
		probs.addf("location is required")
	}
	if !rc.Severity.Valid() {
		probs.addf("severity %q is not one of full-closure, partial, detour", rc.Severity)
	}
	if !rc.Status.Valid() {
		probs.addf("status %q is not one of active, scheduled, completed", rc.Status)
	}
	checkDateRange(&probs, rc.StartDate, rc.EndDate, false)
	return probs.err()
}

// Zone checks a zone. The ID must be a slug since it keys the schedule.
func Zone(z models.Zone) error {
	var probs Problems
	if !inputval.IsSlug(z.ZoneID) {
		probs.addf("id must be a lowercase slug")
	}
	if z.Name.IsZero() {
		probs.addf("name is required")
	}
	return probs.err()
}

// MunicipalityProfile checks the editable profile of a municipality.
func MunicipalityProfile(m models.Municipality) error {
	var probs Problems
	if m.Name.IsZero() {
		probs.addf("name is required")
	}
	for field, c := range map[string]string{
		"colors.primary":    m.Colors.Primary,
		"colors.secondary":  m.Colors.Secondary,
		"colors.background": m.Colors.Background,
	} {
		if c != "" && !inputval.IsHexColor(c) {
			probs.addf("%s must look like #1a2b3c", field)
		}
	}
	checkEmail(&probs, "contact.email", m.Contact.Email)
	checkURL(&probs, "contact.website", m.Contact.Website)
	return probs.err()
}

package validators

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/civickey/civickey/internal/app/system/htmlsanitize"
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/domain/models"
)

// ErrInvalid is wrapped by every Problems value so callers can map
// validation failures to 400 with errors.Is.
var ErrInvalid = errors.New("invalid input")

// Problems lists every failed rule of one write.
type Problems []string

func (p Problems) Error() string { return strings.Join(p, "; ") }

func (p Problems) Unwrap() error { return ErrInvalid }

func (p *Problems) addf(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p Problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// PageContent decodes raw strictly into the payload type of t, checks it,
// sanitizes HTML bodies and returns the normalized document to store.
// Unknown fields are rejected.
func PageContent(t models.PageType, raw json.RawMessage) (map[string]any, error) {
	if !t.Valid() {
		return nil, Problems{fmt.Sprintf("unknown page type %q", t)}
	}
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	payload, err := DecodeContent(t, raw)
	if err != nil {
		return nil, err
	}

	var probs Problems
	switch c := payload.(type) {
	case *models.TextContent:
		c.Body = htmlsanitize.SanitizeLocalized(c.Body)
		if c.Body.IsZero() {
			probs.addf("body is required")
		}
		checkURL(&probs, "featuredImage", c.FeaturedImage)
		if c.ContactInfo != nil {
			checkEmail(&probs, "contactInfo.email", c.ContactInfo.Email)
		}
	case *models.InfoCardsContent:
		if c.Cards == nil {
			c.Cards = []models.InfoCard{}
		}
		for i, card := range c.Cards {
			if card.Title.IsZero() {
				probs.addf("cards[%d].title is required", i)
			}
		}
	case *models.PDFContent:
		if c.Documents == nil {
			c.Documents = []models.Document{}
		}
		for i, d := range c.Documents {
			if d.Title.IsZero() {
				probs.addf("documents[%d].title is required", i)
			}
			if !inputval.IsValidHTTPURL(d.URL) {
				probs.addf("documents[%d].url must be an http or https URL", i)
			}
		}
	case *models.CouncilContent:
		if c.Members == nil {
			c.Members = []models.CouncilMember{}
		}
		for i, m := range c.Members {
			if strings.TrimSpace(m.Name) == "" {
				probs.addf("members[%d].name is required", i)
			}
			checkURL(&probs, fmt.Sprintf("members[%d].photoUrl", i), m.PhotoURL)
			checkEmail(&probs, fmt.Sprintf("members[%d].email", i), m.Email)
		}
	case *models.LinksContent:
		if c.Categories == nil {
			c.Categories = []models.LinkCategory{}
		}
		for i := range c.Categories {
			cat := &c.Categories[i]
			if cat.Title.IsZero() {
				probs.addf("categories[%d].title is required", i)
			}
			if cat.Links == nil {
				cat.Links = []models.Link{}
			}
			for j, l := range cat.Links {
				if l.Title.IsZero() {
					probs.addf("categories[%d].links[%d].title is required", i, j)
				}
				if !inputval.IsValidHTTPURL(l.URL) {
					probs.addf("categories[%d].links[%d].url must be an http or https URL", i, j)
				}
			}
		}
	case *models.ContactContent:
		checkEmail(&probs, "email", c.Email)
		if c.Departments == nil {
			c.Departments = []models.Department{}
		}
		for i, d := range c.Departments {
			if d.Name.IsZero() {
				probs.addf("departments[%d].name is required", i)
			}
			checkEmail(&probs, fmt.Sprintf("departments[%d].email", i), d.Email)
		}
	}
	if err := probs.err(); err != nil {
		return nil, err
	}
	return toMap(payload)
}

// DecodeContent strictly decodes raw into the payload struct of t and
// returns a pointer to it.
func DecodeContent(t models.PageType, raw []byte) (any, error) {
	var payload any
	switch t {
	case models.PageText:
		payload = &models.TextContent{}
	case models.PageInfoCards:
		payload = &models.InfoCardsContent{}
	case models.PagePDF:
		payload = &models.PDFContent{}
	case models.PageCouncil:
		payload = &models.CouncilContent{}
	case models.PageLinks:
		payload = &models.LinksContent{}
	case models.PageContact:
		payload = &models.ContactContent{}
	default:
		return nil, Problems{fmt.Sprintf("unknown page type %q", t)}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, Problems{fmt.Sprintf("content does not match page type %q: %v", t, err)}
	}
	return payload, nil
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func checkURL(p *Problems, field, v string) {
	if v != "" && !inputval.IsValidHTTPURL(v) {
		p.addf("%s must be an http or https URL", field)
	}
}

func checkEmail(p *Problems, field, v string) {
	if v != "" && !inputval.IsValidEmail(v) {
		p.addf("%s must be a valid email address", field)
	}
}

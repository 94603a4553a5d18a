package models

import "time"

// PageType selects the editor and renderer of a custom page. The set is
// closed.
type PageType string

const (
	PageText      PageType = "text"
	PageInfoCards PageType = "info-cards"
	PagePDF       PageType = "pdf"
	PageCouncil   PageType = "council"
	PageLinks     PageType = "links"
	PageContact   PageType = "contact"
)

// PageTypes lists every valid page type.
var PageTypes = []PageType{PageText, PageInfoCards, PagePDF, PageCouncil, PageLinks, PageContact}

// Valid reports whether t is one of PageTypes.
func (t PageType) Valid() bool {
	for _, pt := range PageTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// ReservedSlugs are routes of the public website that custom pages may not
// shadow.
var ReservedSlugs = []string{"collections", "events", "news", "facilities"}

// IsReservedSlug reports whether slug is reserved.
func IsReservedSlug(slug string) bool {
	for _, s := range ReservedSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// CustomPage is an admin-authored page on the public website. Content holds
// the type-specific payload (see the *Content types below); it is validated
// against Type on write.
type CustomPage struct {
	ID             string         `bson:"_id" json:"id"`
	MunicipalityID string         `bson:"municipality_id" json:"municipalityId"`
	Slug           string         `bson:"slug" json:"slug"`
	Type           PageType       `bson:"type" json:"type"`
	Title          Localized      `bson:"title" json:"title"`
	Content        map[string]any `bson:"content" json:"content"`
	Published      bool           `bson:"published" json:"published"`
	SortOrder      int            `bson:"sort_order" json:"sortOrder"`

	PublishedAt *time.Time `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

// ContactPoint is a phone/email pair.
type ContactPoint struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// TextContent is the payload of a "text" page. Body is HTML.
type TextContent struct {
	Body          Localized     `json:"body"`
	FeaturedImage string        `json:"featuredImage,omitempty"`
	ContactInfo   *ContactPoint `json:"contactInfo,omitempty"`
}

// InfoCard is one card of an "info-cards" page.
type InfoCard struct {
	Title       Localized `json:"title"`
	Description Localized `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// InfoCardsContent is the payload of an "info-cards" page.
type InfoCardsContent struct {
	Intro Localized  `json:"intro"`
	Cards []InfoCard `json:"cards"`
}

// Document is a downloadable file listed on a "pdf" page.
type Document struct {
	Title       Localized `json:"title"`
	URL         string    `json:"url"`
	Description Localized `json:"description"`
}

// PDFContent is the payload of a "pdf" page.
type PDFContent struct {
	Description Localized  `json:"description"`
	Documents   []Document `json:"documents"`
}

// CouncilMember is one elected official.
type CouncilMember struct {
	Name     string    `json:"name"`
	Role     Localized `json:"role"`
	PhotoURL string    `json:"photoUrl,omitempty"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
}

// CouncilContent is the payload of a "council" page.
type CouncilContent struct {
	Members []CouncilMember `json:"members"`
}

// Link is one entry of a link category.
type Link struct {
	Title Localized `json:"title"`
	URL   string    `json:"url"`
	Icon  string    `json:"icon,omitempty"`
}

// LinkCategory groups links under a heading.
type LinkCategory struct {
	Title Localized `json:"title"`
	Links []Link    `json:"links"`
}

// LinksContent is the payload of a "links" page.
type LinksContent struct {
	Categories []LinkCategory `json:"categories"`
}

// Department is one service listed on a "contact" page.
type Department struct {
	Name  Localized `json:"name"`
	Phone string    `json:"phone,omitempty"`
	Email string    `json:"email,omitempty"`
	Hours Localized `json:"hours"`
}

// ContactContent is the payload of a "contact" page.
type ContactContent struct {
	Address     Localized    `json:"address"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	Hours       Localized    `json:"hours"`
	Departments []Department `json:"departments"`
}

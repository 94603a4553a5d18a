package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	schedulestore "github.com/civickey/civickey/internal/app/store/schedules"
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/app/system/validators"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

var (
	ErrInvalidSlug  = errors.New("slug must be lowercase letters, digits and single hyphens")
	ErrReservedSlug = errors.New("slug is reserved by the website")
	ErrZoneInUse    = errors.New("zone is referenced by the collection schedule")
)

// SaveSchedule validates the schedule against the municipality's zones and
// waste-item bins, then replaces the stored document.
func (s *Service) SaveSchedule(ctx context.Context, municipalityID string, sch models.Schedule) (models.Schedule, error) {
	zoneIDs, err := s.zones.IDs(ctx, municipalityID)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("load zones: %w", err)
	}
	if err := validators.Schedule(sch, zoneIDs); err != nil {
		return models.Schedule{}, err
	}
	items, err := s.waste.List(ctx, municipalityID)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("load waste items: %w", err)
	}
	var probs validators.Problems
	for _, it := range items {
		if err := validators.WasteItemBin(sch, it.BinID); err != nil {
			probs = append(probs, fmt.Sprintf("collection type %q is used by waste item %q", it.BinID, it.Name.In(models.LocaleFR)))
		}
	}
	if len(probs) > 0 {
		return models.Schedule{}, probs
	}

	saved, err := s.schedules.Put(ctx, municipalityID, sch)
	if err != nil {
		return models.Schedule{}, err
	}
	s.log.Info("schedule saved",
		zap.String("municipality_id", municipalityID),
		zap.Int("zones", len(sch.Schedules)))
	return saved, nil
}

// DeleteZone deletes a zone unless the schedule still has rules for it.
func (s *Service) DeleteZone(ctx context.Context, municipalityID, zoneID string) error {
	zoneID = normalize.Slug(zoneID)
	sch, err := s.schedules.Get(ctx, municipalityID)
	switch {
	case errors.Is(err, schedulestore.ErrNotFound):
	case err != nil:
		return err
	default:
		if _, ok := sch.Schedules[zoneID]; ok {
			return ErrZoneInUse
		}
		for _, sc := range sch.SpecialCollections {
			for _, z := range sc.Zones {
				if z == zoneID {
					return ErrZoneInUse
				}
			}
		}
	}
	return mapErr(s.zones.Delete(ctx, municipalityID, zoneID))
}

// PageInput is a page as submitted by the admin console. Content is
// checked against Type.
type PageInput struct {
	Slug      string           `json:"slug"`
	Type      models.PageType  `json:"type"`
	Title     models.Localized `json:"title"`
	Content   json.RawMessage  `json:"content"`
	Published bool             `json:"published"`
	SortOrder int              `json:"sortOrder"`
}

// CheckSlug normalizes slug and rejects malformed and reserved slugs.
func CheckSlug(slug string) (string, error) {
	slug = normalize.Slug(slug)
	if !inputval.IsSlug(slug) {
		return "", ErrInvalidSlug
	}
	if models.IsReservedSlug(slug) {
		return "", ErrReservedSlug
	}
	return slug, nil
}

func (in PageInput) toPage() (models.CustomPage, error) {
	slug, err := CheckSlug(in.Slug)
	if err != nil {
		return models.CustomPage{}, err
	}
	if in.Title.IsZero() {
		return models.CustomPage{}, validators.Problems{"title is required"}
	}
	content, err := validators.PageContent(in.Type, in.Content)
	if err != nil {
		return models.CustomPage{}, err
	}
	return models.CustomPage{
		Slug:      slug,
		Type:      in.Type,
		Title:     in.Title,
		Content:   content,
		Published: in.Published,
		SortOrder: in.SortOrder,
	}, nil
}

func (s *Service) CreatePage(ctx context.Context, municipalityID string, in PageInput) (models.CustomPage, error) {
	p, err := in.toPage()
	if err != nil {
		return models.CustomPage{}, err
	}
	return s.pages.Create(ctx, municipalityID, p)
}

func (s *Service) UpdatePage(ctx context.Context, municipalityID, id string, in PageInput) (models.CustomPage, error) {
	p, err := in.toPage()
	if err != nil {
		return models.CustomPage{}, err
	}
	updated, err := s.pages.Update(ctx, municipalityID, id, p)
	return updated, mapErr(err)
}

// CreateWasteItem stores an item whose bin exists in the schedule catalog.
func (s *Service) CreateWasteItem(ctx context.Context, municipalityID string, it models.WasteItem) (models.WasteItem, error) {
	if err := s.checkBin(ctx, municipalityID, it); err != nil {
		return models.WasteItem{}, err
	}
	return s.waste.Create(ctx, municipalityID, it)
}

func (s *Service) UpdateWasteItem(ctx context.Context, municipalityID, id string, it models.WasteItem) (models.WasteItem, error) {
	if err := s.checkBin(ctx, municipalityID, it); err != nil {
		return models.WasteItem{}, err
	}
	updated, err := s.waste.Update(ctx, municipalityID, id, it)
	return updated, mapErr(err)
}

// ImportWasteItems adds items in order after checking every bin against the
// schedule catalog. Nothing is written when any bin is unknown.
func (s *Service) ImportWasteItems(ctx context.Context, municipalityID string, items []models.WasteItem) (int, error) {
	sch, err := s.schedules.Get(ctx, municipalityID)
	if errors.Is(err, schedulestore.ErrNotFound) {
		sch = models.Schedule{}
	} else if err != nil {
		return 0, err
	}
	var probs validators.Problems
	for i, it := range items {
		if err := validators.WasteItemBin(sch, it.BinID); err != nil {
			probs = append(probs, fmt.Sprintf("item %d (%s): %v", i+1, it.Name.FR, err))
		}
	}
	if len(probs) > 0 {
		return 0, probs
	}
	for i, it := range items {
		if _, err := s.waste.Create(ctx, municipalityID, it); err != nil {
			return i, fmt.Errorf("import waste item %d: %w", i+1, err)
		}
	}
	s.log.Info("waste items imported",
		zap.String("municipality_id", municipalityID),
		zap.Int("count", len(items)))
	return len(items), nil
}

func (s *Service) checkBin(ctx context.Context, municipalityID string, it models.WasteItem) error {
	if it.Name.IsZero() {
		return validators.Problems{"name is required"}
	}
	sch, err := s.schedules.Get(ctx, municipalityID)
	if errors.Is(err, schedulestore.ErrNotFound) {
		sch = models.Schedule{}
	} else if err != nil {
		return err
	}
	return validators.WasteItemBin(sch, it.BinID)
}

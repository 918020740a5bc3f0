package service

import (
	"context"
	"strings"

	"sitesync-media/internal/media"
)

// CatalogService is the read side of the gallery: every call re-queries the
// repository, no caching.
type CatalogService struct {
	catalog Catalog
}

func NewCatalogService(catalog Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// Verticals returns every service category with its collections nested,
// newest first.
func (s *CatalogService) Verticals(ctx context.Context) ([]media.VerticalView, error) {
	verticals, err := s.catalog.DistinctVerticals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]media.VerticalView, 0, len(verticals))
	for _, vertical := range verticals {
		collections, err := s.catalog.FindByVertical(ctx, vertical)
		if err != nil {
			return nil, err
		}
		title := prettyVertical(vertical)
		views := make([]media.CollectionView, 0, len(collections))
		for _, c := range collections {
			views = append(views, media.CollectionView{
				ID:          c.ID,
				Title:       c.Title,
				Description: c.Description,
				Media:       c.Media,
				CreatedAt:   c.CreatedAt,
			})
		}
		out = append(out, media.VerticalView{
			ID:          vertical,
			Title:       title,
			Description: title + " Services",
			MediaItems:  views,
		})
	}
	return out, nil
}

// ByVertical returns the collections of one category, newest first.
func (s *CatalogService) ByVertical(ctx context.Context, vertical string) ([]media.CollectionView, error) {
	collections, err := s.catalog.FindByVertical(ctx, vertical)
	if err != nil {
		return nil, err
	}
	out := make([]media.CollectionView, 0, len(collections))
	for _, c := range collections {
		out = append(out, media.CollectionView{
			ID:                c.ID,
			Title:             c.Title,
			Description:       c.Description,
			Media:             c.Media,
			MarketingVertical: c.MarketingVertical,
			CreatedAt:         c.CreatedAt,
		})
	}
	return out, nil
}

// AllPreviews flattens every collection to its first asset for the homepage
// feed, newest first.
func (s *CatalogService) AllPreviews(ctx context.Context) ([]media.Preview, error) {
	collections, err := s.catalog.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]media.Preview, 0, len(collections))
	for _, c := range collections {
		p := media.Preview{
			ID:          c.ID,
			Title:       c.Title,
			Description: c.Description,
			Kind:        media.KindImage,
			Category:    c.MarketingVertical,
			CreatedAt:   c.CreatedAt,
		}
		if len(c.Media) > 0 {
			first := c.Media[0]
			p.URL = first.URL
			p.Kind = first.Kind
			p.Thumbnail = first.Thumbnail
		}
		out = append(out, p)
	}
	return out, nil
}

// prettyVertical turns a slug key into its display title:
// "brand-strategy" becomes "Brand Strategy".
func prettyVertical(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

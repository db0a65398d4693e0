package searchd

import (
	"fmt"

	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/result"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
)

// AttributeType is the value type of a category attribute.
type AttributeType string

// Attribute type constants.
const (
	AttributeString  AttributeType = "string"
	AttributeNumber  AttributeType = "number"
	AttributeBoolean AttributeType = "boolean"
)

// AttributeInfo describes one attribute of a category schema.
type AttributeInfo struct {
	Key     string
	Label   string
	Type    AttributeType
	Options []string
}

// CategoryInfo represents category metadata.
type CategoryInfo struct {
	Name       string
	Slug       string
	Synonyms   []string
	Attributes []AttributeInfo
	CreatedAt  int64
}

// Listing is a catalog listing. Attribute values must be string, float64
// or bool; anything else is rejected on upsert.
type Listing struct {
	ID          string
	Title       string
	Description string
	Price       float64
	Location    string
	Category    string
	Attributes  map[string]any
	CreatedAt   int64
}

// FacetValue is one value bucket of a facet with its listing count.
type FacetValue struct {
	Value string
	Count int
}

// SearchPage is one page of search results with facet counts.
type SearchPage struct {
	Listings   []Listing
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Facets     map[string][]FacetValue
}

func fromInternalCategory(c domcat.Category) CategoryInfo {
	attrs := make([]AttributeInfo, len(c.Schema()))
	for i, def := range c.Schema() {
		attrs[i] = AttributeInfo{
			Key:     def.Key(),
			Label:   def.Label(),
			Type:    AttributeType(def.AttrType()),
			Options: def.Options(),
		}
	}
	return CategoryInfo{
		Name:       c.Name(),
		Slug:       c.Slug(),
		Synonyms:   c.Synonyms(),
		Attributes: attrs,
		CreatedAt:  c.CreatedAt(),
	}
}

func toCategoryInput(info CategoryInfo) cataloguc.CategoryInput {
	attrs := make([]cataloguc.AttributeInput, len(info.Attributes))
	for i, a := range info.Attributes {
		attrs[i] = cataloguc.AttributeInput{
			Key:     a.Key,
			Label:   a.Label,
			Type:    string(a.Type),
			Options: a.Options,
		}
	}
	return cataloguc.CategoryInput{
		Name:       info.Name,
		Slug:       info.Slug,
		Synonyms:   info.Synonyms,
		Attributes: attrs,
	}
}

func fromInternalListing(l domlisting.Listing) Listing {
	attrs := make(map[string]any, len(l.Attributes()))
	for key, v := range l.Attributes() {
		switch v.Kind() {
		case domlisting.KindString:
			s, _ := v.AsString()
			attrs[key] = s
		case domlisting.KindNumber:
			n, _ := v.AsNumber()
			attrs[key] = n
		case domlisting.KindBool:
			b, _ := v.AsBool()
			attrs[key] = b
		}
	}
	return Listing{
		ID:          l.ID(),
		Title:       l.Title(),
		Description: l.Description(),
		Price:       l.Price(),
		Location:    l.Location(),
		Category:    l.Category(),
		Attributes:  attrs,
		CreatedAt:   l.CreatedAt(),
	}
}

func toListingInput(l Listing) (cataloguc.ListingInput, error) {
	attrs := make(map[string]domlisting.Value, len(l.Attributes))
	for key, raw := range l.Attributes {
		v, err := domlisting.FromAny(raw)
		if err != nil {
			return cataloguc.ListingInput{}, fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs[key] = v
	}
	return cataloguc.ListingInput{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		Category:    l.Category,
		Attributes:  attrs,
	}, nil
}

func fromInternalPage(p result.Page) SearchPage {
	listings := make([]Listing, len(p.Listings))
	for i := range p.Listings {
		listings[i] = fromInternalListing(p.Listings[i])
	}

	facets := make(map[string][]FacetValue, len(p.Facets))
	for key, values := range p.Facets {
		vs := make([]FacetValue, len(values))
		for i, v := range values {
			vs[i] = FacetValue{Value: v.Value, Count: v.Count}
		}
		facets[key] = vs
	}

	return SearchPage{
		Listings:   listings,
		Total:      p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
		Facets:     facets,
	}
}

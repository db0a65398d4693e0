package listing

import (
	"encoding/json"
	"fmt"

	"github.com/openlistings/searchd/internal/domain/listing"
)

// doc is the JSON document stored per listing. Attrs holds the raw typed
// payload for hydration; attrs_idx holds the rendered string form the
// per-category tag fields index; attrs_kv holds composite "key:value" tags
// for cross-category attribute filtering on the catalog index.
type doc struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description,omitempty"`
	Price       float64                  `json:"price"`
	Location    string                   `json:"location,omitempty"`
	Category    string                   `json:"category"`
	CreatedAt   int64                    `json:"created_at"`
	Attrs       map[string]listing.Value `json:"attrs,omitempty"`
	AttrsIdx    map[string]string        `json:"attrs_idx,omitempty"`
	AttrsKV     []string                 `json:"attrs_kv,omitempty"`
}

// listingToJSON converts a domain Listing to its stored document form.
func listingToJSON(l *listing.Listing) ([]byte, error) {
	d := doc{
		ID:          l.ID(),
		Title:       l.Title(),
		Description: l.Description(),
		Price:       l.Price(),
		Location:    l.Location(),
		Category:    l.Category(),
		CreatedAt:   l.CreatedAt(),
		Attrs:       l.Attributes(),
	}

	if len(d.Attrs) > 0 {
		d.AttrsIdx = make(map[string]string, len(d.Attrs))
		d.AttrsKV = make([]string, 0, len(d.Attrs))
		for key, v := range d.Attrs {
			rendered := v.Render()
			d.AttrsIdx[key] = rendered
			d.AttrsKV = append(d.AttrsKV, CompositeTag(key, rendered))
		}
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal listing %s: %w", l.ID(), err)
	}
	return data, nil
}

// listingFromJSON hydrates a domain Listing from a stored document.
func listingFromJSON(data []byte) (listing.Listing, error) {
	var d doc
	if err := json.Unmarshal(data, &d); err != nil {
		return listing.Listing{}, fmt.Errorf("unmarshal listing: %w", err)
	}
	return listing.Reconstruct(
		d.ID, d.Title, d.Description, d.Price,
		d.Location, d.Category, d.Attrs, d.CreatedAt,
	), nil
}

// CompositeTag renders the "key:value" member stored in attrs_kv.
func CompositeTag(key, rendered string) string {
	return key + ":" + rendered
}

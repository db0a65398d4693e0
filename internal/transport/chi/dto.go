package chi

import (
	"time"

	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/result"
	cataloguc "github.com/openlistings/searchd/internal/usecase/catalog"
)

// errorCode enumerates machine-readable error codes.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeInvalidFilter    errorCode = "invalid_filter"
	codeCategoryNotFound errorCode = "category_not_found"
	codeListingNotFound  errorCode = "listing_not_found"
	codeAlreadyExists    errorCode = "already_exists"
	codeRetrievalFailed  errorCode = "retrieval_failed"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type attributeDTO struct {
	Key     string   `json:"key"`
	Label   string   `json:"label,omitempty"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

type categoryRequest struct {
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	Synonyms   []string       `json:"synonyms,omitempty"`
	Attributes []attributeDTO `json:"attributes,omitempty"`
}

type categoryResponse struct {
	Name       string         `json:"name"`
	Slug       string         `json:"slug"`
	Synonyms   []string       `json:"synonyms,omitempty"`
	Attributes []attributeDTO `json:"attributes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type categoryListResponse struct {
	Items []categoryResponse `json:"items"`
	Total int                `json:"total"`
}

type listingRequest struct {
	ID          string                      `json:"id,omitempty"`
	Title       string                      `json:"title"`
	Description string                      `json:"description,omitempty"`
	Price       float64                     `json:"price"`
	Location    string                      `json:"location,omitempty"`
	Category    string                      `json:"category"`
	Attributes  map[string]domlisting.Value `json:"attributes,omitempty"`
}

type listingResponse struct {
	ID          string                      `json:"id"`
	Title       string                      `json:"title"`
	Description string                      `json:"description,omitempty"`
	Price       float64                     `json:"price"`
	Location    string                      `json:"location,omitempty"`
	Category    string                      `json:"category"`
	Attributes  map[string]domlisting.Value `json:"attributes,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
}

type batchListingsRequest struct {
	Items []listingRequest `json:"items"`
}

type batchListingsResponse struct {
	Items []listingResponse `json:"items"`
	Total int               `json:"total"`
}

type facetValueDTO struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type searchResponse struct {
	Items      []listingResponse          `json:"items"`
	Total      int                        `json:"total"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	TotalPages int                        `json:"total_pages"`
	Facets     map[string][]facetValueDTO `json:"facets"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func categoryToDTO(c domcat.Category) categoryResponse {
	attrs := make([]attributeDTO, len(c.Schema()))
	for i, def := range c.Schema() {
		attrs[i] = attributeDTO{
			Key:     def.Key(),
			Label:   def.Label(),
			Type:    string(def.AttrType()),
			Options: def.Options(),
		}
	}
	return categoryResponse{
		Name:       c.Name(),
		Slug:       c.Slug(),
		Synonyms:   c.Synonyms(),
		Attributes: attrs,
		CreatedAt:  time.UnixMilli(c.CreatedAt()).UTC(),
	}
}

func categoryInputFromDTO(req categoryRequest) cataloguc.CategoryInput {
	attrs := make([]cataloguc.AttributeInput, len(req.Attributes))
	for i, a := range req.Attributes {
		attrs[i] = cataloguc.AttributeInput{
			Key:     a.Key,
			Label:   a.Label,
			Type:    a.Type,
			Options: a.Options,
		}
	}
	return cataloguc.CategoryInput{
		Name:       req.Name,
		Slug:       req.Slug,
		Synonyms:   req.Synonyms,
		Attributes: attrs,
	}
}

func listingToDTO(l *domlisting.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID(),
		Title:       l.Title(),
		Description: l.Description(),
		Price:       l.Price(),
		Location:    l.Location(),
		Category:    l.Category(),
		Attributes:  l.Attributes(),
		CreatedAt:   time.UnixMilli(l.CreatedAt()).UTC(),
	}
}

func listingInputFromDTO(req listingRequest) cataloguc.ListingInput {
	return cataloguc.ListingInput{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Category:    req.Category,
		Attributes:  req.Attributes,
	}
}

func pageToDTO(p result.Page) searchResponse {
	items := make([]listingResponse, len(p.Listings))
	for i := range p.Listings {
		items[i] = listingToDTO(&p.Listings[i])
	}

	facets := make(map[string][]facetValueDTO, len(p.Facets))
	for key, values := range p.Facets {
		vs := make([]facetValueDTO, len(values))
		for i, v := range values {
			vs[i] = facetValueDTO{Value: v.Value, Count: v.Count}
		}
		facets[key] = vs
	}

	return searchResponse{
		Items:      items,
		Total:      p.TotalCount,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages(),
		Facets:     facets,
	}
}

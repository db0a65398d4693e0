package parser

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/filterset"
)

var numberRegex = regexp.MustCompile(`\d+`)

// Cue phrases checked as substrings of the lowercased query. Upper-bound
// cues are checked before lower-bound cues.
var (
	upperCues = []string{"under", "below", "less than", "max", "cheaper than"}
	lowerCues = []string{"over", "above", "min", "more than", "costlier than"}
)

// Heuristic is the local substring-scan query parser. Detection is
// order-sensitive by contract: categories and vocabulary values are scanned
// in their given order and the first category match wins.
type Heuristic struct{}

// NewHeuristic creates the heuristic parser.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Parse extracts a category hint, attribute value filters, and a price
// constraint from the query. An empty query short-circuits to the empty
// result. Parse never fails.
func (h *Heuristic) Parse(
	_ context.Context, query string, categories []category.Category, vocab Vocabulary,
) (Result, error) {
	res := Result{Filters: filterset.New()}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res, nil
	}

	for _, cat := range categories {
		if strings.Contains(q, strings.ToLower(cat.Name())) {
			res.CategorySlug = cat.Slug()
			break
		}
	}

	for _, key := range vocab.Keys() {
		var matched []listing.Value
		for _, val := range vocab.Values(key) {
			if strings.Contains(q, strings.ToLower(val)) {
				matched = append(matched, listing.StringValue(val))
			}
		}
		switch {
		case len(matched) == 1:
			res.Filters.Set(key, filterset.Scalar(matched[0]))
		case len(matched) > 1:
			res.Filters.Set(key, filterset.OneOf(matched))
		}
	}

	if tok := numberRegex.FindString(q); tok != "" {
		if n, err := strconv.ParseFloat(tok, 64); err == nil {
			res.Filters.Set(filterset.PriceKey, filterset.PriceRange(priceRange(q, n)))
		}
	}

	return res, nil
}

// priceRange classifies the extracted number by cue phrase: upper-bound cues
// yield {max}, lower-bound cues yield {min}, and a bare number is treated as
// exact price equality.
func priceRange(q string, n float64) filterset.Range {
	for _, cue := range upperCues {
		if strings.Contains(q, cue) {
			return filterset.NewRange(nil, &n)
		}
	}
	for _, cue := range lowerCues {
		if strings.Contains(q, cue) {
			return filterset.NewRange(&n, nil)
		}
	}
	return filterset.Exact(n)
}

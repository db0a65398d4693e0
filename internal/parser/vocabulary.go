package parser

import "github.com/openlistings/searchd/internal/domain/category"

// Vocabulary maps attribute keys to the union of known option values across
// all categories that define the key. Key and value order follow first
// appearance in the category list; parsing is order-sensitive, so the order
// is part of the contract.
type Vocabulary struct {
	keys   []string
	values map[string][]string
}

// BuildVocabulary derives the attribute vocabulary from the full category
// set. The same key defined by several categories contributes the
// deduplicated union of its option lists. Numeric free-form attributes carry
// no options and so never enter the vocabulary.
func BuildVocabulary(categories []category.Category) Vocabulary {
	v := Vocabulary{values: make(map[string][]string)}
	seen := make(map[string]map[string]bool)

	for _, cat := range categories {
		for _, def := range cat.Schema() {
			if len(def.Options()) == 0 {
				continue
			}
			key := def.Key()
			if seen[key] == nil {
				seen[key] = make(map[string]bool)
				v.keys = append(v.keys, key)
			}
			for _, opt := range def.Options() {
				if !seen[key][opt] {
					seen[key][opt] = true
					v.values[key] = append(v.values[key], opt)
				}
			}
		}
	}
	return v
}

// Keys returns the vocabulary keys in first-appearance order.
func (v Vocabulary) Keys() []string { return v.keys }

// Values returns the known values for key in first-appearance order.
func (v Vocabulary) Values(key string) []string { return v.values[key] }

// Len returns the number of vocabulary keys.
func (v Vocabulary) Len() int { return len(v.keys) }

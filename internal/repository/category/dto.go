package category

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/openlistings/searchd/internal/domain/category"
	"github.com/openlistings/searchd/internal/domain/category/attribute"
)

// attributeRow is the JSON-serializable representation of an attribute
// definition for HSET.
type attributeRow struct {
	Key     string   `json:"key"`
	Label   string   `json:"label,omitempty"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// categoryToHash converts a domain Category to a map for HSET.
func categoryToHash(cat category.Category) (map[string]string, error) {
	rows := make([]attributeRow, len(cat.Schema()))
	for i, def := range cat.Schema() {
		rows[i] = attributeRow{
			Key:     def.Key(),
			Label:   def.Label(),
			Type:    string(def.AttrType()),
			Options: def.Options(),
		}
	}
	schemaJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	synonymsJSON, err := json.Marshal(cat.Synonyms())
	if err != nil {
		return nil, fmt.Errorf("marshal synonyms: %w", err)
	}

	return map[string]string{
		"name":          cat.Name(),
		"slug":          cat.Slug(),
		"synonyms_json": string(synonymsJSON),
		"schema_json":   string(schemaJSON),
		"created_at":    strconv.FormatInt(cat.CreatedAt(), 10),
	}, nil
}

// categoryFromHash hydrates a domain Category from an HGETALL result map.
func categoryFromHash(m map[string]string) (category.Category, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return category.Category{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var synonyms []string
	if s := m["synonyms_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &synonyms); err != nil {
			return category.Category{}, fmt.Errorf("unmarshal synonyms: %w", err)
		}
	}

	var rows []attributeRow
	if s := m["schema_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &rows); err != nil {
			return category.Category{}, fmt.Errorf("unmarshal schema: %w", err)
		}
	}

	schema := make([]attribute.Definition, len(rows))
	for i, row := range rows {
		schema[i] = attribute.Reconstruct(row.Key, row.Label, attribute.Type(row.Type), row.Options)
	}

	return category.Reconstruct(m["name"], m["slug"], synonyms, schema, createdAt), nil
}

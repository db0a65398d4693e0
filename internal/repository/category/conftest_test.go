package category

import (
	"context"
	"fmt"

	"github.com/openlistings/searchd/internal/db"
)

// mockStore implements store with overridable behavior per test.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMulti  func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn         func(ctx context.Context, key string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)

	hsetCalls   []string
	delCalls    []string
	createCalls []string
	dropCalls   []string
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	m.hsetCalls = append(m.hsetCalls, key)
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMulti != nil {
		return m.hgetAllMulti(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	m.delCalls = append(m.delCalls, key)
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.createCalls = append(m.createCalls, def.Name)
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	m.dropCalls = append(m.dropCalls, name)
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

// storedHash builds the HGETALL shape of a minimal category.
func storedHash(name, slug string, createdAt int64) map[string]string {
	return map[string]string{
		"name":          name,
		"slug":          slug,
		"synonyms_json": "[]",
		"schema_json":   `[{"key":"brand","label":"Brand","type":"string","options":["Sony"]}]`,
		"created_at":    fmt.Sprintf("%d", createdAt),
	}
}

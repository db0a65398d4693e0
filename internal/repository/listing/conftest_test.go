package listing

import (
	"context"

	"github.com/openlistings/searchd/internal/db"
)

// mockStore implements store with overridable behavior per test.
type mockStore struct {
	jsonSetFn       func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn  func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn       func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonGetMultiFn  func(ctx context.Context, keys []string) ([][]byte, error)
	delFn           func(ctx context.Context, key string) error
	existsFn        func(ctx context.Context, key string) (bool, error)
	createIndexFn   func(ctx context.Context, def *db.IndexDefinition) error
	searchSortedFn  func(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error)
	searchRankedFn  func(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
	searchCountFn   func(ctx context.Context, index string, f db.FilterSpec) (int, error)
	groupCountMulti func(ctx context.Context, reqs []db.GroupCountRequest) ([]db.GroupCountResult, error)

	setKeys     []string
	batchSizes  []int
	createCalls []string

	sortedQueries []*db.SortedQuery
	rankedQueries []*db.RankedQuery
	countIndexes  []string
	countSpecs    []db.FilterSpec
	groupReqs     [][]db.GroupCountRequest
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	m.setKeys = append(m.setKeys, key)
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	m.batchSizes = append(m.batchSizes, len(items))
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.jsonGetMultiFn != nil {
		return m.jsonGetMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
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

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.createCalls = append(m.createCalls, def.Name)
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchSorted(ctx context.Context, q *db.SortedQuery) (*db.SearchResult, error) {
	m.sortedQueries = append(m.sortedQueries, q)
	if m.searchSortedFn != nil {
		return m.searchSortedFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	m.rankedQueries = append(m.rankedQueries, q)
	if m.searchRankedFn != nil {
		return m.searchRankedFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, f db.FilterSpec) (int, error) {
	m.countIndexes = append(m.countIndexes, index)
	m.countSpecs = append(m.countSpecs, f)
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, f)
	}
	return 0, nil
}

func (m *mockStore) GroupCountMulti(ctx context.Context, reqs []db.GroupCountRequest) ([]db.GroupCountResult, error) {
	m.groupReqs = append(m.groupReqs, reqs)
	if m.groupCountMulti != nil {
		return m.groupCountMulti(ctx, reqs)
	}
	return make([]db.GroupCountResult, len(reqs)), nil
}

package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openlistings/searchd/internal/domain"
	domcat "github.com/openlistings/searchd/internal/domain/category"
	domlisting "github.com/openlistings/searchd/internal/domain/listing"
	"github.com/openlistings/searchd/internal/domain/search/predicate"
	"github.com/openlistings/searchd/internal/domain/search/result"
	searchuc "github.com/openlistings/searchd/internal/usecase/search"
)

// stubRepo serves a fixed page for handler-level tests.
type stubRepo struct {
	listings []domlisting.Listing
	total    int

	lastOffset int
	lastLimit  int
}

func (s *stubRepo) Page(_ context.Context, _ predicate.Predicate, offset, limit int) ([]domlisting.Listing, error) {
	s.lastOffset = offset
	s.lastLimit = limit
	return s.listings, nil
}

func (s *stubRepo) Count(context.Context, predicate.Predicate) (int, error) {
	return s.total, nil
}

func (s *stubRepo) Facets(context.Context, domcat.Category, predicate.Predicate, int) (result.Facets, error) {
	return result.Facets{}, nil
}

type stubCats struct{}

func (stubCats) List(context.Context) ([]domcat.Category, error) { return nil, nil }
func (stubCats) GetBySlug(context.Context, string) (domcat.Category, error) {
	return domcat.Category{}, domain.ErrNotFound
}

func newTestServer(repo *stubRepo) *Server {
	svc := searchuc.New(repo, stubCats{}, nil, searchuc.Config{})
	return NewServer(svc, nil, nil, Config{DefaultPageSize: 10, MaxPageSize: 50}, zap.NewNop())
}

func doSearch(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chirouter.NewRouter()
	srv.Routes(r)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSearchHandler_OK(t *testing.T) {
	repo := &stubRepo{
		listings: []domlisting.Listing{
			domlisting.Reconstruct("a", "Sony TV", "", 300, "", "televisions", nil, 1700000000000),
		},
		total: 17,
	}
	srv := newTestServer(repo)

	rec := doSearch(t, srv, "/api/v1/search?q=tv&page=2&limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var res searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Total != 17 || res.Page != 2 || res.PageSize != 5 {
		t.Errorf("pagination: %+v", res)
	}
	if res.TotalPages != 4 {
		t.Errorf("total pages: got %d", res.TotalPages)
	}
	if len(res.Items) != 1 || res.Items[0].ID != "a" {
		t.Errorf("items: %+v", res.Items)
	}

	if repo.lastOffset != 5 || repo.lastLimit != 5 {
		t.Errorf("repo call: offset=%d limit=%d", repo.lastOffset, repo.lastLimit)
	}
}

func TestSearchHandler_LimitClamped(t *testing.T) {
	repo := &stubRepo{}
	srv := newTestServer(repo)

	rec := doSearch(t, srv, "/api/v1/search?limit=500")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if repo.lastLimit != 50 {
		t.Errorf("limit should be clamped to the max, got %d", repo.lastLimit)
	}
}

func TestSearchHandler_DefaultLimit(t *testing.T) {
	repo := &stubRepo{}
	srv := newTestServer(repo)

	rec := doSearch(t, srv, "/api/v1/search")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if repo.lastLimit != 10 {
		t.Errorf("default limit: got %d", repo.lastLimit)
	}
}

func TestSearchHandler_BadPageParam(t *testing.T) {
	srv := newTestServer(&stubRepo{})

	rec := doSearch(t, srv, "/api/v1/search?page=banana")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestSearchHandler_InvalidFilters(t *testing.T) {
	srv := newTestServer(&stubRepo{})

	rec := doSearch(t, srv, "/api/v1/search?filters=%7Bbroken")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Code != codeInvalidFilter {
		t.Errorf("code: got %q", res.Code)
	}
}

func TestSearchHandler_UnknownCategory(t *testing.T) {
	srv := newTestServer(&stubRepo{})

	rec := doSearch(t, srv, "/api/v1/search?category=ghosts")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d", rec.Code)
	}

	var res errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Code != codeCategoryNotFound {
		t.Errorf("code: got %q", res.Code)
	}
}

func TestHandleDomainError_Mapping(t *testing.T) {
	srv := newTestServer(&stubRepo{})

	tests := []struct {
		err    error
		status int
		code   errorCode
	}{
		{domain.ErrInvalidFilter, http.StatusBadRequest, codeInvalidFilter},
		{domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed},
		{domain.ErrNotFound, http.StatusNotFound, codeCategoryNotFound},
		{domain.ErrListingNotFound, http.StatusNotFound, codeListingNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists},
		{domain.ErrRetrieval, http.StatusInternalServerError, codeRetrievalFailed},
		{errors.New("surprise"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tc := range tests {
		rec := httptest.NewRecorder()
		srv.handleDomainError(rec, tc.err)

		if rec.Code != tc.status {
			t.Errorf("%v: status got %d, want %d", tc.err, rec.Code, tc.status)
		}
		var res errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if res.Code != tc.code {
			t.Errorf("%v: code got %q, want %q", tc.err, res.Code, tc.code)
		}
	}
}

func TestSafeDomainMessage_HidesInternals(t *testing.T) {
	wrapped := errors.New("dial tcp 10.0.0.1:6379: connection refused")
	if got := safeDomainMessage(wrapped); got != "internal error" {
		t.Errorf("got %q", got)
	}
	if got := safeDomainMessage(domain.ErrInvalidFilter); got != domain.ErrInvalidFilter.Error() {
		t.Errorf("got %q", got)
	}
}

package query

import "testing"

func TestNew_Normalizes(t *testing.T) {
	r := New("  nike shoes  ", "running-shoes", []byte(`{}`), 0, -5)

	if r.Text() != "nike shoes" {
		t.Errorf("text: got %q", r.Text())
	}
	if r.Page() != 1 {
		t.Errorf("page should floor at 1, got %d", r.Page())
	}
	if r.PageSize() != 1 {
		t.Errorf("page size should floor at 1, got %d", r.PageSize())
	}
}

func TestOffset(t *testing.T) {
	tests := []struct {
		page, pageSize, want int
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
		{0, 10, 0}, // floored to page 1
	}
	for _, tc := range tests {
		r := New("", "", nil, tc.page, tc.pageSize)
		if got := r.Offset(); got != tc.want {
			t.Errorf("page=%d size=%d: offset %d, want %d", tc.page, tc.pageSize, got, tc.want)
		}
	}
}

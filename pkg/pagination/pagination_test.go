package pagination_test

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/query"
)

func feedConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 9, MaxPageSize: 50}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := pagination.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
			t.Errorf("config = %+v, want {20 100}", cfg)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("SNAPGRAM_TEST_PAGE_SIZE", "9")
		t.Setenv("SNAPGRAM_TEST_MAX_PAGE", "30")

		cfg := pagination.Config{}
		err := cfg.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "SNAPGRAM_TEST_PAGE_SIZE",
			MaxPageSize:     "SNAPGRAM_TEST_MAX_PAGE",
		})
		if err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.DefaultPageSize != 9 || cfg.MaxPageSize != 30 {
			t.Errorf("config = %+v, want {9 30}", cfg)
		}
	})

	t.Run("default exceeds max", func(t *testing.T) {
		cfg := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
		err := cfg.Finalize(nil)
		if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
			t.Errorf("err = %v, want default/max validation error", err)
		}
	})
}

func TestConfigMerge(t *testing.T) {
	base := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	base.Merge(&pagination.Config{DefaultPageSize: 9})

	if base.DefaultPageSize != 9 {
		t.Errorf("DefaultPageSize = %d, want 9", base.DefaultPageSize)
	}
	if base.MaxPageSize != 100 {
		t.Errorf("MaxPageSize = %d, want 100 (unchanged)", base.MaxPageSize)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{
		"page":      {"2"},
		"page_size": {"500"},
		"search":    {"ana"},
		"sort":      {"Name,-CreatedAt"},
	}

	req := pagination.PageRequestFromQuery(values, feedConfig())

	if req.Page != 2 {
		t.Errorf("Page = %d, want 2", req.Page)
	}
	if req.PageSize != 50 {
		t.Errorf("PageSize = %d, want clamped 50", req.PageSize)
	}
	if req.Offset() != 50 {
		t.Errorf("Offset() = %d, want 50", req.Offset())
	}
	if req.Search == nil || *req.Search != "ana" {
		t.Errorf("Search = %v, want ana", req.Search)
	}
	if len(req.Sort) != 2 || !req.Sort[1].Descending {
		t.Errorf("Sort = %v, want [Name -CreatedAt]", req.Sort)
	}

	empty := pagination.PageRequestFromQuery(url.Values{}, feedConfig())
	if empty.Page != 1 || empty.PageSize != 9 || empty.Search != nil {
		t.Errorf("empty request = %+v, want page 1 size 9 no search", empty)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		wantTotalPages int
	}{
		{"exact division", 18, 2},
		{"remainder", 19, 3},
		{"empty result", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult[string](nil, tt.total, 1, 9)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
			if result.Data == nil {
				t.Error("Data should be empty slice, not nil")
			}
		})
	}
}

func TestSortFieldsUnmarshal(t *testing.T) {
	inputs := []string{
		`"Name,-CreatedAt"`,
		`[{"Field":"Name","Descending":false},{"Field":"CreatedAt","Descending":true}]`,
	}

	for _, input := range inputs {
		var sf pagination.SortFields
		if err := json.Unmarshal([]byte(input), &sf); err != nil {
			t.Fatalf("unmarshal %s failed: %v", input, err)
		}
		if len(sf) != 2 {
			t.Fatalf("length = %d, want 2", len(sf))
		}
		if sf[1] != (query.SortField{Field: "CreatedAt", Descending: true}) {
			t.Errorf("sf[1] = %v, want {CreatedAt true}", sf[1])
		}
	}
}

func TestCursorRequestFromQuery(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantAfter string
		wantLimit int
	}{
		{"first page", url.Values{}, "", 9},
		{"with cursor", url.Values{"cursor": {"abc"}}, "abc", 9},
		{"limit clamped", url.Values{"limit": {"1000"}}, "", 50},
		{"explicit limit", url.Values{"limit": {"3"}, "cursor": {"x"}}, "x", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pagination.CursorRequestFromQuery(tt.values, feedConfig())
			if req.After != tt.wantAfter {
				t.Errorf("After = %q, want %q", req.After, tt.wantAfter)
			}
			if req.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", req.Limit, tt.wantLimit)
			}
		})
	}
}

func TestNewCursorResult(t *testing.T) {
	id := func(s string) string { return s }

	t.Run("full page carries cursor of last item", func(t *testing.T) {
		result := pagination.NewCursorResult([]string{"c", "b", "a"}, 3, id)
		if result.Cursor != "a" {
			t.Errorf("Cursor = %q, want a", result.Cursor)
		}
	})

	t.Run("short page has no cursor", func(t *testing.T) {
		result := pagination.NewCursorResult([]string{"b", "a"}, 3, id)
		if result.Cursor != "" {
			t.Errorf("Cursor = %q, want empty", result.Cursor)
		}
	})

	t.Run("nil data becomes empty", func(t *testing.T) {
		result := pagination.NewCursorResult[string](nil, 3, id)
		if result.Data == nil || len(result.Data) != 0 {
			t.Errorf("Data = %v, want empty slice", result.Data)
		}
		if result.Cursor != "" {
			t.Errorf("Cursor = %q, want empty", result.Cursor)
		}
	})

	t.Run("next page never repeats the previous page", func(t *testing.T) {
		feed := []string{"i9", "i8", "i7", "i6", "i5", "i4", "i3", "i2", "i1", "i0"}

		page := func(after string, limit int) []string {
			start := 0
			if after != "" {
				for i, v := range feed {
					if v == after {
						start = i + 1
					}
				}
			}
			end := min(start+limit, len(feed))
			return feed[start:end]
		}

		first := pagination.NewCursorResult(page("", 4), 4, id)
		second := pagination.NewCursorResult(page(first.Cursor, 4), 4, id)

		seen := make(map[string]bool)
		for _, v := range first.Data {
			seen[v] = true
		}
		for _, v := range second.Data {
			if seen[v] {
				t.Errorf("item %q repeated across pages", v)
			}
		}
	})
}

func TestPageResultHasNext(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		want  bool
	}{
		{"first of three", 25, 1, true},
		{"last page", 25, 3, false},
		{"empty", 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := pagination.NewPageResult([]int{}, tt.total, tt.page, 10)
			if result.HasNext != tt.want {
				t.Errorf("HasNext = %v, want %v", result.HasNext, tt.want)
			}
		})
	}
}

func TestPageRequestIgnoresBlankSearch(t *testing.T) {
	req := pagination.PageRequestFromQuery(url.Values{"search": {"   "}}, feedConfig())
	if req.Search != nil {
		t.Errorf("Search = %q, want nil", *req.Search)
	}
}

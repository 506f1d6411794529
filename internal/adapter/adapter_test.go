package adapter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/kyuscout/kyuscout/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func htmlResponse(t *testing.T, pageURL, html string) *types.Response {
	t.Helper()
	req, err := types.NewRequest(pageURL)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return &types.Response{
		StatusCode: 200,
		Request:    req,
		Body:       []byte(html),
		FinalURL:   pageURL,
	}
}

func TestDefaultMaxPages(t *testing.T) {
	tests := []struct {
		quota, pageSize, configured, want int
	}{
		{10, 10, 30, 3},
		{100, 10, 30, 12},
		{500, 10, 30, 30},
		{10, 0, 30, 3}, // zero page size falls back to ten
	}
	for _, tt := range tests {
		if got := defaultMaxPages(tt.quota, tt.pageSize, tt.configured); got != tt.want {
			t.Errorf("defaultMaxPages(%d, %d, %d) = %d, want %d",
				tt.quota, tt.pageSize, tt.configured, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(discardLogger())

	for _, name := range []string{"kyujinbox", "toranet", "biyou_nurse", "concier", "indeed"} {
		site, err := reg.Get(name)
		if err != nil {
			t.Errorf("Get(%q): %v", name, err)
			continue
		}
		if site.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, site.Name())
		}
	}

	if _, err := reg.Get("hellowork"); err == nil {
		t.Error("unknown site accepted")
	}

	names := reg.Names()
	if len(names) != 5 {
		t.Errorf("Names() = %v, want 5 sites", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names() not sorted: %v", names)
			break
		}
	}
}

package service

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, defaultPageLimit},
		{"negative", -3, -1, 1, defaultPageLimit},
		{"limit capped", 2, 500, 2, maxPageLimit},
		{"page capped", math.MaxInt, 100, maxPage, 100},
		{"in range", 7, 15, 7, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := normalizePage(tt.page, tt.limit)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Fatalf("got (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
			if skip := int64(page-1) * int64(limit); skip < 0 {
				t.Fatalf("negative skip %d", skip)
			}
		})
	}
}

func TestRecipeService_List_HugePageIsClamped(t *testing.T) {
	repo := newStubRecipeRepo()
	svc := NewRecipeService(repo, zerolog.Nop())

	res, err := svc.List(context.Background(), ports.ListRecipesFilter{Page: math.MaxInt, Limit: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Page != maxPage {
		t.Fatalf("expected page %d, got %d", maxPage, res.Page)
	}
}

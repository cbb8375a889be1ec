package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// ListRecipesFilter carries all query parameters for listing recipes.
type ListRecipesFilter struct {
	Search   string // optional: partial, case-insensitive match on title
	Category string // optional: exact match
	Cuisine  string // optional: exact match
	Page     int    // 1-based
	Limit    int    // max rows per page (capped at 100 by service)
}

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error)
	FindByID(ctx context.Context, id string) (*domain.Recipe, error)
	List(ctx context.Context, filter ListRecipesFilter) ([]*domain.Recipe, int64, error)
	// Sample returns one random recipe matching filter (pagination ignored).
	Sample(ctx context.Context, filter ListRecipesFilter) (*domain.Recipe, error)
	Update(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error)
	Delete(ctx context.Context, id string) error
}

package ports

import (
	"context"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// RecipeInput carries the client-editable fields of a recipe.
type RecipeInput struct {
	Title        string
	Category     string
	Cuisine      string
	Ingredients  []domain.Ingredient
	Instructions string
	ImageURL     string
	PrepMinutes  int
	Servings     int
}

// ListRecipesResult is returned by ListRecipes.
type ListRecipesResult struct {
	Items      []*domain.Recipe
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// RecipeService defines use-case operations for recipes.
type RecipeService interface {
	List(ctx context.Context, filter ListRecipesFilter) (*ListRecipesResult, error)
	Get(ctx context.Context, id string) (*domain.Recipe, error)
	Random(ctx context.Context, filter ListRecipesFilter) (*domain.Recipe, error)
	Create(ctx context.Context, actor *domain.Identity, in RecipeInput) (*domain.Recipe, error)
	Update(ctx context.Context, actor *domain.Identity, id string, in RecipeInput) (*domain.Recipe, error)
	Delete(ctx context.Context, actor *domain.Identity, id string) error
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

type RecipeService struct {
	repo   ports.RecipeRepository
	logger zerolog.Logger
}

func NewRecipeService(repo ports.RecipeRepository, logger zerolog.Logger) *RecipeService {
	return &RecipeService{repo: repo, logger: logger}
}

// List returns a page of recipes. Page defaults to 1 and limit to 20, capped at 100.
func (s *RecipeService) List(ctx context.Context, filter ports.ListRecipesFilter) (*ports.ListRecipesResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list recipes")
		return nil, err
	}
	return &ports.ListRecipesResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	return s.repo.FindByID(ctx, id)
}

// Random picks one recipe matching the category/cuisine filter.
func (s *RecipeService) Random(ctx context.Context, filter ports.ListRecipesFilter) (*domain.Recipe, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.Sample(ctx, filter)
}

func (s *RecipeService) Create(ctx context.Context, actor *domain.Identity, in ports.RecipeInput) (*domain.Recipe, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := validateRecipe(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := applyRecipeInput(&domain.Recipe{CreatedBy: actor.UserID, CreatedAt: now}, in)
	r.UpdatedAt = now

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create recipe")
		return nil, err
	}
	s.logger.Info().Str("recipe_id", created.ID).Str("user_id", actor.UserID).Msg("recipe created")
	return created, nil
}

func (s *RecipeService) Update(ctx context.Context, actor *domain.Identity, id string, in ports.RecipeInput) (*domain.Recipe, error) {
	if err := validateRecipe(in); err != nil {
		return nil, err
	}
	existing, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	r := applyRecipeInput(existing, in)
	r.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, r)
}

func (s *RecipeService) Delete(ctx context.Context, actor *domain.Identity, id string) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("recipe_id", id).Str("user_id", actor.UserID).Msg("recipe deleted")
	return nil
}

func (s *RecipeService) editable(ctx context.Context, actor *domain.Identity, id string) (*domain.Recipe, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.EditableBy(actor) {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

func validateRecipe(in ports.RecipeInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.NewValidationError("title is required")
	}
	if strings.TrimSpace(in.Instructions) == "" {
		return domain.NewValidationError("instructions are required")
	}
	if len(in.Ingredients) == 0 {
		return domain.NewValidationError("at least one ingredient is required")
	}
	for i, ing := range in.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			return domain.NewValidationError("ingredients[%d].name is required", i)
		}
	}
	if in.PrepMinutes < 0 || in.Servings < 0 {
		return domain.NewValidationError("prepMinutes and servings must not be negative")
	}
	return nil
}

func applyRecipeInput(r *domain.Recipe, in ports.RecipeInput) *domain.Recipe {
	r.Title = strings.TrimSpace(in.Title)
	r.Category = strings.TrimSpace(in.Category)
	r.Cuisine = strings.TrimSpace(in.Cuisine)
	r.Ingredients = in.Ingredients
	r.Instructions = in.Instructions
	r.ImageURL = in.ImageURL
	r.PrepMinutes = in.PrepMinutes
	r.Servings = in.Servings
	return r
}

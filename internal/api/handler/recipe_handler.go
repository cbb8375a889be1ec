package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mysteremeal/recipe-api/internal/api/metrics"
	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// RecipeHandler handles HTTP requests for recipe operations.
type RecipeHandler struct {
	service ports.RecipeService
}

func NewRecipeHandler(service ports.RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// List handles GET /api/recipes.
//
// @Summary      List recipes
// @Tags         recipes
// @Produce      json
// @Param        search    query     string  false  "Partial, case-insensitive match on title"
// @Param        category  query     string  false  "Exact category"
// @Param        cuisine   query     string  false  "Exact cuisine"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Success      200       {object}  recipePageResponse
// @Failure      400       {object}  errorResponse
// @Router       /api/recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	filter, err := bindRecipeFilter(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	items := res.Items
	if items == nil {
		items = []*domain.Recipe{}
	}
	return c.JSON(http.StatusOK, recipePageResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Random handles GET /api/recipes/random.
//
// @Summary      Random recipe
// @Tags         recipes
// @Produce      json
// @Param        category  query     string  false  "Exact category"
// @Param        cuisine   query     string  false  "Exact cuisine"
// @Success      200       {object}  domain.Recipe
// @Failure      404       {object}  errorResponse
// @Router       /api/recipes/random [get]
func (h *RecipeHandler) Random(c echo.Context) error {
	filter, err := bindRecipeFilter(c)
	if err != nil {
		return err
	}
	r, err := h.service.Random(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Get handles GET /api/recipes/:id.
//
// @Summary      Get a recipe
// @Tags         recipes
// @Produce      json
// @Param        id   path      string  true  "Recipe ID"
// @Success      200  {object}  domain.Recipe
// @Failure      404  {object}  errorResponse
// @Router       /api/recipes/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	r, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Create handles POST /api/recipes.
//
// @Summary      Create a recipe
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      recipeRequest  true  "Recipe"
// @Success      201   {object}  domain.Recipe
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	in, err := bindRecipe(c)
	if err != nil {
		return err
	}
	r, err := h.service.Create(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	metrics.RecipesWrittenTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, r)
}

// Update handles PUT /api/recipes/:id. Only the author or an admin may update.
//
// @Summary      Update a recipe
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Recipe ID"
// @Param        body  body      recipeRequest  true  "Recipe"
// @Success      200   {object}  domain.Recipe
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/recipes/{id} [put]
func (h *RecipeHandler) Update(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	in, err := bindRecipe(c)
	if err != nil {
		return err
	}
	r, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	metrics.RecipesWrittenTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /api/recipes/:id. Only the author or an admin may delete.
//
// @Summary      Delete a recipe
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recipe ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/recipes/{id} [delete]
func (h *RecipeHandler) Delete(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	metrics.RecipesWrittenTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Recipe removed"})
}

func bindRecipeFilter(c echo.Context) (ports.ListRecipesFilter, error) {
	var f ports.ListRecipesFilter
	err := echo.QueryParamsBinder(c).
		String("search", &f.Search).
		String("category", &f.Category).
		String("cuisine", &f.Cuisine).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		BindError()
	if err != nil {
		return f, queryError(err)
	}
	return f, nil
}

func bindRecipe(c echo.Context) (ports.RecipeInput, error) {
	var req recipeRequest
	if err := c.Bind(&req); err != nil {
		return ports.RecipeInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.RecipeInput{}, err
	}

	ingredients := make([]domain.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredients = append(ingredients, domain.Ingredient{Name: ing.Name, Measure: ing.Measure})
	}
	return ports.RecipeInput{
		Title:        req.Title,
		Category:     req.Category,
		Cuisine:      req.Cuisine,
		Ingredients:  ingredients,
		Instructions: req.Instructions,
		ImageURL:     req.ImageURL,
		PrepMinutes:  req.PrepMinutes,
		Servings:     req.Servings,
	}, nil
}

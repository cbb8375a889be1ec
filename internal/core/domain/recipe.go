package domain

import "time"

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Name    string `json:"name" bson:"name"`
	Measure string `json:"measure,omitempty" bson:"measure,omitempty"`
}

// Recipe is the main resource served by the API.
type Recipe struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Category     string       `json:"category,omitempty"`
	Cuisine      string       `json:"cuisine,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
	ImageURL     string       `json:"imageUrl,omitempty"`
	PrepMinutes  int          `json:"prepMinutes,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	CreatedBy    string       `json:"createdBy"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// EditableBy reports whether the caller may modify or delete the recipe.
func (r *Recipe) EditableBy(id *Identity) bool {
	return id != nil && (id.IsAdmin || id.UserID == r.CreatedBy)
}

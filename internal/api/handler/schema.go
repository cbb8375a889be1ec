package handler

import (
	"time"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Message string `json:"message" example:"User already exists"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required"       example:"Ana"`
	Email    string `json:"email"    validate:"required,email" example:"a@x.com"`
	Password string `json:"password" validate:"required"       example:"pw1"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"a@x.com"`
	Password string `json:"password" example:"pw1"`
}

type signupResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

type loginResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
	IsLocked bool   `json:"isLocked"`
	Token    string `json:"token"`
}

// --- Users ---

type setAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" validate:"required"`
}

type userPageResponse struct {
	Items      []*domain.User `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type eventsResponse struct {
	UserID string             `json:"userId"`
	Events []domain.AuthEvent `json:"events"`
}

// --- Recipes ---

type ingredientRequest struct {
	Name    string `json:"name"    validate:"required"`
	Measure string `json:"measure"`
}

type recipeRequest struct {
	Title        string              `json:"title"        validate:"required,max=200"`
	Category     string              `json:"category"`
	Cuisine      string              `json:"cuisine"`
	Ingredients  []ingredientRequest `json:"ingredients"  validate:"required,min=1,dive"`
	Instructions string              `json:"instructions" validate:"required"`
	ImageURL     string              `json:"imageUrl"     validate:"omitempty,url"`
	PrepMinutes  int                 `json:"prepMinutes"  validate:"gte=0"`
	Servings     int                 `json:"servings"     validate:"gte=0"`
}

type recipePageResponse struct {
	Items      []*domain.Recipe `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// --- Service ---

type infoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type livenessResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

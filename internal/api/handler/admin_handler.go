package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mysteremeal/recipe-api/internal/core/domain"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// AdminHandler exposes account management to administrators. Every route is
// mounted behind Auth and RequireAdmin.
type AdminHandler struct {
	users ports.UserService
}

func NewAdminHandler(users ports.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// ListUsers returns a page of accounts.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Partial match on name or email"
// @Param        locked  query     bool    false  "Filter by lock state"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  userPageResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var filter ports.ListUsersFilter
	var locked string
	err := echo.QueryParamsBinder(c).
		String("search", &filter.Search).
		String("locked", &locked).
		Int("page", &filter.Page).
		Int("limit", &filter.Limit).
		BindError()
	if err != nil {
		return queryError(err)
	}
	switch locked {
	case "":
	case "true":
		v := true
		filter.Locked = &v
	case "false":
		v := false
		filter.Locked = &v
	default:
		return domain.NewValidationError("invalid value for query parameter locked")
	}

	res, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userPageResponse{
		Items:      nonNilUsers(res.Items),
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// Lock locks an account. Existing tokens of the account stop working.
//
// @Summary      Lock a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id}/lock [put]
func (h *AdminHandler) Lock(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Lock(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Unlock unlocks an account.
//
// @Summary      Unlock a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  domain.User
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id}/unlock [put]
func (h *AdminHandler) Unlock(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.users.Unlock(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetAdmin grants or revokes the admin privilege.
//
// @Summary      Grant or revoke admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "User ID"
// @Param        body  body      setAdminRequest  true  "Desired admin flag"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/users/{id}/admin [put]
func (h *AdminHandler) SetAdmin(c echo.Context) error {
	actor, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req setAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.users.SetAdmin(c.Request().Context(), actor, c.Param("id"), *req.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Events returns the newest audit trail entries of an account.
//
// @Summary      Account audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "User ID"
// @Param        limit  query     int     false  "Max entries (default 50, max 200)"
// @Success      200    {object}  eventsResponse
// @Failure      403    {object}  errorResponse
// @Failure      404    {object}  errorResponse
// @Router       /api/admin/users/{id}/events [get]
func (h *AdminHandler) Events(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return queryError(err)
	}
	userID := c.Param("id")
	events, err := h.users.Events(c.Request().Context(), userID, limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AuthEvent{}
	}
	return c.JSON(http.StatusOK, eventsResponse{UserID: userID, Events: events})
}

func nonNilUsers(items []*domain.User) []*domain.User {
	if items == nil {
		return []*domain.User{}
	}
	return items
}

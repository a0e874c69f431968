package http

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// actorFromContext extracts the authenticated member's id set by the JWT middleware
func actorFromContext(c echo.Context) (uuid.UUID, error) {
	userIDStr, ok := c.Get("user_id").(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("no user id in context")
	}
	return uuid.Parse(userIDStr)
}

// isAdmin reports whether the JWT carried the admin role
func isAdmin(c echo.Context) bool {
	role, ok := c.Get("role").(string)
	return ok && role == "admin"
}

// pledgeIDParam parses the :id path parameter
func pledgeIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid pledge id %q", c.Param("id"))
	}
	return id, nil
}

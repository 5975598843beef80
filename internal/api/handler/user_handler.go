package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// UserHandler exposes the overdue-aware user views.
type UserHandler struct {
	overdue ports.OverdueService
}

func NewUserHandler(overdue ports.OverdueService) *UserHandler {
	return &UserHandler{overdue: overdue}
}

// Summary handles GET /v1/users/:id/summary. Overdue state is recomputed on
// the fly; nothing is persisted.
func (h *UserHandler) Summary(c echo.Context) error {
	summary, err := h.overdue.UserSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Rebuild handles POST /v1/users/:id/rebuild-history. Re-projects the user's
// history from the authoritative transactions.
func (h *UserHandler) Rebuild(c echo.Context) error {
	user, err := h.overdue.RebuildHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

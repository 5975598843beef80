package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// AdminHandler handles administrative user management and the manual
// reconciliation triggers.
type AdminHandler struct {
	admin        ports.AdminService
	availability ports.AvailabilityService
	overdue      ports.OverdueService
}

func NewAdminHandler(admin ports.AdminService, availability ports.AvailabilityService, overdue ports.OverdueService) *AdminHandler {
	return &AdminHandler{admin: admin, availability: availability, overdue: overdue}
}

type updateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Me handles GET /v1/admin/me — the calling admin's own profile, resolved
// from the token claims.
func (h *AdminHandler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	user, err := h.admin.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /v1/admin/users/:id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	user, err := h.admin.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUserDetails handles PUT /v1/admin/users/:id.
func (h *AdminHandler) UpdateUserDetails(c echo.Context) error {
	var req updateDetailsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.admin.UpdateUserDetails(c.Request().Context(), c.Param("id"), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.admin.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted, open loans were force-returned",
	})
}

// PromoteUser handles PUT /v1/admin/users/:id/promote.
func (h *AdminHandler) PromoteUser(c echo.Context) error {
	user, err := h.admin.PromoteUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Stats handles GET /v1/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ImportUsers handles POST /v1/admin/users/import (multipart, field "file").
func (h *AdminHandler) ImportUsers(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open uploaded file")
	}
	defer file.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	report, err := h.admin.ImportUsers(c.Request().Context(), file, format)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, report)
}

// RunAvailabilitySync handles PUT /v1/admin/book-sync — the manual trigger
// for the same pass the scheduler runs nightly.
func (h *AdminHandler) RunAvailabilitySync(c echo.Context) error {
	report, err := h.availability.RunAvailabilitySync(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// RunOverdueSweep handles PUT /v1/admin/calculate-overdues — the manual
// trigger for the overdue sweep.
func (h *AdminHandler) RunOverdueSweep(c echo.Context) error {
	report, err := h.overdue.RunOverdueSweep(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// SyncLogs handles GET /v1/admin/sync-logs?limit=20.
func (h *AdminHandler) SyncLogs(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	logs, err := h.admin.RecentSyncLogs(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}

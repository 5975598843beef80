package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// CirculationHandler handles issue/return and transaction lookups.
type CirculationHandler struct {
	service ports.CirculationService
}

func NewCirculationHandler(service ports.CirculationService) *CirculationHandler {
	return &CirculationHandler{service: service}
}

type issueRequest struct {
	StudentID  string     `json:"student_id" validate:"required"`
	BookID     string     `json:"book_id" validate:"required"`
	ReturnDate *time.Time `json:"return_date"`
}

// Issue handles POST /v1/transactions.
func (h *CirculationHandler) Issue(c echo.Context) error {
	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.IssueInput{StudentID: req.StudentID, BookID: req.BookID}
	if req.ReturnDate != nil {
		input.ReturnDate = *req.ReturnDate
	}

	txn, err := h.service.Issue(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, txn)
}

// Return handles PUT /v1/transactions/:transaction_id/return.
func (h *CirculationHandler) Return(c echo.Context) error {
	txn, err := h.service.Return(c.Request().Context(), c.Param("transaction_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txn)
}

// Get handles GET /v1/transactions/:transaction_id.
func (h *CirculationHandler) Get(c echo.Context) error {
	txn, err := h.service.GetTransaction(c.Request().Context(), c.Param("transaction_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txn)
}

// List handles GET /v1/transactions.
func (h *CirculationHandler) List(c echo.Context) error {
	txns, err := h.service.ListTransactions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txns)
}

// Verify handles GET /v1/transactions/verify?query=TXN-… (or STU…/BOOK…).
func (h *CirculationHandler) Verify(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}

	result, err := h.service.Verify(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

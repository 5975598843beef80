package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/omSolanki30/Smart-E-Lib-backend/internal/core/ports"
)

// BookHandler handles catalog CRUD and bulk import.
type BookHandler struct {
	service ports.CatalogService
}

func NewBookHandler(service ports.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

type bookRequest struct {
	BookCode   string `json:"book_code" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Author     string `json:"author" validate:"required"`
	Category   string `json:"category" validate:"required"`
	PdfURL     string `json:"pdf_url"`
	CoverImage string `json:"cover_image"`
}

type updateBookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Category   string `json:"category"`
	PdfURL     string `json:"pdf_url"`
	CoverImage string `json:"cover_image"`
}

// List handles GET /v1/books.
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.service.ListBooks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Get handles GET /v1/books/:id.
func (h *BookHandler) Get(c echo.Context) error {
	book, err := h.service.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Create handles POST /v1/books.
func (h *BookHandler) Create(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.CreateBook(c.Request().Context(), ports.CreateBookInput{
		BookCode:   req.BookCode,
		Title:      req.Title,
		Author:     req.Author,
		Category:   req.Category,
		PdfURL:     req.PdfURL,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

// Update handles PUT /v1/books/:id.
func (h *BookHandler) Update(c echo.Context) error {
	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	book, err := h.service.UpdateBook(c.Request().Context(), c.Param("id"), ports.UpdateBookInput{
		Title:      req.Title,
		Author:     req.Author,
		Category:   req.Category,
		PdfURL:     req.PdfURL,
		CoverImage: req.CoverImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /v1/books/:id. Books with an open loan cannot be
// deleted.
func (h *BookHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "book deleted"})
}

// Import handles POST /v1/books/import (multipart, field "file"). The file is
// streamed straight into the import service, never buffered whole.
func (h *BookHandler) Import(c echo.Context) error {
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
	report, err := h.service.ImportBooks(c.Request().Context(), file, format)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, report)
}

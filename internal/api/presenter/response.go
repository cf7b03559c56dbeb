package presenter

import (
	"errors"
	"net/http"
	"os"

	"github.com/gofiber/fiber/v2"

	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Detail: message})
}

// Status maps an error kind to its HTTP status.
func Status(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err with the status of its kind.
func Fail(c *fiber.Ctx, err error) error {
	return Error(c, Status(err), err.Error())
}

// Spreadsheet sends b as an XLSX attachment named filename.
func Spreadsheet(c *fiber.Ctx, filename string, b []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, tabular.XLSXContentType)
	return c.Status(http.StatusOK).Send(b)
}

// SpreadsheetFile sends the workbook at path as an attachment named filename.
func SpreadsheetFile(c *fiber.Ctx, path, filename string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return Error(c, http.StatusInternalServerError, err.Error())
	}
	return Spreadsheet(c, filename, b)
}

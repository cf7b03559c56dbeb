package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/api/presenter"
	"skill-map/internal/domain"
)

// Normalizer runs the Lightcast pass over an uploaded file.
type Normalizer interface {
	NormalizeFile(ctx context.Context, path string) ([]domain.SkillRecord, error)
}

type ProcessHandler struct {
	norm      Normalizer
	uploadDir string
	xlsxPath  string
	log       log.FieldLogger
}

// NewProcessHandler stores uploads under uploadDir and answers with the
// normalized store at xlsxPath.
func NewProcessHandler(norm Normalizer, uploadDir, xlsxPath string) *ProcessHandler {
	return &ProcessHandler{norm: norm, uploadDir: uploadDir, xlsxPath: xlsxPath, log: log.StandardLogger()}
}

// Lightcast handles POST /process/lightcast.
func (h *ProcessHandler) Lightcast(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (csv or xlsx)")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to prepare upload dir")
	}
	// Uploads keep their extension so the reader can pick a format.
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(h.uploadDir, uuid.NewString()+ext)
	if err := c.SaveFile(fh, dst); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to store file")
	}

	records, err := h.norm.NormalizeFile(c.Context(), dst)
	if err != nil {
		return presenter.Fail(c, err)
	}
	h.log.WithFields(log.Fields{"upload": fh.Filename, "rows": len(records)}).Info("upload normalized")
	return presenter.SpreadsheetFile(c, h.xlsxPath, normalizedFilename)
}

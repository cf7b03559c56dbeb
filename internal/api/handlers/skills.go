package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/api/presenter"
	"skill-map/internal/domain"
	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

const (
	normalizedFilename     = "normalized_skills.xlsx"
	lightcastReadyFilename = "lightcast_ready_skills.xlsx"
)

// SkillService is the skill store as used over HTTP.
type SkillService interface {
	List(q store.ListQuery) ([]domain.SkillRecord, error)
	Update(workdaySkill, lightcastSkill string) (int, error)
	Delete(remoteSkillID, workdaySkill string) (int, error)
	ListLightcastReady(remoteSkillID, workdaySkill string) ([]domain.SkillRecord, error)
}

type SkillsHandler struct {
	svc       SkillService
	xlsxPath  string
	exportDir string
	log       log.FieldLogger
}

// NewSkillsHandler serves the skill store. xlsxPath is the store's XLSX mirror,
// returned after every mutation; exportDir receives filtered downloads.
func NewSkillsHandler(svc SkillService, xlsxPath, exportDir string) *SkillsHandler {
	return &SkillsHandler{svc: svc, xlsxPath: xlsxPath, exportDir: exportDir, log: log.StandardLogger()}
}

// UpdateSkillRequest is the PUT /skills/update body. LightcastSkill must be
// present; an empty string is accepted and clears the field.
type UpdateSkillRequest struct {
	WorkdaySkill   string  `json:"workday_skill"`
	LightcastSkill *string `json:"lightcast_skill"`
}

// List handles GET /skills.
func (h *SkillsHandler) List(c *fiber.Ctx) error {
	records, err := h.svc.List(store.ListQuery{
		RemoteSkillID:  c.Query("remote_skill_id"),
		WorkdaySkill:   c.Query("workday_skill"),
		LightcastSkill: c.Query("lightcast_skill"),
	})
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, records)
}

// Update handles PUT /skills/update and returns the whole store as XLSX.
func (h *SkillsHandler) Update(c *fiber.Ctx) error {
	var req UpdateSkillRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if req.LightcastSkill == nil {
		return presenter.Fail(c, store.Invalidf("lightcast_skill is required"))
	}
	if _, err := h.svc.Update(req.WorkdaySkill, *req.LightcastSkill); err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.SpreadsheetFile(c, h.xlsxPath, normalizedFilename)
}

// Delete handles DELETE /skills/delete and returns the whole store as XLSX.
func (h *SkillsHandler) Delete(c *fiber.Ctx) error {
	if _, err := h.svc.Delete(c.Query("remote_skill_id"), c.Query("workday_skill")); err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.SpreadsheetFile(c, h.xlsxPath, normalizedFilename)
}

// LightcastReady handles GET /skills/lightcast-ready.
func (h *SkillsHandler) LightcastReady(c *fiber.Ctx) error {
	records, err := h.svc.ListLightcastReady(c.Query("remote_skill_id"), c.Query("workday_skill"))
	if err != nil {
		return presenter.Fail(c, err)
	}
	if !c.QueryBool("download") {
		return presenter.JSON(c, http.StatusOK, records)
	}

	out := filepath.Join(h.exportDir, lightcastReadyFilename)
	if err := tabular.WriteXLSXFile(out, domain.SkillColumns, store.SkillRows(records)); err != nil {
		return presenter.Fail(c, err)
	}
	h.log.WithFields(log.Fields{"path": out, "rows": len(records)}).Debug("lightcast-ready export written")
	return presenter.SpreadsheetFile(c, out, lightcastReadyFilename)
}

package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/api/presenter"
	"skill-map/internal/domain"
	"skill-map/internal/mapping"
	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

const mappedFilteredFilename = "coursera_mapped_filtered.xlsx"

type MappingBuilder interface {
	Build(ctx context.Context) ([]domain.CourseMappingRow, error)
}

type MappingLister interface {
	List(q mapping.ListQuery) ([]domain.CourseMappingRow, error)
}

// Publisher ships a local file somewhere outside the service.
type Publisher interface {
	Publish(ctx context.Context, localPath, remoteFileName string) (string, error)
}

type CourseraHandler struct {
	builder     MappingBuilder
	lister      MappingLister
	publisher   Publisher
	mappingPath string
	exportDir   string
	log         log.FieldLogger
}

func NewCourseraHandler(builder MappingBuilder, lister MappingLister, publisher Publisher, mappingPath, exportDir string) *CourseraHandler {
	return &CourseraHandler{
		builder:     builder,
		lister:      lister,
		publisher:   publisher,
		mappingPath: mappingPath,
		exportDir:   exportDir,
		log:         log.StandardLogger(),
	}
}

// Process handles POST /process/coursera.
func (h *CourseraHandler) Process(c *fiber.Ctx) error {
	if _, err := h.builder.Build(c.Context()); err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.SpreadsheetFile(c, h.mappingPath, filepath.Base(h.mappingPath))
}

// MappedSkills handles GET /coursera/mapped-skills.
func (h *CourseraHandler) MappedSkills(c *fiber.Ctx) error {
	rows, err := h.lister.List(mapping.ListQuery{
		RemoteSkillID:  c.Query("remote_skill_id"),
		WorkdaySkill:   c.Query("workday_skill"),
		LightcastSkill: c.Query("lightcast_skill"),
	})
	if err != nil {
		return presenter.Fail(c, err)
	}
	if !c.QueryBool("download") {
		return presenter.JSON(c, http.StatusOK, rows)
	}

	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}
	out := filepath.Join(h.exportDir, mappedFilteredFilename)
	if err := tabular.WriteXLSXFile(out, domain.MappingColumns, values); err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.SpreadsheetFile(c, out, mappedFilteredFilename)
}

// Publish handles POST /coursera/publish.
func (h *CourseraHandler) Publish(c *fiber.Ctx) error {
	if _, err := os.Stat(h.mappingPath); err != nil {
		return presenter.Fail(c, store.NotFoundf("Coursera mapping file not found. Run /process/coursera first"))
	}

	remote, err := h.publisher.Publish(c.Context(), h.mappingPath, filepath.Base(h.mappingPath))
	if err != nil {
		return presenter.Fail(c, err)
	}
	h.log.WithField("remote_path", remote).Info("coursera mapping published")
	return presenter.JSON(c, http.StatusOK, fiber.Map{"remote_path": remote})
}

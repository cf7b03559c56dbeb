package mapping

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/domain"
	"skill-map/internal/httpx"
	"skill-map/internal/mappers"
	"skill-map/internal/store"
)

// SkillSource is the skill store as seen by the crawl pass.
type SkillSource interface {
	Exists() bool
	Load() ([]domain.SkillRecord, error)
}

// CourseFinder looks up courses for one search label.
type CourseFinder interface {
	FindCourses(ctx context.Context, skill string) ([]domain.Course, error)
}

// Builder runs the crawl pass: every stored skill is searched on Coursera and
// the aggregated result replaces the mapping file.
type Builder struct {
	Skills SkillSource
	Finder CourseFinder
	Store  *Store
	Delay  time.Duration
	Log    log.FieldLogger
}

func NewBuilder(skills SkillSource, finder CourseFinder, st *Store, delay time.Duration) *Builder {
	return &Builder{
		Skills: skills,
		Finder: finder,
		Store:  st,
		Delay:  delay,
		Log:    log.StandardLogger(),
	}
}

func (b *Builder) Build(ctx context.Context) ([]domain.CourseMappingRow, error) {
	if !b.Skills.Exists() {
		return nil, store.NotFoundf("Normalized skills file not found. Run /process/lightcast first")
	}
	records, err := b.Skills.Load()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.NotFoundf("Normalized skills file is empty")
	}

	var (
		rows     []domain.CourseMappingRow
		searched int
	)
	for _, rec := range records {
		skill, source, ok := mappers.SearchSkill(rec)
		if !ok {
			continue
		}
		if searched > 0 {
			if err := httpx.Sleep(ctx, b.Delay); err != nil {
				return nil, err
			}
		}
		searched++

		courses, err := b.Finder.FindCourses(ctx, skill)
		if err != nil {
			return nil, errors.Wrapf(err, "find courses for %q", skill)
		}
		for _, c := range courses {
			rows = append(rows, mappers.ToCourseMappingRow(rec, skill, source, c))
		}
	}
	if len(rows) == 0 {
		return nil, store.NotFoundf("No Coursera courses found")
	}

	merged := Aggregate(rows)
	if err := b.Store.Save(merged); err != nil {
		return nil, err
	}
	b.Log.WithFields(log.Fields{
		"skills":  searched,
		"courses": len(rows),
		"rows":    len(merged),
	}).Info("coursera mapping built")
	return merged, nil
}

package mapping

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/domain"
	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

const errNoMapping = "Coursera mapping file not found. Run /process/coursera first"

// Store persists the aggregated course mapping as a single XLSX sheet.
type Store struct {
	Path string
	Log  log.FieldLogger

	mu sync.RWMutex
}

func NewStore(path string) *Store {
	return &Store{Path: path, Log: log.StandardLogger()}
}

// ListQuery holds the optional filters of List. Empty fields are ignored.
type ListQuery struct {
	RemoteSkillID  string
	WorkdaySkill   string
	LightcastSkill string
}

// Save overwrites the mapping file with rows.
func (s *Store) Save(rows []domain.CourseMappingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}
	if err := tabular.WriteXLSXFile(s.Path, domain.MappingColumns, values); err != nil {
		return errors.Wrap(err, "save course mapping")
	}
	return nil
}

// Load reads every mapping row. A missing or empty file is ErrNotFound.
func (s *Store) Load() ([]domain.CourseMappingRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tbl, err := tabular.ReadXLSXFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.NotFoundf(errNoMapping)
		}
		return nil, errors.Wrapf(err, "load course mapping %s", s.Path)
	}
	if len(tbl.Rows) == 0 {
		return nil, store.NotFoundf(errNoMapping)
	}

	out := make([]domain.CourseMappingRow, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, domain.CourseMappingRowFromRow(row))
	}
	return out, nil
}

// List filters the mapping: remote id exact after trimming, skill names by
// case-insensitive substring. Each filter must match something on its own.
func (s *Store) List(q ListQuery) ([]domain.CourseMappingRow, error) {
	rows, err := s.Load()
	if err != nil {
		return nil, err
	}
	return store.Apply(rows, "",
		store.Filter[domain.CourseMappingRow]{
			Field: "remote_skill_id", Value: q.RemoteSkillID, Mode: store.MatchExact,
			Get: func(r domain.CourseMappingRow) string { return r.RemoteSkillID },
		},
		store.Filter[domain.CourseMappingRow]{
			Field: "workday_skill", Value: q.WorkdaySkill, Mode: store.MatchContains,
			Get: func(r domain.CourseMappingRow) string { return r.WorkdaySkill },
		},
		store.Filter[domain.CourseMappingRow]{
			Field: "lightcast_skill", Value: q.LightcastSkill, Mode: store.MatchContains,
			Get: func(r domain.CourseMappingRow) string { return r.LightcastSkill },
		},
	)
}

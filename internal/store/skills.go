package store

import (
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/domain"
	"skill-map/internal/tabular"
)

// SkillStore is the employer-skill file: CSV is the source of truth and an
// XLSX copy is rewritten on every save for download.
//
// Every save replaces both files whole. The mutex serializes load-modify-save
// cycles within this process; other processes writing the same files are not
// coordinated.
type SkillStore struct {
	CSVPath  string
	XLSXPath string
	Log      log.FieldLogger

	mu sync.RWMutex
}

func NewSkillStore(csvPath, xlsxPath string) *SkillStore {
	return &SkillStore{
		CSVPath:  csvPath,
		XLSXPath: xlsxPath,
		Log:      log.StandardLogger(),
	}
}

// ListQuery holds the optional filters of List. Empty fields are ignored.
type ListQuery struct {
	RemoteSkillID  string
	WorkdaySkill   string
	LightcastSkill string
}

var (
	byRemoteID  = func(r domain.SkillRecord) string { return r.RemoteSkillID }
	byWorkday   = func(r domain.SkillRecord) string { return r.WorkdaySkill }
	byLightcast = func(r domain.SkillRecord) string { return r.LightcastSkill }
)

// Load returns all records. A missing CSV is an empty store.
func (s *SkillStore) Load() ([]domain.SkillRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Exists reports whether the CSV file is present.
func (s *SkillStore) Exists() bool {
	_, err := os.Stat(s.CSVPath)
	return err == nil
}

// Replace overwrites the store with records.
func (s *SkillStore) Replace(records []domain.SkillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

// List returns the records matching every given filter: remote id exact after
// trimming, skill names by case-insensitive substring.
func (s *SkillStore) List(q ListQuery) ([]domain.SkillRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	return Apply(records, "",
		Filter[domain.SkillRecord]{Field: "remote_skill_id", Value: q.RemoteSkillID, Mode: MatchExact, Get: byRemoteID},
		Filter[domain.SkillRecord]{Field: "workday_skill", Value: q.WorkdaySkill, Mode: MatchContains, Get: byWorkday},
		Filter[domain.SkillRecord]{Field: "lightcast_skill", Value: q.LightcastSkill, Mode: MatchContains, Get: byLightcast},
	)
}

// Update sets lightcast_skill on every record whose workday_skill equals
// workdaySkill (trimmed, case-insensitive). It returns the number of rows changed.
func (s *SkillStore) Update(workdaySkill, lightcastSkill string) (int, error) {
	if strings.TrimSpace(workdaySkill) == "" {
		return 0, Invalidf("workday_skill is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}

	n := 0
	for i := range records {
		if matchValue(MatchExactFold, records[i].WorkdaySkill, workdaySkill) {
			records[i].LightcastSkill = lightcastSkill
			n++
		}
	}
	if n == 0 {
		return 0, NotFoundf("Workday skill not found")
	}

	if err := s.save(records); err != nil {
		return 0, err
	}
	s.Log.WithFields(log.Fields{"workday_skill": workdaySkill, "rows": n}).Info("lightcast skill updated")
	return n, nil
}

// Delete removes the records selected by remoteSkillID (exact, trimmed) or, when
// that is empty, by workdaySkill (exact, trimmed, case-insensitive).
func (s *SkillStore) Delete(remoteSkillID, workdaySkill string) (int, error) {
	var (
		field, value string
		mode         MatchMode
		get          func(domain.SkillRecord) string
	)
	switch {
	case remoteSkillID != "":
		field, value, mode, get = "remote_skill_id", remoteSkillID, MatchExact, byRemoteID
	case workdaySkill != "":
		field, value, mode, get = "workday_skill", workdaySkill, MatchExactFold, byWorkday
	default:
		return 0, Invalidf("Either remote_skill_id or workday_skill must be provided")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}

	kept := make([]domain.SkillRecord, 0, len(records))
	for _, r := range records {
		if !matchValue(mode, get(r), value) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, NotFoundf("%s '%s' not found", field, value)
	}

	if err := s.save(kept); err != nil {
		return 0, err
	}
	s.Log.WithFields(log.Fields{field: value, "rows": removed}).Info("skills deleted")
	return removed, nil
}

// ListLightcastReady lists records with a non-empty lightcast_skill, then
// applies the optional filters with List semantics.
func (s *SkillStore) ListLightcastReady(remoteSkillID, workdaySkill string) ([]domain.SkillRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	ready := keep(records, func(r domain.SkillRecord) bool {
		return strings.TrimSpace(r.LightcastSkill) != ""
	})
	if len(ready) == 0 {
		return nil, NotFoundf("No records with valid lightcast_skill found")
	}

	return Apply(ready, " in lightcast-ready records",
		Filter[domain.SkillRecord]{Field: "remote_skill_id", Value: remoteSkillID, Mode: MatchExact, Get: byRemoteID},
		Filter[domain.SkillRecord]{Field: "workday_skill", Value: workdaySkill, Mode: MatchContains, Get: byWorkday},
	)
}

func (s *SkillStore) load() ([]domain.SkillRecord, error) {
	tbl, err := tabular.ReadCSVFile(s.CSVPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.SkillRecord{}, nil
		}
		return nil, errors.Wrapf(err, "load skill store %s", s.CSVPath)
	}

	out := make([]domain.SkillRecord, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		out = append(out, domain.SkillRecordFromRow(row))
	}
	return out, nil
}

func (s *SkillStore) save(records []domain.SkillRecord) error {
	rows := SkillRows(records)
	if err := tabular.WriteCSVFile(s.CSVPath, domain.SkillColumns, rows); err != nil {
		return errors.Wrap(err, "save skill store")
	}
	if err := tabular.WriteXLSXFile(s.XLSXPath, domain.SkillColumns, rows); err != nil {
		return errors.Wrap(err, "mirror skill store")
	}
	return nil
}

// SkillRows flattens records in SkillColumns order.
func SkillRows(records []domain.SkillRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Values())
	}
	return rows
}

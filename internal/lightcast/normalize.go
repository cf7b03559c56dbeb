package lightcast

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"skill-map/internal/domain"
	"skill-map/internal/httpx"
	"skill-map/internal/store"
	"skill-map/internal/tabular"
)

// Searcher is the part of Client the normalizer needs.
type Searcher interface {
	Token(ctx context.Context) (string, error)
	SearchSkill(ctx context.Context, token, q string) (*Skill, error)
}

// RecordWriter persists a full normalization result.
type RecordWriter interface {
	Replace(records []domain.SkillRecord) error
}

// Normalizer resolves employer skill labels against Lightcast and stores the result.
type Normalizer struct {
	Client Searcher
	Store  RecordWriter
	Delay  time.Duration
	Log    log.FieldLogger
}

func NewNormalizer(client Searcher, st RecordWriter, delay time.Duration) *Normalizer {
	return &Normalizer{
		Client: client,
		Store:  st,
		Delay:  delay,
		Log:    log.StandardLogger(),
	}
}

// NormalizeFile reads an uploaded CSV/XLSX with skill_name (and optionally
// remote_skill_id) columns and normalizes it.
func (n *Normalizer) NormalizeFile(ctx context.Context, path string) ([]domain.SkillRecord, error) {
	tbl, err := tabular.ReadFile(path)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return nil, store.Invalidf("Unsupported file format. Upload CSV or Excel.")
		}
		return nil, errors.Wrap(err, "read upload")
	}
	if !tbl.HasColumn("skill_name") {
		return nil, store.Invalidf("input file is missing the skill_name column")
	}

	rows := make([]domain.InputRow, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		rows = append(rows, domain.InputRow{
			RemoteSkillID: r["remote_skill_id"],
			SkillName:     r["skill_name"],
		})
	}
	return n.Normalize(ctx, rows)
}

// Normalize resolves each row with a non-empty skill name, first hit wins.
// Lookup failures only mark that row ERROR; the whole result then overwrites
// the store.
func (n *Normalizer) Normalize(ctx context.Context, rows []domain.InputRow) ([]domain.SkillRecord, error) {
	token, err := n.Client.Token(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SkillRecord, 0, len(rows))
	counts := map[domain.Status]int{}

	for _, row := range rows {
		skill := strings.TrimSpace(row.SkillName)
		if skill == "" {
			continue
		}

		if len(results) > 0 {
			if err := httpx.Sleep(ctx, n.Delay); err != nil {
				return nil, errors.Wrap(err, "normalization interrupted")
			}
		}

		rec := n.resolve(ctx, token, row.RemoteSkillID, skill)
		counts[rec.Status]++
		results = append(results, rec)
	}

	if err := n.Store.Replace(results); err != nil {
		return nil, err
	}

	n.Log.WithFields(log.Fields{
		"rows":     len(results),
		"success":  counts[domain.StatusSuccess],
		"no_match": counts[domain.StatusNoMatch],
		"error":    counts[domain.StatusError],
	}).Info("lightcast normalization finished")

	return results, nil
}

func (n *Normalizer) resolve(ctx context.Context, token, remoteID, skill string) domain.SkillRecord {
	rec := domain.SkillRecord{
		RemoteSkillID: remoteID,
		WorkdaySkill:  skill,
	}

	hit, err := n.Client.SearchSkill(ctx, token, skill)
	switch {
	case err != nil:
		rec.Status = domain.StatusError
		n.Log.WithFields(log.Fields{"skill": skill, "error": err}).Warn("lightcast lookup failed")
	case hit == nil:
		rec.Status = domain.StatusNoMatch
		n.Log.WithField("skill", skill).Debug("lightcast: no match")
	default:
		rec.LightcastSkill = hit.Name
		rec.LightcastSkillID = hit.ID
		rec.SkillType = string(hit.Type)
		rec.Category = string(hit.Category)
		rec.Status = domain.StatusSuccess
		n.Log.WithFields(log.Fields{"skill": skill, "match": hit.Name}).Debug("lightcast: matched")
	}
	return rec
}

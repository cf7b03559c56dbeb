package domain

// Status is the outcome of resolving one employer skill against Lightcast.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusNoMatch Status = "NO_MATCH"
	StatusError   Status = "ERROR"
)

// SkillColumns is the employer-skill store schema. Keep order EXACT.
var SkillColumns = []string{
	"remote_skill_id",
	"workday_skill",
	"lightcast_skill",
	"lightcast_skill_id",
	"skill_type",
	"category",
	"status",
}

// SkillRecord is one employer (Workday) skill and its Lightcast match, if any.
type SkillRecord struct {
	RemoteSkillID    string `json:"remote_skill_id"`
	WorkdaySkill     string `json:"workday_skill"`
	LightcastSkill   string `json:"lightcast_skill"`
	LightcastSkillID string `json:"lightcast_skill_id"`
	SkillType        string `json:"skill_type"`
	Category         string `json:"category"`
	Status           Status `json:"status"`
}

// InputRow is one line of an uploaded employer skill file.
type InputRow struct {
	RemoteSkillID string
	SkillName     string
}

// Values returns the record's fields in SkillColumns order.
func (r SkillRecord) Values() []string {
	return []string{
		r.RemoteSkillID,
		r.WorkdaySkill,
		r.LightcastSkill,
		r.LightcastSkillID,
		r.SkillType,
		r.Category,
		string(r.Status),
	}
}

// SkillRecordFromRow builds a record from a header-keyed row; absent columns stay empty.
func SkillRecordFromRow(row map[string]string) SkillRecord {
	return SkillRecord{
		RemoteSkillID:    row["remote_skill_id"],
		WorkdaySkill:     row["workday_skill"],
		LightcastSkill:   row["lightcast_skill"],
		LightcastSkillID: row["lightcast_skill_id"],
		SkillType:        row["skill_type"],
		Category:         row["category"],
		Status:           Status(row["status"]),
	}
}

package domain

// SearchSource tells which label was used to search Coursera for a skill.
type SearchSource string

const (
	SourceLightcast SearchSource = "LIGHTCAST"
	SourceWorkday   SearchSource = "WORKDAY"
)

// Course is one Coursera listing found for a skill search.
type Course struct {
	Name   string
	Slug   string
	Link   string
	Skills string // comma-joined, sorted, deduplicated
}

// MappingKeyColumns identify one mapping group.
var MappingKeyColumns = []string{
	"remote_skill_id",
	"workday_skill",
	"lightcast_skill",
	"lightcast_skill_id",
	"search_skill_used",
	"search_skill_source",
}

// MappingColumns is the course-mapping store schema. Keep order EXACT.
var MappingColumns = append(append([]string{}, MappingKeyColumns...),
	"course_name",
	"course_slug",
	"course_link",
	"course_skills",
)

// CourseMappingRow links an employer skill to the Coursera courses found for it.
type CourseMappingRow struct {
	RemoteSkillID     string       `json:"remote_skill_id"`
	WorkdaySkill      string       `json:"workday_skill"`
	LightcastSkill    string       `json:"lightcast_skill"`
	LightcastSkillID  string       `json:"lightcast_skill_id"`
	SearchSkillUsed   string       `json:"search_skill_used"`
	SearchSkillSource SearchSource `json:"search_skill_source"`
	CourseName        string       `json:"course_name"`
	CourseSlug        string       `json:"course_slug"`
	CourseLink        string       `json:"course_link"`
	CourseSkills      string       `json:"course_skills"`
}

// Key returns the six grouping columns.
func (r CourseMappingRow) Key() [6]string {
	return [6]string{
		r.RemoteSkillID,
		r.WorkdaySkill,
		r.LightcastSkill,
		r.LightcastSkillID,
		r.SearchSkillUsed,
		string(r.SearchSkillSource),
	}
}

func (r CourseMappingRow) Values() []string {
	k := r.Key()
	return append(k[:],
		r.CourseName,
		r.CourseSlug,
		r.CourseLink,
		r.CourseSkills,
	)
}

func CourseMappingRowFromRow(row map[string]string) CourseMappingRow {
	return CourseMappingRow{
		RemoteSkillID:     row["remote_skill_id"],
		WorkdaySkill:      row["workday_skill"],
		LightcastSkill:    row["lightcast_skill"],
		LightcastSkillID:  row["lightcast_skill_id"],
		SearchSkillUsed:   row["search_skill_used"],
		SearchSkillSource: SearchSource(row["search_skill_source"]),
		CourseName:        row["course_name"],
		CourseSlug:        row["course_slug"],
		CourseLink:        row["course_link"],
		CourseSkills:      row["course_skills"],
	}
}

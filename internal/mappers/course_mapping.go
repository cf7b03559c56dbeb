package mappers

import (
	"strings"

	"skill-map/internal/domain"
)

// SearchSkill picks the label to search courses with: the Lightcast name when
// present, otherwise the Workday label. ok is false when both are empty.
func SearchSkill(r domain.SkillRecord) (skill string, source domain.SearchSource, ok bool) {
	if s := strings.TrimSpace(r.LightcastSkill); s != "" {
		return s, domain.SourceLightcast, true
	}
	if s := strings.TrimSpace(r.WorkdaySkill); s != "" {
		return s, domain.SourceWorkday, true
	}
	return "", "", false
}

func ToCourseMappingRow(r domain.SkillRecord, skill string, source domain.SearchSource, c domain.Course) domain.CourseMappingRow {
	return domain.CourseMappingRow{
		RemoteSkillID:     r.RemoteSkillID,
		WorkdaySkill:      strings.TrimSpace(r.WorkdaySkill),
		LightcastSkill:    strings.TrimSpace(r.LightcastSkill),
		LightcastSkillID:  r.LightcastSkillID,
		SearchSkillUsed:   skill,
		SearchSkillSource: source,
		CourseName:        c.Name,
		CourseSlug:        c.Slug,
		CourseLink:        c.Link,
		CourseSkills:      c.Skills,
	}
}

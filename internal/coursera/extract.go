package coursera

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SkillExtractor pulls the taught-skills list out of a course detail page.
// The crawl loop only depends on this interface, so page-layout assumptions
// stay here.
type SkillExtractor interface {
	ExtractSkills(doc *goquery.Document) []string
}

// HeadingListExtractor reads the link texts of the first <ul> that follows
// (in document order) the first heading whose text contains Keyword.
type HeadingListExtractor struct {
	Heading string // CSS selector, default "h2"
	Keyword string // case-insensitive, default "skill"
}

func (e HeadingListExtractor) ExtractSkills(doc *goquery.Document) []string {
	heading := e.Heading
	if heading == "" {
		heading = "h2"
	}
	keyword := strings.ToLower(e.Keyword)
	if keyword == "" {
		keyword = "skill"
	}

	var (
		found  bool
		skills []string
	)
	// A group selector yields matches in document order, which lets us find
	// "the next ul after the heading" anywhere below it.
	doc.Find(heading + ", ul").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !found {
			if s.Is(heading) && strings.Contains(strings.ToLower(s.Text()), keyword) {
				found = true
			}
			return true
		}
		if !s.Is("ul") {
			return true
		}
		s.Find("a").Each(func(_ int, a *goquery.Selection) {
			if t := strings.TrimSpace(a.Text()); t != "" {
				skills = append(skills, t)
			}
		})
		return false
	})
	return skills
}

// JoinSkills dedupes, sorts and joins with ", ".
func JoinSkills(skills []string) string {
	seen := make(map[string]struct{}, len(skills))
	uniq := make([]string, 0, len(skills))
	for _, s := range skills {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ", ")
}

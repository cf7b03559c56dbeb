package mapping

import (
	"sort"
	"strings"

	"skill-map/internal/domain"
)

const listSep = ", "

// Aggregate collapses rows sharing a Key into one row. Course name, slug and
// link keep their first-seen order without repeats; course skills are split on
// ", " and merged the same way, dropping empty tokens. Groups come out sorted
// by key.
func Aggregate(rows []domain.CourseMappingRow) []domain.CourseMappingRow {
	type group struct {
		first                   domain.CourseMappingRow
		names, slugs, links, sk *ordered
	}

	groups := map[[6]string]*group{}
	for _, r := range rows {
		k := r.Key()
		g, ok := groups[k]
		if !ok {
			g = &group{
				first: r,
				names: newOrdered(),
				slugs: newOrdered(),
				links: newOrdered(),
				sk:    newOrdered(),
			}
			groups[k] = g
		}
		g.names.add(r.CourseName)
		g.slugs.add(r.CourseSlug)
		g.links.add(r.CourseLink)
		for _, s := range strings.Split(r.CourseSkills, listSep) {
			if s != "" {
				g.sk.add(s)
			}
		}
	}

	keys := make([][6]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	out := make([]domain.CourseMappingRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		row := g.first
		row.CourseName = g.names.join()
		row.CourseSlug = g.slugs.join()
		row.CourseLink = g.links.join()
		row.CourseSkills = g.sk.join()
		out = append(out, row)
	}
	return out
}

func lessKey(a, b [6]string) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// ordered is an insertion-ordered string set.
type ordered struct {
	seen map[string]struct{}
	vals []string
}

func newOrdered() *ordered {
	return &ordered{seen: map[string]struct{}{}}
}

func (o *ordered) add(s string) {
	if _, ok := o.seen[s]; ok {
		return
	}
	o.seen[s] = struct{}{}
	o.vals = append(o.vals, s)
}

func (o *ordered) join() string {
	return strings.Join(o.vals, listSep)
}

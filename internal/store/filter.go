package store

import "strings"

// MatchMode selects how a Filter compares its value with a field.
type MatchMode int

const (
	// MatchExact compares trimmed values, case-sensitive.
	MatchExact MatchMode = iota
	// MatchExactFold compares trimmed values, case-insensitive.
	MatchExactFold
	// MatchContains is a case-insensitive literal substring test.
	MatchContains
)

// Filter is one optional predicate over T. An empty Value disables it.
type Filter[T any] struct {
	Field string
	Value string
	Mode  MatchMode
	Get   func(T) string
}

// Active reports whether the filter has a value to compare.
func (f Filter[T]) Active() bool { return f.Value != "" }

// Match reports whether v's field satisfies the filter under its Mode.
func (f Filter[T]) Match(v T) bool {
	return matchValue(f.Mode, f.Get(v), f.Value)
}

func matchValue(mode MatchMode, field, value string) bool {
	switch mode {
	case MatchExactFold:
		return strings.EqualFold(strings.TrimSpace(field), strings.TrimSpace(value))
	case MatchContains:
		return strings.Contains(strings.ToLower(field), strings.ToLower(value))
	default:
		return strings.TrimSpace(field) == strings.TrimSpace(value)
	}
}

// Apply checks every active filter against the full input before narrowing,
// so a filter with no match fails with ErrNotFound instead of yielding an empty
// result. where is appended to the error message ("" or " in ...").
func Apply[T any](rows []T, where string, filters ...Filter[T]) ([]T, error) {
	for _, f := range filters {
		if !f.Active() {
			continue
		}
		if !anyMatch(rows, f) {
			return nil, NotFoundf("%s '%s' not found%s", f.Field, f.Value, where)
		}
	}

	out := rows
	for _, f := range filters {
		if !f.Active() {
			continue
		}
		out = keep(out, f.Match)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func anyMatch[T any](rows []T, f Filter[T]) bool {
	for _, r := range rows {
		if f.Match(r) {
			return true
		}
	}
	return false
}

func keep[T any](rows []T, pred func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

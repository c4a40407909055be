package taxonomy

import (
	"strings"
	"unicode"
)

// overrides maps historically known label variants to their category. These
// labels never appeared in the configured taxonomy but showed up in recorded
// data often enough to deserve a fixed correction. Keys are lowercase.
var overrides = map[string]string{
	"ai news":       "Research",
	"ai-news":       "Research",
	"news about ai": "Research",
}

// Resolver maps free-text group labels onto taxonomy categories using a
// priority-ordered rule chain. It never fails: when no rule matches the
// label resolves to Fallback. A Resolver holds a snapshot of the taxonomy
// taken at construction time, so one synthesis run sees one consistent
// mapping even if settings change underneath it.
type Resolver struct {
	exact      map[string]string // group label -> category
	lower      map[string]string // lowercased label -> category
	normalized map[string]string // normalized label -> category
	ordered    []normEntry       // normalized labels in taxonomy order
}

type normEntry struct {
	key      string
	category string
}

// NewResolver builds a Resolver over a snapshot of the given taxonomy.
// Earlier categories win when the same group label appears twice.
func NewResolver(t Taxonomy) *Resolver {
	r := &Resolver{
		exact:      make(map[string]string),
		lower:      make(map[string]string),
		normalized: make(map[string]string),
	}
	for _, cat := range t.Categories {
		for _, g := range cat.Groups {
			if _, ok := r.exact[g]; !ok {
				r.exact[g] = cat.Name
			}
			lg := strings.ToLower(g)
			if _, ok := r.lower[lg]; !ok {
				r.lower[lg] = cat.Name
			}
			ng := Normalize(g)
			if ng != "" {
				if _, ok := r.normalized[ng]; !ok {
					r.normalized[ng] = cat.Name
					r.ordered = append(r.ordered, normEntry{key: ng, category: cat.Name})
				}
			}
		}
	}
	return r
}

// Resolve returns the category for a group label. The rules run in order and
// the first match wins:
//
//  1. exact match against a configured group
//  2. case-insensitive match
//  3. fixed override table (takes precedence over fuzzy rules)
//  4. normalized match (alphanumeric-only, lowercased)
//  5. substring match on normalized names, either direction
//  6. Fallback
func (r *Resolver) Resolve(label string) string {
	for _, rule := range r.rules() {
		if cat, ok := rule.match(label); ok {
			return cat
		}
	}
	return Fallback
}

// MapGroups resolves every label in groups and returns the combined
// group-to-category map.
func (r *Resolver) MapGroups(groups []string) map[string]string {
	m := make(map[string]string, len(groups))
	for _, g := range groups {
		m[g] = r.Resolve(g)
	}
	return m
}

// rule is one step of the matching chain. Splitting the chain into named
// rules keeps each strategy testable on its own.
type rule struct {
	name  string
	match func(label string) (string, bool)
}

func (r *Resolver) rules() []rule {
	return []rule{
		{"exact", r.matchExact},
		{"caseless", r.matchCaseless},
		{"override", matchOverride},
		{"normalized", r.matchNormalized},
		{"substring", r.matchSubstring},
	}
}

func (r *Resolver) matchExact(label string) (string, bool) {
	cat, ok := r.exact[label]
	return cat, ok
}

func (r *Resolver) matchCaseless(label string) (string, bool) {
	cat, ok := r.lower[strings.ToLower(label)]
	return cat, ok
}

func matchOverride(label string) (string, bool) {
	cat, ok := overrides[strings.ToLower(strings.TrimSpace(label))]
	return cat, ok
}

func (r *Resolver) matchNormalized(label string) (string, bool) {
	cat, ok := r.normalized[Normalize(label)]
	return cat, ok
}

// matchSubstring matches when the normalized label contains, or is contained
// by, a configured group's normalized name. Very short names are skipped to
// avoid accidental matches.
func (r *Resolver) matchSubstring(label string) (string, bool) {
	nl := Normalize(label)
	if len(nl) < 3 {
		return "", false
	}
	for _, e := range r.ordered {
		if len(e.key) < 3 {
			continue
		}
		if strings.Contains(e.key, nl) || strings.Contains(nl, e.key) {
			return e.category, true
		}
	}
	return "", false
}

// Normalize lowercases a label, drops non-alphanumeric runes and collapses
// whitespace, producing the comparison key used by the fuzzy rules.
func Normalize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range strings.ToLower(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

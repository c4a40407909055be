package taxonomy

// Category is one entry of the canonical taxonomy: a display name plus the
// group labels that belong to it.
type Category struct {
	Name   string   `json:"name" mapstructure:"name"`
	Groups []string `json:"groups" mapstructure:"groups"`
}

// Taxonomy is the ordered list of categories used to map free-text group
// labels onto a small fixed category set. It is owned by settings and can
// change between synthesis runs; callers must take a snapshot per run.
type Taxonomy struct {
	Categories []Category `json:"categories" mapstructure:"categories"`
}

// Fallback is the category assigned when no rule matches a group label.
const Fallback = "Other"

// Default returns the built-in taxonomy used until settings override it.
func Default() Taxonomy {
	return Taxonomy{
		Categories: []Category{
			{Name: "Coding", Groups: []string{"ActivityReports project", "ColabsReview", "MultiAgent"}},
			{Name: "Training", Groups: []string{"NLP Course", "Deep Learning Specialization"}},
			{Name: "Research", Groups: []string{"Paper Reading: Transformer-XX", "Video: New Architecture"}},
			{Name: "Business", Groups: []string{"Project Bids", "Client Meetings"}},
			{Name: "Work&Finance", Groups: []string{"Unemployment", "Work-search", "Pensions-related"}},
		},
	}
}

// CategoryNames returns the category names in taxonomy order.
func (t Taxonomy) CategoryNames() []string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}
	return names
}

// GroupCount returns the total number of configured group labels.
func (t Taxonomy) GroupCount() int {
	n := 0
	for _, c := range t.Categories {
		n += len(c.Groups)
	}
	return n
}

package skeleton

import "slices"

// Category names a class of validation finding.
type Category string

const (
	CategoryName      Category = "name"
	CategoryTypo      Category = "typo"
	CategoryScale     Category = "scale"
	CategoryAnimated  Category = "animated"
	CategoryDuplicate Category = "duplicate"
	CategoryBookend   Category = "bookend"
	CategoryParent    Category = "parent"
	CategoryMirror    Category = "mirror"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryName, CategoryTypo, CategoryScale, CategoryAnimated,
	CategoryDuplicate, CategoryBookend, CategoryParent, CategoryMirror,
}

// Violation is a single finding. Nodes holds the names involved, usually one
// (two for a mirror pair).
type Violation struct {
	Category Category
	Nodes    []string
	Message  string
}

// Report collects violations in the order they were found. A nil Report is
// empty.
type Report struct {
	violations []Violation
}

// Add appends a violation.
func (r *Report) Add(category Category, message string, nodes ...string) {
	r.violations = append(r.violations, Violation{Category: category, Nodes: nodes, Message: message})
}

// All returns every violation.
func (r *Report) All() []Violation {
	if r == nil {
		return nil
	}
	return slices.Clone(r.violations)
}

// ByCategory returns the violations of one category.
func (r *Report) ByCategory(c Category) []Violation {
	if r == nil {
		return nil
	}
	var out []Violation
	for _, v := range r.violations {
		if v.Category == c {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether any violation of category c was found.
func (r *Report) Has(c Category) bool {
	return len(r.ByCategory(c)) > 0
}

// Len returns the number of violations.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.violations)
}

// Counts returns the number of violations per category, omitting empty ones.
func (r *Report) Counts() map[Category]int {
	counts := make(map[Category]int)
	if r == nil {
		return counts
	}
	for _, v := range r.violations {
		counts[v.Category]++
	}
	return counts
}

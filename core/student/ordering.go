package student

import (
	"sort"
	"strings"

	"github.com/trezcool/masomo-roster/core"
)

// sortable fields
var orderFields = map[string]func(a, b Student) int{
	"id":              func(a, b Student) int { return a.ID - b.ID },
	"admissionNumber": func(a, b Student) int { return compareFold(a.AdmissionNumber, b.AdmissionNumber) },
	"fullName":        func(a, b Student) int { return compareFold(a.FullName, b.FullName) },
	"className":       func(a, b Student) int { return compareFold(a.ClassName, b.ClassName) },
	"gender":          func(a, b Student) int { return compareFold(a.Gender, b.Gender) },
	"parentName":      func(a, b Student) int { return compareFold(a.ParentName, b.ParentName) },
	"status":          func(a, b Student) int { return compareFold(a.Status, b.Status) },
	"admissionDate":   func(a, b Student) int { return strings.Compare(a.AdmissionDate, b.AdmissionDate) },
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

type orderField struct {
	cmp  func(a, b Student) int
	desc bool
}

// Ordering sorts records by one or more fields. The zero value keeps the order unchanged.
type Ordering struct {
	fields []orderField
}

// ParseOrdering reads "fullName,-admissionNumber" ("-" prefix: descending).
// Unknown fields are reported as a *core.ValidationError.
func ParseOrdering(ordering string) (Ordering, error) {
	var (
		ord     Ordering
		invalid []core.FieldError
	)
	for _, name := range strings.Split(ordering, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimPrefix(name, "-")
		cmp, ok := orderFields[name]
		if !ok {
			invalid = append(invalid, core.FieldError{Field: name, Error: "cannot sort by this field"})
			continue
		}
		ord.fields = append(ord.fields, orderField{cmp: cmp, desc: desc})
	}
	if len(invalid) > 0 {
		return Ordering{}, core.NewValidationError(nil, invalid...)
	}
	return ord, nil
}

// IsZero reports whether the ordering has no field.
func (o Ordering) IsZero() bool { return len(o.fields) == 0 }

// Sort sorts records in place, keeping the relative order of equal records.
func (o Ordering) Sort(records []Student) {
	if o.IsZero() {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, f := range o.fields {
			r := f.cmp(records[i], records[j])
			if f.desc {
				r = -r
			}
			if r != 0 {
				return r < 0
			}
		}
		return false
	})
}

package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-roster/core/student"
)

var orderingParam = "ordering"

// QueryFilter restricts GET /api/students. At most one of its fields is used:
// search first, then className, then status.
type QueryFilter struct {
	Search    string `query:"search"`
	ClassName string `query:"className"`
	Status    string `query:"status"`
}

func (f *QueryFilter) Clean() {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	f.ClassName = strings.TrimSpace(f.ClassName)
	f.Status = strings.TrimSpace(f.Status)
	if strings.EqualFold(f.ClassName, "all") {
		f.ClassName = ""
	}
	if strings.EqualFold(f.Status, "all") {
		f.Status = ""
	}
}

func (f QueryFilter) Match(s student.Student) bool {
	switch {
	case f.Search != "":
		for _, v := range []string{s.FullName, s.AdmissionNumber, s.ClassName, s.ParentName, s.ParentPhone} {
			if strings.Contains(strings.ToLower(v), f.Search) {
				return true
			}
		}
		return false
	case f.ClassName != "":
		return s.ClassName == f.ClassName
	case f.Status != "":
		return strings.EqualFold(strings.TrimSpace(s.Status), f.Status)
	}
	return true
}

// bindOrdering reads the "ordering" query param (e.g. "className,-fullName").
func bindOrdering(ctx echo.Context) (student.Ordering, error) {
	return student.ParseOrdering(ctx.QueryParam(orderingParam))
}

package roster

import "github.com/trezcool/masomo-roster/core/student"

// EmptyText is shown in place of the rows when nothing is visible.
const EmptyText = "No students found"

// Page is the projection of the visible records on the current page.
type Page struct {
	Rows         []student.Details
	Number       int
	TotalPages   int
	ItemsPerPage int
	Total        int // visible records, all pages included
	HasPrev      bool
	HasNext      bool
	Filter       string // active filter, "" when none
}

// Empty reports whether no record is visible.
func (p Page) Empty() bool { return len(p.Rows) == 0 }

// Page returns the current page.
func (c *Cache) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageLocked()
}

func (c *Cache) pageLocked() Page {
	visible := c.visibleLocked()
	total := c.clampLocked(len(visible))
	return paginate(visible, c.page, c.perPage, total, c.filter.String())
}

func paginate(visible []student.Student, number, perPage, total int, filterDesc string) Page {
	start := (number - 1) * perPage
	end := start + perPage
	if end > len(visible) {
		end = len(visible)
	}
	if start > end {
		start = end
	}

	rows := make([]student.Details, 0, end-start)
	for _, s := range visible[start:end] {
		rows = append(rows, student.DetailsOf(s))
	}
	return Page{
		Rows:         rows,
		Number:       number,
		TotalPages:   total,
		ItemsPerPage: perPage,
		Total:        len(visible),
		HasPrev:      number > 1,
		HasNext:      number < total,
		Filter:       filterDesc,
	}
}

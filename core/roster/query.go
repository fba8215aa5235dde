package roster

import (
	"sort"
	"strings"

	"github.com/trezcool/masomo-roster/core/student"
)

type filterKind int

const (
	filterNone filterKind = iota
	filterSearch
	filterClass
	filterStatus
)

// filter is the single active restriction of the visible records.
type filter struct {
	kind  filterKind
	value string
}

func (f filter) match(s student.Student) bool {
	switch f.kind {
	case filterSearch:
		q := strings.ToLower(f.value)
		for _, v := range []string{s.FullName, s.AdmissionNumber, s.ClassName, s.ParentName, s.ParentPhone} {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	case filterClass:
		return s.ClassName == f.value
	case filterStatus:
		return strings.EqualFold(strings.TrimSpace(s.Status), f.value)
	}
	return true
}

func (f filter) String() string {
	switch f.kind {
	case filterSearch:
		return "search: " + f.value
	case filterClass:
		return "class: " + f.value
	case filterStatus:
		return "status: " + f.value
	}
	return ""
}

// Search shows the records whose name, admission number, class, parent name
// or parent phone contain query (case-insensitive). A blank query clears it.
func (c *Cache) Search(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.setFilter(filter{})
		return
	}
	c.setFilter(filter{kind: filterSearch, value: query})
}

// FilterByClass shows the records of one class. "" or "all" clears it.
func (c *Cache) FilterByClass(className string) {
	className = strings.TrimSpace(className)
	if className == "" || strings.EqualFold(className, "all") {
		c.setFilter(filter{})
		return
	}
	c.setFilter(filter{kind: filterClass, value: className})
}

// FilterByStatus shows the records with a status (case-insensitive). "" or "all" clears it.
func (c *Cache) FilterByStatus(status string) {
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, "all") {
		c.setFilter(filter{})
		return
	}
	c.setFilter(filter{kind: filterStatus, value: status})
}

// ClearFilter shows every record again.
func (c *Cache) ClearFilter() {
	c.setFilter(filter{})
}

func (c *Cache) setFilter(f filter) {
	c.mu.Lock()
	c.filter = f
	c.page = 1
	page := c.pageLocked()
	c.mu.Unlock()
	c.render(page)
}

// SortBy orders the visible records. An empty ordering restores the cache order.
func (c *Cache) SortBy(ordering string) error {
	ord, err := student.ParseOrdering(ordering)
	if err != nil {
		c.notifyInvalid(err)
		return err
	}
	c.mu.Lock()
	c.ordering = ord
	c.page = 1
	page := c.pageLocked()
	c.mu.Unlock()
	c.render(page)
	return nil
}

// Classes returns the distinct class names, sorted.
func (c *Cache) Classes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool)
	classes := make([]string, 0)
	for _, s := range c.records {
		if s.ClassName == "" || seen[s.ClassName] {
			continue
		}
		seen[s.ClassName] = true
		classes = append(classes, s.ClassName)
	}
	sort.Strings(classes)
	return classes
}

// Visible returns the filtered and sorted records.
func (c *Cache) Visible() []student.Student {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visibleLocked()
}

func (c *Cache) visibleLocked() []student.Student {
	visible := make([]student.Student, 0, len(c.records))
	for _, s := range c.records {
		if c.filter.match(s) {
			visible = append(visible, s)
		}
	}
	c.ordering.Sort(visible)
	return visible
}

func (c *Cache) NextPage() { c.movePage(func(p int) int { return p + 1 }) }
func (c *Cache) PrevPage() { c.movePage(func(p int) int { return p - 1 }) }

// GoToPage moves to page n, clamped to the existing pages.
func (c *Cache) GoToPage(n int) { c.movePage(func(int) int { return n }) }

func (c *Cache) movePage(to func(current int) int) {
	c.mu.Lock()
	c.page = to(c.page)
	page := c.pageLocked()
	c.mu.Unlock()
	c.render(page)
}

// CurrentPage returns the page cursor.
func (c *Cache) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clampLocked(len(c.visibleLocked()))
	return c.page
}

func (c *Cache) clampLocked(visible int) int {
	total := totalPages(visible, c.perPage)
	if c.page > total {
		c.page = total
	}
	if c.page < 1 {
		c.page = 1
	}
	return total
}

func totalPages(n, perPage int) int {
	if n == 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

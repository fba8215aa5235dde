package roster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-roster/core/student"
)

func renderHTML(t *testing.T, p Page) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer(&buf).Render(p))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestHTMLRenderer_Render(t *testing.T) {
	records := append(student.DemoStudents(), student.Student{ID: 9, FullName: "<b>Eve</b>", Status: "On Leave"})
	doc := renderHTML(t, paginate(records, 1, 10, 1, ""))

	rows := doc.Find("#students-table-body tr")
	require.Equal(t, 3, rows.Length())

	first := rows.First()
	assert.Equal(t, "1", first.AttrOr("data-id", ""))
	cells := first.Find("td")
	require.Equal(t, tableColumns, cells.Length())
	assert.Equal(t, "STD001", cells.Eq(1).Text())
	assert.Equal(t, "John Doe", cells.Eq(2).Text())
	assert.Equal(t, "Grade 10A", cells.Eq(3).Text())
	assert.Equal(t, "1", cells.Eq(0).Find("input.select-student").AttrOr("data-id", ""))

	for _, action := range []string{ActionView, ActionEdit, ActionDelete} {
		btn := first.Find("td.actions button." + action)
		require.Equal(t, 1, btn.Length(), action)
		assert.Equal(t, "1", btn.AttrOr("data-id", ""))
	}

	status := rows.Eq(0).Find("span.status")
	assert.True(t, status.HasClass("status-active"))
	assert.Equal(t, "Active", status.Text())

	last := rows.Last()
	assert.Equal(t, "<b>Eve</b>", last.Find("td").Eq(2).Text(), "values are escaped")
	assert.Equal(t, 0, last.Find("b").Length())
	assert.Equal(t, student.PlaceholderNA, last.Find("td").Eq(1).Text())
	assert.True(t, last.Find("span.status").HasClass("status-on-leave"))

	_, prevDisabled := doc.Find("button.prev-page").Attr("disabled")
	_, nextDisabled := doc.Find("button.next-page").Attr("disabled")
	assert.True(t, prevDisabled)
	assert.True(t, nextDisabled)
	assert.Contains(t, doc.Find(".page-info").Text(), "Page 1 of 1")
}

func TestHTMLRenderer_Render_pagination(t *testing.T) {
	records := append(student.DemoStudents(), student.DemoStudents()...)
	doc := renderHTML(t, paginate(records, 2, 1, 4, ""))

	assert.Equal(t, 1, doc.Find("#students-table-body tr").Length())
	_, prevDisabled := doc.Find("button.prev-page").Attr("disabled")
	_, nextDisabled := doc.Find("button.next-page").Attr("disabled")
	assert.False(t, prevDisabled)
	assert.False(t, nextDisabled)
	assert.Equal(t, "Page 2 of 4 (4 students)", doc.Find(".page-info").Text())
}

func TestHTMLRenderer_Render_empty(t *testing.T) {
	doc := renderHTML(t, paginate(nil, 1, 10, 1, "search: nobody"))

	rows := doc.Find("#students-table-body tr")
	require.Equal(t, 1, rows.Length())
	assert.True(t, rows.HasClass("empty"))
	cell := rows.Find("td")
	assert.Equal(t, "9", cell.AttrOr("colspan", ""))
	assert.Equal(t, EmptyText, cell.Text())
	assert.Equal(t, 0, doc.Find("button.view").Length())
}

func TestHTMLRenderer_Show(t *testing.T) {
	s := student.DemoStudents()[1]
	s.Address, s.Allergies, s.ParentEmail = "", "", ""

	var buf bytes.Buffer
	require.NoError(t, NewHTMLRenderer(&buf).Show(s))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	details := doc.Find(".student-details")
	assert.Equal(t, "2", details.AttrOr("data-id", ""))
	assert.Equal(t, "Jane Smith", details.Find("h3").Text())
	assert.Equal(t, "STD002", details.Find("dd.admission-number").Text())
	assert.Equal(t, student.PlaceholderNotSpecified, details.Find("dd.address").Text())
	assert.Equal(t, student.PlaceholderNone, details.Find("dd.allergies").Text())
	assert.Equal(t, student.PlaceholderNA, details.Find("dd.parent-email").Text())
	assert.Equal(t, 1, details.Find("dd.status span.status-active").Length())
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewTextRenderer(&buf)

	require.NoError(t, r.Render(paginate(student.DemoStudents(), 1, 1, 2, "class: Grade 10A")))
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Regexp(t, `^ID\s+ADMISSION NO\s+NAME\s+CLASS`, lines[0])
	assert.Regexp(t, `^1\s+STD001\s+John Doe\s+Grade 10A\s+Male`, lines[1])
	assert.Equal(t, "Filter: class: Grade 10A", lines[2])
	assert.Equal(t, "Page 1 of 2 (2 students) [next]", lines[3])

	buf.Reset()
	require.NoError(t, r.Render(paginate(nil, 1, 10, 1, "")))
	assert.Contains(t, buf.String(), EmptyText)

	buf.Reset()
	require.NoError(t, r.Show(student.Student{ID: 3, FullName: "Wanjiru Kamau"}))
	assert.Regexp(t, `Name:\s+Wanjiru Kamau`, buf.String())
	assert.Regexp(t, `Blood Group:\s+Not specified`, buf.String())
	assert.Regexp(t, `Medical Conditions:\s+None`, buf.String())
}

package roster

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

var classRoster = []student.Student{
	{ID: 1, AdmissionNumber: "STD001", FullName: "John Doe", ClassName: "Grade 10A", ParentName: "Robert Doe", ParentPhone: "+1234567890", Status: "Active", AdmissionDate: "2023-01-10"},
	{ID: 2, AdmissionNumber: "STD002", FullName: "Jane Smith", ClassName: "Grade 9B", ParentName: "Mary Smith", ParentPhone: "+1987654321", Status: "Active", AdmissionDate: "2023-02-15"},
	{ID: 3, AdmissionNumber: "STD003", FullName: "amani otieno", ClassName: "Grade 10A", ParentName: "Grace Otieno", ParentPhone: "+254711000111", Status: "Inactive", AdmissionDate: "2022-09-01"},
	{ID: 4, AdmissionNumber: "STD004", FullName: "Baraka Mwangi", ClassName: "Grade 8C", ParentName: "Peter Mwangi", ParentPhone: "+254722000222", Status: "on leave", AdmissionDate: "2024-01-08"},
	{ID: 5, AdmissionNumber: "STD005", FullName: "Zawadi Njeri", ClassName: "Grade 9B", ParentName: "Jane Njeri", ParentPhone: "+254733000333", Status: "", AdmissionDate: "2021-05-20"},
}

func newRosterEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	env := newTestEnv(t, &fakeSource{students: classRoster}, opts...)
	require.Equal(t, OriginRemote, env.cache.Load(context.Background()))
	return env
}

func visibleIDs(c *Cache) []int {
	return ids(c.Visible())
}

func TestCache_Search(t *testing.T) {
	tests := []struct {
		query string
		want  []int
	}{
		{"jane", []int{2, 5}}, // name, parent name
		{"JOHN", []int{1}},
		{"std00", []int{1, 2, 3, 4, 5}},
		{"grade 10a", []int{1, 3}},
		{"+2547", []int{3, 4, 5}},
		{"nobody", []int{}},
		{"   ", []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			env := newRosterEnv(t)
			env.cache.Search(tt.query)
			assert.Equal(t, tt.want, visibleIDs(env.cache))
		})
	}
}

func TestCache_Search_reversible(t *testing.T) {
	env := newRosterEnv(t, withItemsPerPage(2))
	before := env.cache.Records()
	beforePage := env.cache.Page()

	env.cache.Search("otieno")
	assert.Equal(t, []int{3}, visibleIDs(env.cache))
	assert.Equal(t, before, env.cache.Records(), "search never mutates records")

	env.cache.Search("")
	assert.Equal(t, before, env.cache.Records())
	assert.Equal(t, ids(before), visibleIDs(env.cache))
	assert.Equal(t, beforePage, env.cache.Page())
}

func TestCache_filters(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *Cache)
		want  []int
	}{
		{"class", func(c *Cache) { c.FilterByClass("Grade 9B") }, []int{2, 5}},
		{"class is exact", func(c *Cache) { c.FilterByClass("grade 9b") }, []int{}},
		{"all classes", func(c *Cache) { c.FilterByClass("all") }, []int{1, 2, 3, 4, 5}},
		{"status", func(c *Cache) { c.FilterByStatus("active") }, []int{1, 2}},
		{"status with spaces", func(c *Cache) { c.FilterByStatus("On Leave") }, []int{4}},
		{"all statuses", func(c *Cache) { c.FilterByStatus("All") }, []int{1, 2, 3, 4, 5}},
		{
			name: "last filter wins",
			apply: func(c *Cache) {
				c.FilterByClass("Grade 10A")
				c.FilterByStatus("Active")
			},
			want: []int{1, 2},
		},
		{
			name: "search replaces filter",
			apply: func(c *Cache) {
				c.FilterByStatus("Inactive")
				c.Search("smith")
			},
			want: []int{2},
		},
		{
			name: "cleared",
			apply: func(c *Cache) {
				c.FilterByStatus("Inactive")
				c.ClearFilter()
			},
			want: []int{1, 2, 3, 4, 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newRosterEnv(t)
			tt.apply(env.cache)
			assert.Equal(t, tt.want, visibleIDs(env.cache))
			assert.Len(t, env.cache.Records(), len(classRoster))
		})
	}
}

func TestCache_filter_resetsPage(t *testing.T) {
	env := newRosterEnv(t, withItemsPerPage(2))
	env.cache.GoToPage(3)
	require.Equal(t, 3, env.cache.CurrentPage())

	env.cache.FilterByClass("Grade 10A")
	assert.Equal(t, 1, env.cache.CurrentPage())
	assert.Equal(t, "class: Grade 10A", env.view.last.Filter)
}

func TestCache_SortBy(t *testing.T) {
	tests := []struct {
		ordering string
		want     []int
	}{
		{"fullName", []int{3, 4, 2, 1, 5}},
		{"-fullName", []int{5, 1, 2, 4, 3}},
		{"className,-admissionNumber", []int{3, 1, 4, 5, 2}},
		{"admissionDate", []int{5, 3, 1, 2, 4}},
		{"-id", []int{5, 4, 3, 2, 1}},
		{"", []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			env := newRosterEnv(t)
			require.NoError(t, env.cache.SortBy(tt.ordering))
			assert.Equal(t, tt.want, visibleIDs(env.cache))
			assert.Equal(t, ids(classRoster), ids(env.cache.Records()), "sorting never mutates records")
		})
	}
}

func TestCache_SortBy_unknownField(t *testing.T) {
	env := newRosterEnv(t)
	require.NoError(t, env.cache.SortBy("fullName"))

	err := env.cache.SortBy("fullName,-shoeSize")
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))
	assert.Equal(t, []int{3, 4, 2, 1, 5}, visibleIDs(env.cache), "previous ordering is kept")

	notices := env.notices.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, "Please fix the following: shoeSize: cannot sort by this field", notices[0].Message)
}

func TestCache_sortAndFilter(t *testing.T) {
	env := newRosterEnv(t)
	require.NoError(t, env.cache.SortBy("-fullName"))
	env.cache.FilterByClass("Grade 9B")
	assert.Equal(t, []int{5, 2}, visibleIDs(env.cache))
}

func TestCache_Classes(t *testing.T) {
	env := newRosterEnv(t)
	assert.Equal(t, []string{"Grade 10A", "Grade 8C", "Grade 9B"}, env.cache.Classes())
}

func TestCache_Page(t *testing.T) {
	env := newRosterEnv(t, withItemsPerPage(2))

	p := env.cache.Page()
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 5, p.Total)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, "John Doe", p.Rows[0].FullName)

	env.cache.GoToPage(3)
	p = env.cache.Page()
	assert.Equal(t, 3, p.Number)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "Zawadi Njeri", p.Rows[0].FullName)
	assert.Equal(t, student.PlaceholderNA, p.Rows[0].Status)
	assert.Equal(t, "status-unknown", p.Rows[0].StatusClass)
	assert.Equal(t, p, env.view.last, "every page change is rendered")

	env.cache.Search("nobody")
	p = env.cache.Page()
	assert.True(t, p.Empty())
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)
}

func TestCache_pageBounds(t *testing.T) {
	for _, perPage := range []int{1, 2, 3, 10} {
		t.Run(strconv.Itoa(perPage), func(t *testing.T) {
			env := newRosterEnv(t, withItemsPerPage(perPage), withConfirm(true))
			rnd := rand.New(rand.NewSource(int64(perPage)))

			for i := 0; i < 200; i++ {
				switch rnd.Intn(6) {
				case 0, 1:
					env.cache.NextPage()
				case 2, 3:
					env.cache.PrevPage()
				case 4:
					env.cache.GoToPage(rnd.Intn(10) - 3)
				default:
					if recs := env.cache.Records(); len(recs) > 0 && rnd.Intn(4) == 0 {
						_ = env.cache.Delete(context.Background(), recs[rnd.Intn(len(recs))].ID)
					}
				}

				p := env.cache.Page()
				visible := len(env.cache.Visible())
				maxPage := (visible + perPage - 1) / perPage
				if maxPage < 1 {
					maxPage = 1
				}
				require.GreaterOrEqual(t, p.Number, 1)
				require.LessOrEqual(t, p.Number, maxPage)
				require.Equal(t, maxPage, p.TotalPages)
				require.Equal(t, p.Number > 1, p.HasPrev)
				require.Equal(t, p.Number < maxPage, p.HasNext)
			}
		})
	}
}

func TestCache_deleteClampsPage(t *testing.T) {
	env := newRosterEnv(t, withItemsPerPage(2), withConfirm(true))
	env.cache.GoToPage(3)
	require.NoError(t, env.cache.Delete(context.Background(), 5))
	assert.Equal(t, 2, env.cache.CurrentPage())
	assert.Equal(t, 2, env.view.last.Number)
}

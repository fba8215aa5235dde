package roster

import (
	"embed"
	"fmt"
	htmltmpl "html/template"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	texttmpl "text/template"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core/student"
)

// tableColumns is the number of columns of the HTML table (checkbox and actions included).
const tableColumns = 9

//go:embed templates
var templatesFS embed.FS

var (
	tmplInit      sync.Once
	htmlTemplates *htmltmpl.Template
	textTemplates *texttmpl.Template
	tmplErr       error
)

func parseTemplates() {
	htmlTemplates, tmplErr = htmltmpl.New("roster").
		Option("missingkey=error").
		Funcs(htmltmpl.FuncMap{
			"columns":   func() int { return tableColumns },
			"emptyText": func() string { return EmptyText },
		}).
		ParseFS(templatesFS, "templates/*.gohtml")
	if tmplErr != nil {
		tmplErr = errors.Wrap(tmplErr, "parsing html templates")
		return
	}

	textTemplates, tmplErr = texttmpl.New("roster").
		Option("missingkey=error").
		Funcs(texttmpl.FuncMap{
			"cols":      cols,
			"emptyText": func() string { return EmptyText },
		}).
		ParseFS(templatesFS, "templates/*.txt")
	tmplErr = errors.Wrap(tmplErr, "parsing text templates")
}

// cols joins the values as tab separated cells.
func cols(vals ...interface{}) string {
	cells := make([]string, 0, len(vals))
	for _, v := range vals {
		cells = append(cells, fmt.Sprint(v))
	}
	return strings.Join(cells, "\t")
}

// HTMLRenderer writes a fresh table fragment on every Render.
type HTMLRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

var _ View = (*HTMLRenderer)(nil)

func NewHTMLRenderer(out io.Writer) *HTMLRenderer {
	return &HTMLRenderer{out: out}
}

func (r *HTMLRenderer) Render(p Page) error {
	return r.execute("table", p)
}

func (r *HTMLRenderer) Show(s student.Student) error {
	return r.execute("details", student.DetailsOf(s))
}

func (r *HTMLRenderer) execute(name string, data interface{}) error {
	tmplInit.Do(parseTemplates)
	if tmplErr != nil {
		return tmplErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Wrapf(htmlTemplates.ExecuteTemplate(r.out, name, data), "rendering %s", name)
}

// TextRenderer writes aligned plain text tables, for terminals.
type TextRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

var _ View = (*TextRenderer)(nil)

func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{out: out}
}

func (r *TextRenderer) Render(p Page) error {
	return r.execute("table", p)
}

func (r *TextRenderer) Show(s student.Student) error {
	return r.execute("details", student.DetailsOf(s))
}

func (r *TextRenderer) execute(name string, data interface{}) error {
	tmplInit.Do(parseTemplates)
	if tmplErr != nil {
		return tmplErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	if err := textTemplates.ExecuteTemplate(tw, name, data); err != nil {
		return errors.Wrapf(err, "rendering %s", name)
	}
	return errors.Wrapf(tw.Flush(), "rendering %s", name)
}

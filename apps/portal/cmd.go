package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/roster"
	"github.com/trezcool/masomo-roster/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
	// errReported is returned once the failure was already shown as a notice.
	errReported = errors.New("failure reported")
)

type (
	// rosterSource is the remote roster plus the login endpoint.
	rosterSource interface {
		roster.Source
		Login(ctx context.Context, username, password string) (string, error)
	}

	sessionStore interface {
		SetToken(ctx context.Context, token string) error
		Clear(ctx context.Context) error
	}
)

type commandLine struct {
	conf     *core.Config
	logger   core.Logger
	mirror   roster.Mirror
	session  sessionStore
	source   rosterSource
	notifier core.Notifier
	out      io.Writer
	in       *bufio.Reader
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME             - log in to the roster API (the password is prompted next)")
	fmt.Fprintln(cli.out, "  logout                               - forget the saved session")
	fmt.Fprintln(cli.out, "  list [-page N] [-html]               - show a page of students")
	fmt.Fprintln(cli.out, "  search -q QUERY [-page N] [-html]    - search by name, admission number, class, parent or phone")
	fmt.Fprintln(cli.out, "  filter -class C | -status S [-html]  - show one class or one status")
	fmt.Fprintln(cli.out, "  sort -by FIELDS [-page N] [-html]    - sort by fields, e.g. className,-fullName")
	fmt.Fprintln(cli.out, "  view -id ID [-html]                  - show a student")
	fmt.Fprintln(cli.out, "  add -name … -class … -gender … -parent … -phone … - add a student")
	fmt.Fprintln(cli.out, "  edit -id ID [-name …] [-class …] …   - edit a student")
	fmt.Fprintln(cli.out, "  delete -id ID [-yes]                 - delete a student")
	fmt.Fprintln(cli.out, "  export -file FILE.xlsx               - export every student to a workbook")
	fmt.Fprintln(cli.out, "  import -file FILE.xlsx               - add the students of a workbook")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd := flag.NewFlagSet(args[1], flag.ContinueOnError)
	cmd.SetOutput(cli.out)
	parse := func() error {
		if err := cmd.Parse(args[2:]); err != nil {
			if err == flag.ErrHelp {
				return errHelp
			}
			return err
		}
		return nil
	}

	switch args[1] {
	case "login":
		uname := cmd.String("username", cli.conf.Server.Username, "The operator's username. The password will be prompted next.")
		if err := parse(); err != nil {
			return err
		}
		if *uname == "" {
			cmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *uname, string(pwd))

	case "logout":
		if err := parse(); err != nil {
			return err
		}
		return cli.logout(ctx)

	case "list":
		page := cmd.Int("page", 1, "The page to show.")
		html := cmd.Bool("html", false, "Render HTML instead of text.")
		if err := parse(); err != nil {
			return err
		}
		return cli.browse(ctx, *html, *page, nil)

	case "search":
		query := cmd.String("q", "", "Text searched in names, admission numbers, classes and phones.")
		page := cmd.Int("page", 1, "The page to show.")
		html := cmd.Bool("html", false, "Render HTML instead of text.")
		if err := parse(); err != nil {
			return err
		}
		if strings.TrimSpace(*query) == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.browse(ctx, *html, *page, func(c *roster.Cache) error {
			c.Search(*query)
			return nil
		})

	case "filter":
		class := cmd.String("class", "", "Show one class (\"all\" for every class).")
		status := cmd.String("status", "", "Show one status (\"all\" for every status).")
		page := cmd.Int("page", 1, "The page to show.")
		html := cmd.Bool("html", false, "Render HTML instead of text.")
		if err := parse(); err != nil {
			return err
		}
		if (*class == "") == (*status == "") {
			cmd.Usage()
			return errHelp
		}
		return cli.browse(ctx, *html, *page, func(c *roster.Cache) error {
			if *class != "" {
				c.FilterByClass(*class)
			} else {
				c.FilterByStatus(*status)
			}
			return nil
		})

	case "sort":
		by := cmd.String("by", "", "Comma separated fields, \"-\" prefix for descending order.")
		page := cmd.Int("page", 1, "The page to show.")
		html := cmd.Bool("html", false, "Render HTML instead of text.")
		if err := parse(); err != nil {
			return err
		}
		if *by == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.browse(ctx, *html, *page, func(c *roster.Cache) error {
			return reported(c.SortBy(*by))
		})

	case "view":
		id := cmd.String("id", "", "The student ID.")
		html := cmd.Bool("html", false, "Render HTML instead of text.")
		if err := parse(); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.dispatch(ctx, *html, roster.Control{Class: roster.ActionView, ID: *id}, nil)

	case "add":
		applyForm := bindFormFlags(cmd)
		if err := parse(); err != nil {
			return err
		}
		var form student.Form
		applyForm(&form)
		return cli.add(ctx, form)

	case "edit":
		id := cmd.String("id", "", "The student ID.")
		applyForm := bindFormFlags(cmd)
		if err := parse(); err != nil {
			return err
		}
		if *id == "" || cmd.NFlag() < 2 {
			cmd.Usage()
			return errHelp
		}
		forms := roster.FormSourceFunc(func(_ context.Context, current student.Form) (student.Form, bool, error) {
			applyForm(&current)
			return current, true, nil
		})
		return cli.dispatch(ctx, false, roster.Control{Class: roster.ActionEdit, ID: *id}, forms)

	case "delete":
		id := cmd.String("id", "", "The student ID.")
		yes := cmd.Bool("yes", false, "Do not ask for confirmation.")
		if err := parse(); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		if *yes {
			return cli.dispatchConfirmed(ctx, roster.Control{Class: roster.ActionDelete, ID: *id})
		}
		return cli.dispatch(ctx, false, roster.Control{Class: roster.ActionDelete, ID: *id}, nil)

	case "export":
		file := cmd.String("file", "", "The .xlsx file to write.")
		if err := parse(); err != nil {
			return err
		}
		if *file == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.exportXLSX(ctx, *file)

	case "import":
		file := cmd.String("file", "", "The .xlsx file to read.")
		if err := parse(); err != nil {
			return err
		}
		if *file == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.importXLSX(ctx, *file)

	default:
		cli.printUsage()
		return errHelp
	}
}

// reported maps an error already notified by the cache to errReported.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return errReported
}

// formFields maps the add/edit flags to the form fields.
var formFields = []struct {
	flag, usage string
	field       func(f *student.Form) *string
}{
	{"name", "Full name.", func(f *student.Form) *string { return &f.FullName }},
	{"class", "Class name, e.g. \"Grade 10A\".", func(f *student.Form) *string { return &f.ClassName }},
	{"gender", "Gender.", func(f *student.Form) *string { return &f.Gender }},
	{"dob", "Date of birth (YYYY-MM-DD).", func(f *student.Form) *string { return &f.DateOfBirth }},
	{"parent", "Parent or guardian name.", func(f *student.Form) *string { return &f.ParentName }},
	{"phone", "Parent phone.", func(f *student.Form) *string { return &f.ParentPhone }},
	{"email", "Parent email.", func(f *student.Form) *string { return &f.ParentEmail }},
	{"address", "Home address.", func(f *student.Form) *string { return &f.Address }},
	{"blood", "Blood group.", func(f *student.Form) *string { return &f.BloodGroup }},
	{"allergies", "Known allergies.", func(f *student.Form) *string { return &f.Allergies }},
	{"medical", "Medical conditions.", func(f *student.Form) *string { return &f.MedicalConditions }},
	{"status", "Status, e.g. Active.", func(f *student.Form) *string { return &f.Status }},
}

// bindFormFlags declares the form flags on fs. The returned func copies the flags
// set on the command line into a form, leaving the other fields untouched.
func bindFormFlags(fs *flag.FlagSet) func(dst *student.Form) {
	values := make(map[string]*string, len(formFields))
	for _, fld := range formFields {
		values[fld.flag] = fs.String(fld.flag, "", fld.usage)
	}
	return func(dst *student.Form) {
		fs.Visit(func(fl *flag.Flag) {
			for _, fld := range formFields {
				if fld.flag == fl.Name {
					*fld.field(dst) = *values[fl.Name]
				}
			}
		})
	}
}

// confirm asks a yes/no question on the terminal; anything but y/yes is a no.
func (cli *commandLine) confirm(prompt string) bool {
	fmt.Fprintf(cli.out, "%s [y/N]: ", prompt)
	answer, err := cli.in.ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(cli.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func newStdin() *bufio.Reader {
	return bufio.NewReader(os.Stdin)
}

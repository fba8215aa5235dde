package main

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/roster"
	"github.com/trezcool/masomo-roster/core/student"
	"github.com/trezcool/masomo-roster/services/notify"
	"github.com/trezcool/masomo-roster/services/rosterapi"
	"github.com/trezcool/masomo-roster/storage/mirror"
	"github.com/trezcool/masomo-roster/storage/session"
)

const testPassword = "s3cret"

// fakeAPI is an in-memory roster API guarded by a session token.
type fakeAPI struct {
	mu       sync.Mutex
	tokens   *session.Store
	students []student.Student
	nextID   int
	offline  bool
}

func (api *fakeAPI) check(ctx context.Context) error {
	if api.offline {
		return rosterapi.ErrUnavailable
	}
	token, err := api.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return rosterapi.ErrNotAuthenticated
	}
	return nil
}

func (api *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	if username != "admin" || password != testPassword {
		return "", &rosterapi.RemoteError{StatusCode: 400, Message: "authentication failed"}
	}
	return "tok", nil
}

func (api *fakeAPI) ListStudents(ctx context.Context) ([]student.Student, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	if err := api.check(ctx); err != nil {
		return nil, err
	}
	return append([]student.Student(nil), api.students...), nil
}

func (api *fakeAPI) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	if err := api.check(ctx); err != nil {
		return student.Student{}, err
	}
	api.nextID++
	s.ID = api.nextID
	s.AdmissionNumber = student.AdmissionNumberFor(s.ID)
	api.students = append(api.students, s)
	return s, nil
}

func (api *fakeAPI) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	if err := api.check(ctx); err != nil {
		return student.Student{}, err
	}
	for i := range api.students {
		if api.students[i].ID == s.ID {
			api.students[i] = s
			return s, nil
		}
	}
	return student.Student{}, &rosterapi.RemoteError{StatusCode: 404, Message: "not found"}
}

func (api *fakeAPI) DeleteStudent(ctx context.Context, id int) error {
	api.mu.Lock()
	defer api.mu.Unlock()
	if err := api.check(ctx); err != nil {
		return err
	}
	for i := range api.students {
		if api.students[i].ID == id {
			api.students = append(api.students[:i], api.students[i+1:]...)
			return nil
		}
	}
	return &rosterapi.RemoteError{StatusCode: 404, Message: "not found"}
}

func (api *fakeAPI) ids() []int {
	api.mu.Lock()
	defer api.mu.Unlock()
	ids := make([]int, 0, len(api.students))
	for _, s := range api.students {
		ids = append(ids, s.ID)
	}
	return ids
}

type testCLI struct {
	*commandLine
	api     *fakeAPI
	store   mirror.Store
	sess    *session.Store
	out     *bytes.Buffer
	notices *notify.Recorder
}

// setup returns a logged in CLI whose API holds the demo students.
func setup(t *testing.T, stdin ...string) *testCLI {
	t.Helper()
	store := mirror.NewMemoryStore()
	sess := session.NewStore(store)
	require.NoError(t, sess.SetToken(context.Background(), "tok"))
	api := &fakeAPI{tokens: sess, students: student.DemoStudents(), nextID: 2}

	out := new(bytes.Buffer)
	notices := new(notify.Recorder)
	conf := &core.Config{
		Roster: core.RosterConfig{MirrorKey: "students", ItemsPerPage: 10},
		Server: core.ServerConfig{Username: "admin"},
	}
	return &testCLI{
		commandLine: &commandLine{
			conf:     conf,
			logger:   core.NopLogger(),
			mirror:   store,
			session:  sess,
			source:   api,
			notifier: notices,
			out:      out,
			in:       bufio.NewReader(strings.NewReader(strings.Join(stdin, "\n"))),
		},
		api:     api,
		store:   store,
		sess:    sess,
		out:     out,
		notices: notices,
	}
}

func (cli *testCLI) exec(args ...string) error {
	return cli.run(context.Background(), append([]string{"portal"}, args...))
}

func (cli *testCLI) messages() []string {
	msgs := make([]string, 0)
	for _, n := range cli.notices.Notices() {
		msgs = append(msgs, n.Level+": "+n.Message)
	}
	return msgs
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_help(t *testing.T) {
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "flag help", args: []string{"list", "-h"}, wantErr: errHelp},
		{name: "search without query", args: []string{"search", "-q", "  "}, wantErr: errHelp},
		{name: "filter without value", args: []string{"filter"}, wantErr: errHelp},
		{name: "filter with class and status", args: []string{"filter", "-class", "Grade 9B", "-status", "Active"}, wantErr: errHelp},
		{name: "sort without fields", args: []string{"sort"}, wantErr: errHelp},
		{name: "view without id", args: []string{"view"}, wantErr: errHelp},
		{name: "edit without changes", args: []string{"edit", "-id", "1"}, wantErr: errHelp},
		{name: "delete without id", args: []string{"delete", "-yes"}, wantErr: errHelp},
		{name: "export without file", args: []string{"export"}, wantErr: errHelp},
		{name: "import without file", args: []string{"import"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := setup(t)
			if err := cli.exec(tt.args...); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Empty(t, cli.notices.Notices())
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	type extra struct {
		pwd string
	}
	tests := []struct {
		cliTest
		extra     extra
		wantToken string
	}{
		{cliTest: cliTest{name: "no password", args: []string{"login"}, wantErr: errHelp}},
		{cliTest: cliTest{name: "empty username", args: []string{"login", "-username", ""}, wantErr: errHelp}},
		{cliTest: cliTest{name: "default username", args: []string{"login"}}, extra: extra{pwd: testPassword}, wantToken: "tok"},
		{cliTest: cliTest{name: "username", args: []string{"login", "-username", "admin"}}, extra: extra{pwd: testPassword}, wantToken: "tok"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.extra.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			cli := setup(t)
			require.NoError(t, cli.sess.Clear(context.Background()))

			if err := cli.exec(tt.args...); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			token, err := cli.sess.Token(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}

	t.Run("wrong password", func(t *testing.T) {
		readPasswordFunc = func(int) ([]byte, error) { return []byte("nope"), nil }
		cli := setup(t)
		require.NoError(t, cli.sess.Clear(context.Background()))

		err := cli.exec("login", "-username", "admin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "authentication failed")
	})
}

func Test_commandLine_logout(t *testing.T) {
	cli := setup(t)
	require.NoError(t, cli.exec("logout"))
	assert.Contains(t, cli.out.String(), "Logged out")

	// logged out: the mirror is used, and the user is told to log in
	require.NoError(t, cli.exec("list"))
	assert.Equal(t, []string{
		"warning: Please log in to sync students with the server",
		"warning: Using demo data",
	}, cli.messages())
}

func Test_commandLine_list(t *testing.T) {
	cli := setup(t)
	require.NoError(t, cli.exec("list"))

	out := cli.out.String()
	assert.Equal(t, 1, strings.Count(out, "ADMISSION NO"), "the page is rendered once")
	assert.Contains(t, out, "John Doe")
	assert.Contains(t, out, "Jane Smith")
	assert.Contains(t, out, "Page 1 of 1 (2 students)")
	assert.Empty(t, cli.notices.Notices())
}

func Test_commandLine_list_html(t *testing.T) {
	cli := setup(t)
	cli.conf.Roster.ItemsPerPage = 1
	require.NoError(t, cli.exec("list", "-html", "-page", "2"))

	doc, err := goquery.NewDocumentFromReader(cli.out)
	require.NoError(t, err)
	rows := doc.Find("#students-table-body tr")
	require.Equal(t, 1, rows.Length())
	assert.Equal(t, "2", rows.AttrOr("data-id", ""))
	assert.Equal(t, "Page 2 of 2 (2 students)", doc.Find(".page-info").Text())
}

func Test_commandLine_browse(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantNot []string
		wantErr error
		notices int
	}{
		{name: "search", args: []string{"search", "-q", "smith"}, want: []string{"Jane Smith", "Filter: search: smith"}, wantNot: []string{"John Doe"}},
		{name: "search no match", args: []string{"search", "-q", "nobody"}, want: []string{roster.EmptyText}},
		{name: "filter class", args: []string{"filter", "-class", "Grade 10A"}, want: []string{"John Doe", "Filter: class: Grade 10A"}, wantNot: []string{"Jane Smith"}},
		{name: "filter status", args: []string{"filter", "-status", "inactive"}, want: []string{roster.EmptyText}},
		{name: "sort", args: []string{"sort", "-by", "-fullName"}, want: []string{"John Doe", "Jane Smith"}},
		{name: "sort unknown field", args: []string{"sort", "-by", "shoeSize"}, wantErr: errReported, notices: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := setup(t)
			if err := cli.exec(tt.args...); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			out := cli.out.String()
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.wantNot {
				assert.NotContains(t, out, s)
			}
			assert.Len(t, cli.notices.Notices(), tt.notices)
		})
	}

	t.Run("sort order", func(t *testing.T) {
		cli := setup(t)
		require.NoError(t, cli.exec("sort", "-by", "-fullName"))
		out := cli.out.String()
		assert.Less(t, strings.Index(out, "John Doe"), strings.Index(out, "Jane Smith"))
	})
}

func Test_commandLine_view(t *testing.T) {
	cli := setup(t)
	require.NoError(t, cli.exec("view", "-id", "2"))

	out := cli.out.String()
	assert.Regexp(t, `Name:\s+Jane Smith`, out)
	assert.NotContains(t, out, "ADMISSION NO", "no table before the record")

	cli = setup(t)
	assert.Equal(t, errReported, cli.exec("view", "-id", "42"))
	assert.Equal(t, []string{"error: Student not found"}, cli.messages())
}

func Test_commandLine_add(t *testing.T) {
	cli := setup(t)
	err := cli.exec("add",
		"-name", "Amani Otieno", "-class", "Grade 8C", "-gender", "Male",
		"-parent", "Grace Otieno", "-phone", "+254711000111", "-dob", "2011-04-02",
	)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, cli.api.ids())
	assert.Equal(t, []string{"success: Student added successfully"}, cli.messages())
	assert.Contains(t, cli.out.String(), "Amani Otieno")

	cli = setup(t)
	assert.Equal(t, errReported, cli.exec("add", "-name", "Nobody"))
	assert.Equal(t, []int{1, 2}, cli.api.ids())
	msgs := cli.messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0], "error: Please fix the following: "), msgs[0])
}

func Test_commandLine_add_offline(t *testing.T) {
	cli := setup(t)
	cli.api.offline = true

	err := cli.exec("add", "-name", "Amani Otieno", "-class", "Grade 8C", "-gender", "Male", "-parent", "Grace", "-phone", "+254711")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"warning: Could not load students from the server: " + rosterapi.ErrUnavailable.Error(),
		"warning: Using demo data",
		"warning: Server unavailable. Student saved locally",
	}, cli.messages())

	// the next run reads the mirror
	cli.notices.Reset()
	cli.out.Reset()
	require.NoError(t, cli.exec("list"))
	assert.Contains(t, cli.out.String(), "Amani Otieno")
	assert.Contains(t, cli.out.String(), "STD003")
}

func Test_commandLine_edit(t *testing.T) {
	cli := setup(t)
	require.NoError(t, cli.exec("edit", "-id", "1", "-class", "Grade 11A", "-email", "robert@example.com"))

	s := cli.api.students[0]
	assert.Equal(t, "Grade 11A", s.ClassName)
	assert.Equal(t, "robert@example.com", s.ParentEmail)
	assert.Equal(t, "John Doe", s.FullName, "fields without flags are kept")
	assert.Equal(t, []string{"success: Student updated successfully"}, cli.messages())

	cli = setup(t)
	assert.Equal(t, errReported, cli.exec("edit", "-id", "1", "-email", "not-an-email"))
	assert.Equal(t, "robert.doe@example.com", cli.api.students[0].ParentEmail)
}

func Test_commandLine_delete(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantIDs []int
		wantErr error
	}{
		{name: "confirmed", args: []string{"delete", "-id", "2"}, stdin: "y", wantIDs: []int{1}},
		{name: "confirmed (yes)", args: []string{"delete", "-id", "2"}, stdin: " YES ", wantIDs: []int{1}},
		{name: "declined", args: []string{"delete", "-id", "2"}, stdin: "n", wantIDs: []int{1, 2}},
		{name: "no answer", args: []string{"delete", "-id", "2"}, wantIDs: []int{1, 2}},
		{name: "-yes", args: []string{"delete", "-id", "1", "-yes"}, wantIDs: []int{2}},
		{name: "unknown", args: []string{"delete", "-id", "42", "-yes"}, wantIDs: []int{1, 2}, wantErr: errReported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli := setup(t, tt.stdin)
			if err := cli.exec(tt.args...); err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.wantIDs, cli.api.ids())
		})
	}

	t.Run("prompt", func(t *testing.T) {
		cli := setup(t, "n")
		require.NoError(t, cli.exec("delete", "-id", "2"))
		assert.Contains(t, cli.out.String(), "Delete student Jane Smith (STD002)? [y/N]: ")
		assert.Contains(t, cli.out.String(), "Cancelled")
		assert.Empty(t, cli.notices.Notices())
	})
}

func Test_commandLine_exportImport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "students.xlsx")

	cli := setup(t)
	require.NoError(t, cli.exec("export", "-file", file))
	assert.Contains(t, cli.out.String(), "Exported 2 students to "+file)

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	cli = setup(t)
	require.NoError(t, cli.exec("import", "-file", file))
	assert.Equal(t, []int{1, 2, 3, 4}, cli.api.ids())
	assert.Equal(t, []string{"success: Imported 2 students, 0 failed"}, cli.messages())

	cli = setup(t)
	err = cli.exec("import", "-file", filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, cli.api.ids())
}

func Test_screen(t *testing.T) {
	var buf bytes.Buffer
	scr := &screen{view: roster.NewTextRenderer(&buf)}

	require.NoError(t, scr.Render(roster.Page{Number: 1, TotalPages: 1}))
	assert.Empty(t, buf.String())

	scr.live = true
	require.NoError(t, scr.Render(roster.Page{Number: 1, TotalPages: 1}))
	assert.Contains(t, buf.String(), "Page 1 of 1")

	buf.Reset()
	scr.live = false
	require.NoError(t, scr.Show(student.Student{ID: 7, FullName: "Zawadi"}))
	assert.Contains(t, buf.String(), "Zawadi")
}

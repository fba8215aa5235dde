// Package roster keeps the local, browsable copy of the student roster.
//
// A Cache is loaded from the remote source (falling back to the mirror, then
// to demo data), mutated optimistically, written through to the mirror after
// every change and rendered to a View.
package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

const (
	DefaultMirrorKey    = "students"
	DefaultItemsPerPage = 10
)

var (
	// errors
	ErrNotFound  = errors.New("student not found")
	ErrCancelled = errors.New("cancelled")
)

// Origin tells where the records adopted by Load came from.
type Origin int

const (
	OriginRemote Origin = iota + 1
	OriginMirror
	OriginDemo
)

func (o Origin) String() string {
	switch o {
	case OriginRemote:
		return "remote"
	case OriginMirror:
		return "mirror"
	case OriginDemo:
		return "demo"
	}
	return "unknown"
}

type (
	// Source is the remote roster service.
	Source interface {
		ListStudents(ctx context.Context) ([]student.Student, error)
		CreateStudent(ctx context.Context, s student.Student) (student.Student, error)
		UpdateStudent(ctx context.Context, s student.Student) (student.Student, error)
		DeleteStudent(ctx context.Context, id int) error
	}

	// Mirror is the durable snapshot store.
	Mirror interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, data []byte) error
	}

	// View displays the table page and single records.
	View interface {
		Render(p Page) error
		Show(s student.Student) error
	}

	// Confirmer asks the user a yes/no question.
	Confirmer interface {
		Confirm(prompt string) bool
	}
)

// ConfirmFunc adapts a func to a Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Options holds the collaborators of a Cache. Only Mirror is required.
type Options struct {
	Source       Source // nil means offline: every remote call is unavailable
	Mirror       Mirror
	MirrorKey    string
	ItemsPerPage int
	Notifier     core.Notifier
	Logger       core.Logger
	View         View
	Confirmer    Confirmer // nil confirms everything
	Validate     *validator.Validate
	Translator   ut.Translator
}

type Cache struct {
	source     Source
	mirror     Mirror
	mirrorKey  string
	perPage    int
	notifier   core.Notifier
	log        core.Logger
	view       View
	confirmer  Confirmer
	validate   *validator.Validate
	translator ut.Translator

	mu       sync.Mutex
	records  []student.Student
	page     int
	filter   filter
	ordering student.Ordering
}

func New(opts Options) (*Cache, error) {
	if opts.Mirror == nil {
		return nil, errors.New("roster: a mirror is required")
	}
	c := &Cache{
		source:     opts.Source,
		mirror:     opts.Mirror,
		mirrorKey:  opts.MirrorKey,
		perPage:    opts.ItemsPerPage,
		notifier:   opts.Notifier,
		log:        opts.Logger,
		view:       opts.View,
		confirmer:  opts.Confirmer,
		validate:   opts.Validate,
		translator: opts.Translator,
		page:       1,
	}
	if c.mirrorKey == "" {
		c.mirrorKey = DefaultMirrorKey
	}
	if c.perPage < 1 {
		c.perPage = DefaultItemsPerPage
	}
	if c.notifier == nil {
		c.notifier = core.NotifierFunc(func(core.Notice) {})
	}
	if c.log == nil {
		c.log = core.NopLogger()
	}
	if c.translator == nil {
		c.translator = core.NewTranslator()
	}
	if c.validate == nil {
		c.validate = student.NewValidator(c.translator)
	}
	return c, nil
}

// Load adopts the remote records, else the mirrored snapshot, else the demo records.
// It never fails: every fallback is reported with a notice.
func (c *Cache) Load(ctx context.Context) Origin {
	if c.source != nil {
		records, err := c.source.ListStudents(ctx)
		switch {
		case err == nil && len(records) > 0:
			c.adopt(ctx, records)
			return OriginRemote
		case errors.Cause(err) == core.ErrNotAuthenticated:
			c.notify(core.NoticeWarning, "Please log in to sync students with the server")
		case err != nil:
			c.log.Warn("roster: loading remote students", err)
			c.notify(core.NoticeWarning, "Could not load students from the server: "+err.Error())
		default:
			c.log.Info("roster: remote source returned no students")
		}
	}

	if records, ok := c.readMirror(ctx); ok {
		c.adopt(ctx, records)
		return OriginMirror
	}

	c.adopt(ctx, student.DemoStudents())
	c.notify(core.NoticeWarning, "Using demo data")
	return OriginDemo
}

// readMirror returns the snapshot when the key is present and holds a JSON array.
func (c *Cache) readMirror(ctx context.Context) ([]student.Student, bool) {
	data, found, err := c.mirror.Get(ctx, c.mirrorKey)
	if err != nil {
		c.log.Error("roster: reading mirror", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		c.log.Warn("roster: mirror snapshot is not a list, ignoring it")
		return nil, false
	}
	var records []student.Student
	if err = json.Unmarshal(data, &records); err != nil {
		c.log.Warn("roster: decoding mirror snapshot", err)
		return nil, false
	}
	return records, true
}

// adopt replaces the records, resets the view state, writes through and renders.
func (c *Cache) adopt(ctx context.Context, records []student.Student) {
	c.mu.Lock()
	c.records = dedupe(records)
	c.page = 1
	c.filter = filter{}
	c.ordering = student.Ordering{}
	page := c.commitLocked(ctx)
	c.mu.Unlock()

	c.render(page)
}

// dedupe keeps the first record of every id.
func dedupe(records []student.Student) []student.Student {
	seen := make(map[int]bool, len(records))
	out := make([]student.Student, 0, len(records))
	for _, s := range records {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

// commitLocked writes the records through to the mirror and returns the page to render.
// c.mu must be held.
func (c *Cache) commitLocked(ctx context.Context) Page {
	if err := c.persistLocked(ctx); err != nil {
		c.log.Error("roster: writing mirror", err)
	}
	return c.pageLocked()
}

func (c *Cache) persistLocked(ctx context.Context) error {
	records := c.records
	if records == nil {
		records = []student.Student{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return errors.Wrap(c.mirror.Set(ctx, c.mirrorKey, data), "saving snapshot")
}

func (c *Cache) render(p Page) {
	if c.view == nil {
		return
	}
	if err := c.view.Render(p); err != nil {
		c.log.Error("roster: rendering page", err)
	}
}

// Render renders the current page again.
func (c *Cache) Render() {
	c.render(c.Page())
}

func (c *Cache) notify(level, msg string) {
	c.notifier.Notify(core.Notice{Level: level, Message: msg})
}

// Records returns a copy of every record, in cache order.
func (c *Cache) Records() []student.Student {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]student.Student, len(c.records))
	copy(records, c.records)
	return records
}

// Len returns the number of records.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Get returns the record with id.
func (c *Cache) Get(id int) (student.Student, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.records[i], true
	}
	return student.Student{}, false
}

// Show displays the record with id, or reports it missing.
func (c *Cache) Show(id int) error {
	s, ok := c.Get(id)
	if !ok {
		c.notify(core.NoticeError, "Student not found")
		return ErrNotFound
	}
	if c.view == nil {
		return nil
	}
	return errors.Wrap(c.view.Show(s), "showing student")
}

func (c *Cache) indexLocked(id int) int {
	for i, s := range c.records {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) nextIDLocked() int {
	var max int
	for _, s := range c.records {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

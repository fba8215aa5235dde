package roster

import (
	"context"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

// Control actions
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Control is a clicked row control: its action class and data-id attribute.
type Control struct {
	Class string
	ID    string
}

// ParseControl reads a control from its HTML class and data-id attributes.
// The first class among view, edit and delete wins.
func ParseControl(class, dataID string) Control {
	ctrl := Control{ID: strings.TrimSpace(dataID)}
	for _, cls := range strings.Fields(class) {
		switch cls {
		case ActionView, ActionEdit, ActionDelete:
			ctrl.Class = cls
			return ctrl
		}
	}
	return ctrl
}

// FormSource asks the user to edit a record.
// ok is false when the user abandoned the form.
type FormSource interface {
	EditForm(ctx context.Context, current student.Form) (edited student.Form, ok bool, err error)
}

// FormSourceFunc adapts a func to a FormSource.
type FormSourceFunc func(ctx context.Context, current student.Form) (student.Form, bool, error)

func (f FormSourceFunc) EditForm(ctx context.Context, current student.Form) (student.Form, bool, error) {
	return f(ctx, current)
}

// Dispatcher routes row controls to cache operations.
type Dispatcher struct {
	cache *Cache
	forms FormSource
}

func NewDispatcher(cache *Cache, forms FormSource) *Dispatcher {
	return &Dispatcher{cache: cache, forms: forms}
}

// Dispatch runs the operation of ctrl. Controls without an action or an id are ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, ctrl Control) error {
	switch ctrl.Class {
	case ActionView, ActionEdit, ActionDelete:
	default:
		return nil
	}
	if ctrl.ID == "" {
		return nil
	}
	id, err := strconv.Atoi(ctrl.ID)
	if err != nil {
		d.cache.notify(core.NoticeError, "Student not found")
		return ErrNotFound
	}

	switch ctrl.Class {
	case ActionView:
		return d.cache.Show(id)
	case ActionEdit:
		return d.edit(ctx, id)
	default:
		return d.cache.Delete(ctx, id)
	}
}

func (d *Dispatcher) edit(ctx context.Context, id int) error {
	s, ok := d.cache.Get(id)
	if !ok {
		d.cache.notify(core.NoticeError, "Student not found")
		return ErrNotFound
	}
	if d.forms == nil {
		return nil
	}
	form, ok, err := d.forms.EditForm(ctx, student.FormFrom(s))
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	form.ID = &id
	_, err = d.cache.Save(ctx, form)
	return err
}

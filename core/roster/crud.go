package roster

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

// Save creates (nil form ID) or updates a record.
//
// The change is applied locally first. A rejection by the remote source rolls
// it back, an unavailable source keeps it. Every failure emits one notice.
func (c *Cache) Save(ctx context.Context, form student.Form) (student.Student, error) {
	if err := form.Validate(c.validate); err != nil {
		c.notifyInvalid(err)
		return student.Student{}, err
	}
	if form.ID == nil {
		return c.create(ctx, form, false)
	}
	return c.update(ctx, *form.ID, form)
}

func (c *Cache) notifyInvalid(err error) {
	msg := core.JoinFieldErrors(core.FieldErrors(err, c.translator))
	if msg == "" {
		msg = err.Error()
	}
	c.notify(core.NoticeError, "Please fix the following: "+msg)
}

func (c *Cache) create(ctx context.Context, form student.Form, quiet bool) (student.Student, error) {
	c.mu.Lock()
	local := form.NewLocal(c.nextIDLocked())
	c.records = append([]student.Student{local}, c.records...)
	c.page = 1
	page := c.commitLocked(ctx)
	c.mu.Unlock()
	c.render(page)

	created, err := c.createRemote(ctx, local)
	switch {
	case err == nil:
		if created.ID == 0 {
			created.ID = local.ID
		}
		c.mu.Lock()
		moved := c.renumberLocked(c.replaceLocked(local.ID, created))
		page = c.commitLocked(ctx)
		c.mu.Unlock()
		c.render(page)
		for _, m := range moved {
			c.log.Warn(fmt.Sprintf("roster: student %d renumbered to %d", m.from, m.to.ID))
			if !quiet {
				c.notify(core.NoticeWarning, fmt.Sprintf("Student %s was renumbered to %d (%s)", m.to.FullName, m.to.ID, m.to.AdmissionNumber))
			}
		}
		if !quiet {
			c.notify(core.NoticeSuccess, "Student added successfully")
		}
		return created, nil

	case core.IsUnavailable(err):
		c.log.Warn("roster: creating remote student", err)
		if !quiet {
			c.notifyOffline(err, "Student saved locally")
		}
		return local, nil

	default:
		c.mu.Lock()
		if i := c.indexLocked(local.ID); i >= 0 {
			c.records = append(c.records[:i:i], c.records[i+1:]...)
		}
		page = c.commitLocked(ctx)
		c.mu.Unlock()
		c.render(page)
		if !quiet {
			c.notify(core.NoticeError, "Failed to add student: "+err.Error())
		}
		return student.Student{}, errors.Wrap(err, "creating student")
	}
}

func (c *Cache) createRemote(ctx context.Context, s student.Student) (student.Student, error) {
	if c.source == nil {
		return student.Student{}, core.ErrUnavailable
	}
	return c.source.CreateStudent(ctx, s)
}

func (c *Cache) update(ctx context.Context, id int, form student.Form) (student.Student, error) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		c.notify(core.NoticeError, "Student not found")
		return student.Student{}, ErrNotFound
	}
	prev := c.records[i]
	merged := form.Merge(prev)
	c.records[i] = merged
	page := c.commitLocked(ctx)
	c.mu.Unlock()
	c.render(page)

	updated, err := c.updateRemote(ctx, merged)
	switch {
	case err == nil:
		updated.ID = id
		if prev.AdmissionDate != "" {
			updated.AdmissionDate = prev.AdmissionDate
		}
		c.mu.Lock()
		c.replaceLocked(id, updated)
		page = c.commitLocked(ctx)
		c.mu.Unlock()
		c.render(page)
		c.notify(core.NoticeSuccess, "Student updated successfully")
		return updated, nil

	case core.IsUnavailable(err):
		c.log.Warn("roster: updating remote student", err)
		c.notifyOffline(err, "Student updated locally")
		return merged, nil

	default:
		c.mu.Lock()
		if i := c.indexLocked(id); i >= 0 {
			c.records[i] = prev
		}
		page = c.commitLocked(ctx)
		c.mu.Unlock()
		c.render(page)
		c.notify(core.NoticeError, "Failed to update student: "+err.Error())
		return student.Student{}, errors.Wrap(err, "updating student")
	}
}

func (c *Cache) updateRemote(ctx context.Context, s student.Student) (student.Student, error) {
	if c.source == nil {
		return student.Student{}, core.ErrUnavailable
	}
	return c.source.UpdateStudent(ctx, s)
}

// replaceLocked swaps the record with id for s and returns its index, -1 if id is gone.
func (c *Cache) replaceLocked(id int, s student.Student) int {
	i := c.indexLocked(id)
	if i >= 0 {
		c.records[i] = s
	}
	return i
}

type renumbered struct {
	from int
	to   student.Student
}

// renumberLocked gives a fresh id to every other record sharing the id of the
// record at keep, such as one saved locally while the source handed that id out.
// Generated admission numbers follow the new id.
func (c *Cache) renumberLocked(keep int) []renumbered {
	if keep < 0 {
		return nil
	}
	id := c.records[keep].ID
	var moved []renumbered
	for i, s := range c.records {
		if i == keep || s.ID != id {
			continue
		}
		s.ID = c.nextIDLocked()
		if s.AdmissionNumber == student.AdmissionNumberFor(id) {
			s.AdmissionNumber = student.AdmissionNumberFor(s.ID)
		}
		c.records[i] = s
		moved = append(moved, renumbered{from: id, to: s})
	}
	return moved
}

func (c *Cache) notifyOffline(err error, done string) {
	if errors.Cause(err) == core.ErrNotAuthenticated {
		c.notify(core.NoticeWarning, "Please log in to sync with the server. "+done)
		return
	}
	c.notify(core.NoticeWarning, "Server unavailable. "+done)
}

// Delete removes the record with id once the user confirmed it.
// A declined confirmation returns ErrCancelled without any change.
func (c *Cache) Delete(ctx context.Context, id int) error {
	prompt := "Are you sure you want to delete this student?"
	if s, ok := c.Get(id); ok {
		prompt = fmt.Sprintf("Delete student %s (%s)?", s.FullName, s.AdmissionNumber)
	}
	if c.confirmer != nil && !c.confirmer.Confirm(prompt) {
		return ErrCancelled
	}

	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		c.notify(core.NoticeError, "Student not found")
		return ErrNotFound
	}
	removed := c.records[i]
	c.records = append(c.records[:i:i], c.records[i+1:]...)
	page := c.commitLocked(ctx)
	c.mu.Unlock()
	c.render(page)

	err := c.deleteRemote(ctx, id)
	switch {
	case err == nil, core.IsNotFound(err):
		c.notify(core.NoticeSuccess, "Student deleted successfully")
		return nil

	case core.IsUnavailable(err):
		c.log.Warn("roster: deleting remote student", err)
		c.notifyOffline(err, "Student deleted locally")
		return nil

	default:
		c.mu.Lock()
		if c.indexLocked(id) < 0 {
			if i > len(c.records) {
				i = len(c.records)
			}
			c.records = append(c.records[:i], append([]student.Student{removed}, c.records[i:]...)...)
		}
		page = c.commitLocked(ctx)
		c.mu.Unlock()
		c.render(page)
		c.notify(core.NoticeError, "Failed to delete student: "+err.Error())
		return errors.Wrap(err, "deleting student")
	}
}

func (c *Cache) deleteRemote(ctx context.Context, id int) error {
	if c.source == nil {
		return core.ErrUnavailable
	}
	return c.source.DeleteStudent(ctx, id)
}

// ImportResult counts the outcome of an Import.
type ImportResult struct {
	Created int
	Failed  int
}

// Import creates a record per form. Invalid or rejected forms are counted as failed.
func (c *Cache) Import(ctx context.Context, forms []student.Form) ImportResult {
	var res ImportResult
	for n, form := range forms {
		form.ID = nil
		if err := form.Validate(c.validate); err != nil {
			res.Failed++
			c.log.Info(fmt.Sprintf("roster: import row %d is invalid", n+1), err)
			continue
		}
		if _, err := c.create(ctx, form, true); err != nil {
			res.Failed++
			c.log.Info(fmt.Sprintf("roster: import row %d was rejected", n+1), err)
			continue
		}
		res.Created++
	}
	level := core.NoticeSuccess
	if res.Failed > 0 {
		level = core.NoticeWarning
	}
	c.notify(level, fmt.Sprintf("Imported %d students, %d failed", res.Created, res.Failed))
	return res
}

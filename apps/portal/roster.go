package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core/roster"
	"github.com/trezcool/masomo-roster/core/student"
)

// screen drops page renders until the command is ready to show one,
// so that loading the roster does not print a table before a single record.
type screen struct {
	view roster.View
	live bool
}

func (s *screen) Render(p roster.Page) error {
	if !s.live {
		return nil
	}
	return s.view.Render(p)
}

func (s *screen) Show(st student.Student) error {
	return s.view.Show(st)
}

func (cli *commandLine) view(html bool) roster.View {
	if html {
		return roster.NewHTMLRenderer(cli.out)
	}
	return roster.NewTextRenderer(cli.out)
}

// openRoster builds the cache and loads it (remote, else mirror, else demo).
func (cli *commandLine) openRoster(ctx context.Context, html bool, confirmer roster.Confirmer) (*roster.Cache, *screen, error) {
	scr := &screen{view: cli.view(html)}
	cache, err := roster.New(roster.Options{
		Source:       cli.source,
		Mirror:       cli.mirror,
		MirrorKey:    cli.conf.Roster.MirrorKey,
		ItemsPerPage: cli.conf.Roster.ItemsPerPage,
		Notifier:     cli.notifier,
		Logger:       cli.logger,
		View:         scr,
		Confirmer:    confirmer,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "setting up roster")
	}
	origin := cache.Load(ctx)
	cli.logger.Debug(fmt.Sprintf("roster loaded from %s (%d students)", origin, cache.Len()))
	return cache, scr, nil
}

func (cli *commandLine) login(ctx context.Context, uname, pwd string) error {
	token, err := cli.source.Login(ctx, uname, pwd)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	if err = cli.session.SetToken(ctx, token); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s\n", uname)
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.session.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

// browse applies an optional view change (search, filter, sort) and shows a page.
func (cli *commandLine) browse(ctx context.Context, html bool, page int, change func(c *roster.Cache) error) error {
	cache, scr, err := cli.openRoster(ctx, html, nil)
	if err != nil {
		return err
	}
	if change != nil {
		if err = change(cache); err != nil {
			return err
		}
	}
	scr.live = true
	cache.GoToPage(page)
	return nil
}

func (cli *commandLine) dispatch(ctx context.Context, html bool, ctrl roster.Control, forms roster.FormSource) error {
	return cli.dispatchWith(ctx, html, ctrl, forms, roster.ConfirmFunc(cli.confirm))
}

func (cli *commandLine) dispatchConfirmed(ctx context.Context, ctrl roster.Control) error {
	return cli.dispatchWith(ctx, false, ctrl, nil, nil)
}

func (cli *commandLine) dispatchWith(
	ctx context.Context,
	html bool,
	ctrl roster.Control,
	forms roster.FormSource,
	confirmer roster.Confirmer,
) error {
	cache, scr, err := cli.openRoster(ctx, html, confirmer)
	if err != nil {
		return err
	}
	scr.live = ctrl.Class != roster.ActionView

	err = roster.NewDispatcher(cache, forms).Dispatch(ctx, ctrl)
	if errors.Cause(err) == roster.ErrCancelled {
		fmt.Fprintln(cli.out, "Cancelled")
		return nil
	}
	return reported(err)
}

func (cli *commandLine) add(ctx context.Context, form student.Form) error {
	cache, scr, err := cli.openRoster(ctx, false, nil)
	if err != nil {
		return err
	}
	scr.live = true
	_, err = cache.Save(ctx, form)
	return reported(err)
}

func (cli *commandLine) exportXLSX(ctx context.Context, path string) (err error) {
	cache, _, err := cli.openRoster(ctx, false, nil)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = errors.Wrap(cErr, "closing export file")
		}
	}()

	records := cache.Records()
	if err = roster.ExportXLSX(f, records); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Exported %d students to %s\n", len(records), path)
	return nil
}

func (cli *commandLine) importXLSX(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening import file")
	}
	defer func() { _ = f.Close() }()

	forms, err := roster.ImportXLSX(f)
	if err != nil {
		return errors.Wrap(err, "reading workbook")
	}

	cache, scr, err := cli.openRoster(ctx, false, nil)
	if err != nil {
		return err
	}
	res := cache.Import(ctx, forms)
	scr.live = true
	cache.GoToPage(1)
	if res.Failed > 0 {
		return errReported
	}
	return nil
}

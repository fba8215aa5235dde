package roster

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-roster/core/student"
)

const xlsxSheet = "Students"

// spreadsheet columns, in export order
var xlsxColumns = []struct {
	header string
	get    func(s student.Student) string
	set    func(f *student.Form, v string)
}{
	{"Admission No", func(s student.Student) string { return s.AdmissionNumber }, nil},
	{"Full Name", func(s student.Student) string { return s.FullName }, func(f *student.Form, v string) { f.FullName = v }},
	{"Class", func(s student.Student) string { return s.ClassName }, func(f *student.Form, v string) { f.ClassName = v }},
	{"Gender", func(s student.Student) string { return s.Gender }, func(f *student.Form, v string) { f.Gender = v }},
	{"Date of Birth", func(s student.Student) string { return s.DateOfBirth }, func(f *student.Form, v string) { f.DateOfBirth = v }},
	{"Parent Name", func(s student.Student) string { return s.ParentName }, func(f *student.Form, v string) { f.ParentName = v }},
	{"Parent Phone", func(s student.Student) string { return s.ParentPhone }, func(f *student.Form, v string) { f.ParentPhone = v }},
	{"Parent Email", func(s student.Student) string { return s.ParentEmail }, func(f *student.Form, v string) { f.ParentEmail = v }},
	{"Address", func(s student.Student) string { return s.Address }, func(f *student.Form, v string) { f.Address = v }},
	{"Blood Group", func(s student.Student) string { return s.BloodGroup }, func(f *student.Form, v string) { f.BloodGroup = v }},
	{"Allergies", func(s student.Student) string { return s.Allergies }, func(f *student.Form, v string) { f.Allergies = v }},
	{"Medical Conditions", func(s student.Student) string { return s.MedicalConditions }, func(f *student.Form, v string) { f.MedicalConditions = v }},
	{"Status", func(s student.Student) string { return s.Status }, func(f *student.Form, v string) { f.Status = v }},
	{"Admission Date", func(s student.Student) string { return s.AdmissionDate }, nil},
}

// ExportXLSX writes records as a "Students" sheet, one row per record after the header row.
func ExportXLSX(w io.Writer, records []student.Student) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := make([]interface{}, 0, len(xlsxColumns))
	for _, col := range xlsxColumns {
		header = append(header, col.header)
	}
	if err = f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, s := range records {
		row := make([]interface{}, 0, len(xlsxColumns))
		for _, col := range xlsxColumns {
			row = append(row, col.get(s))
		}
		cell, cErr := excelize.CoordinatesToCellName(1, i+2)
		if cErr != nil {
			return errors.Wrap(cErr, "locating row")
		}
		if err = f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

// ImportXLSX reads student forms from the first sheet of a workbook.
// Columns are matched by header name (case-insensitive); blank rows are skipped.
func ImportXLSX(r io.Reader) (forms []student.Form, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() {
		if cErr := f.Close(); err == nil {
			err = cErr
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook does not contain any sheet")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	setters := make(map[int]func(f *student.Form, v string))
	for i, h := range rows[0] {
		for _, col := range xlsxColumns {
			if col.set != nil && strings.EqualFold(strings.TrimSpace(h), col.header) {
				setters[i] = col.set
			}
		}
	}
	if len(setters) == 0 {
		return nil, errors.New("no known column in header row")
	}

	forms = make([]student.Form, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var (
			form  student.Form
			blank = true
		)
		for i, v := range row {
			set, ok := setters[i]
			if !ok {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				blank = false
			}
			set(&form, v)
		}
		if !blank {
			forms = append(forms, form)
		}
	}
	return forms, nil
}

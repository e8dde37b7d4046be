package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/student"
)

var StudentsHeader = []string{"First Name", "Last Name", "Email", "Grade", "Student ID", "Enrollment Date", "Status"}

func studentRows(students []student.Student) [][]string {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{s.FirstName, s.LastName, s.Email, s.Grade, s.StudentID, s.EnrollmentDate, s.Status})
	}
	return rows
}

// WriteStudentsCSV writes the students with a header row. Fields are quoted when needed.
func WriteStudentsCSV(w io.Writer, students []student.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(StudentsHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(studentRows(students)); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}

// Sheet is a worksheet of string cells below a header row.
type Sheet struct {
	Title  string
	Header []string
	Rows   [][]string
}

// NewWorkbook builds an xlsx file with one formatted worksheet per Sheet.
func NewWorkbook(sheets ...Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, errors.Wrap(err, "renaming sheet")
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, errors.Wrap(err, "creating sheet")
		}

		if err := f.SetSheetRow(s.Title, "A1", &s.Header); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
		for r, row := range s.Rows {
			row := row
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(s.Title, cell, &row); err != nil {
				return nil, errors.Wrapf(err, "writing row %d", r+2)
			}
		}
		if err := applyDefaultFormatting(f, s.Title, len(s.Header)); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// applyDefaultFormatting makes the header bold and filterable and widens the columns to their content.
func applyDefaultFormatting(f *excelize.File, sheet string, cols int) error {
	if cols == 0 {
		return nil
	}
	last := columnName(cols)

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return errors.Wrap(err, "styling header")
	}
	if err = f.AutoFilter(sheet, "A1:"+last+"1", nil); err != nil {
		return errors.Wrap(err, "adding auto filter")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return errors.Wrap(err, "reading rows")
	}
	for c := 0; c < cols; c++ {
		width := 10.0
		for r, row := range rows {
			if c >= len(row) {
				continue
			}
			w := float64(len([]rune(row[c]))) * 1.1
			if r == 0 {
				w += 1.5 // filter button
			}
			if w > width {
				width = w
			}
		}
		if width > 60 {
			width = 60
		}
		col := columnName(c + 1)
		if err = f.SetColWidth(sheet, col, col, width); err != nil {
			return errors.Wrap(err, "sizing columns")
		}
	}
	return nil
}

// columnName: 1 -> A; 27 -> AA
func columnName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

// WriteStudentsXLSX writes the students workbook.
func WriteStudentsXLSX(w io.Writer, students []student.Student) error {
	f, err := NewWorkbook(Sheet{Title: "Students", Header: StudentsHeader, Rows: studentRows(students)})
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return errors.Wrap(f.Write(w), "writing xlsx")
}

// Gradebook is the grade sheet of one class.
type Gradebook struct {
	ClassName   string
	Students    []student.Student
	Assignments []assignment.Assignment
	Matrix      Matrix
	Averages    map[int]*float64 // studentId -> average over all the student's grades
}

func (gb Gradebook) sheet() Sheet {
	header := []string{"Student ID", "Name"}
	for _, a := range gb.Assignments {
		header = append(header, fmt.Sprintf("%s (/%d)", a.Name, a.TotalPoints))
	}
	header = append(header, "Average", "Letter")

	rows := make([][]string, 0, len(gb.Students))
	for _, s := range gb.Students {
		row := []string{s.StudentID, s.FullName()}
		for _, a := range gb.Assignments {
			cell := ""
			if score := gb.Matrix[s.ID][a.ID]; score != nil {
				cell = strconv.FormatFloat(*score, 'f', -1, 64)
			}
			row = append(row, cell)
		}
		if avg := gb.Averages[s.ID]; avg != nil {
			rounded := math.Round(*avg)
			row = append(row, strconv.Itoa(int(rounded)), LetterGrade(rounded))
		} else {
			row = append(row, "-", "-")
		}
		rows = append(rows, row)
	}

	title := gb.ClassName
	if title == "" {
		title = "Gradebook"
	}
	return Sheet{Title: sheetTitle(title), Header: header, Rows: rows}
}

// WriteGradebookXLSX writes the class gradebook.
func WriteGradebookXLSX(w io.Writer, gb Gradebook) error {
	f, err := NewWorkbook(gb.sheet())
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return errors.Wrap(f.Write(w), "writing xlsx")
}

// sheetTitle strips the characters excel refuses in sheet names and caps the length.
func sheetTitle(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
	}
	if len(out) > 31 {
		out = out[:31]
	}
	if len(out) == 0 {
		return "Gradebook"
	}
	return string(out)
}

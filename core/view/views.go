package view

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/report"
	"github.com/scholarhub/backend/core/student"
)

type (
	Services struct {
		Students    *student.Service
		Classes     *class.Service
		Assignments *assignment.Service
		Grades      *grade.Service
		Attendance  *attendance.Service
	}

	Views struct {
		svc    Services
		logger core.Logger

		// one lock per upsert kind
		gradeMu      sync.Mutex
		attendanceMu sync.Mutex
	}
)

func New(svc Services, logger core.Logger) *Views {
	return &Views{svc: svc, logger: logger}
}

// snapshot holds the collections fetched for a page.
type snapshot struct {
	students    []student.Student
	classes     []class.Class
	assignments []assignment.Assignment
	grades      []grade.Grade
	records     []attendance.Record
}

// collections
const (
	withStudents = 1 << iota
	withClasses
	withAssignments
	withGrades
	withAttendance
)

// fetch loads the requested collections in parallel; the first failure cancels the others.
func (v *Views) fetch(ctx context.Context, what int) (*snapshot, error) {
	snap := new(snapshot)
	g, ctx := errgroup.WithContext(ctx)

	if what&withStudents != 0 {
		g.Go(func() (err error) {
			snap.students, err = v.svc.Students.GetAll(ctx)
			return errors.Wrap(err, "fetching students")
		})
	}
	if what&withClasses != 0 {
		g.Go(func() (err error) {
			snap.classes, err = v.svc.Classes.GetAll(ctx)
			return errors.Wrap(err, "fetching classes")
		})
	}
	if what&withAssignments != 0 {
		g.Go(func() (err error) {
			snap.assignments, err = v.svc.Assignments.GetAll(ctx)
			return errors.Wrap(err, "fetching assignments")
		})
	}
	if what&withGrades != 0 {
		g.Go(func() (err error) {
			snap.grades, err = v.svc.Grades.GetAll(ctx)
			return errors.Wrap(err, "fetching grades")
		})
	}
	if what&withAttendance != 0 {
		g.Go(func() (err error) {
			snap.records, err = v.svc.Attendance.GetAll(ctx)
			return errors.Wrap(err, "fetching attendance")
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Dashboard

func (v *Views) DashboardPage() *Page[report.DashboardStats] {
	return NewPage(v.dashboard)
}

func (v *Views) dashboard(ctx context.Context) (report.DashboardStats, error) {
	snap, err := v.fetch(ctx, withStudents|withGrades|withAttendance|withClasses)
	if err != nil {
		return report.DashboardStats{}, err
	}
	return report.Dashboard(snap.students, snap.grades, snap.records, snap.classes, core.NowFunc()), nil
}

// Students

type StudentsView struct {
	Search   string            `json:"search"`
	Status   string            `json:"status"`
	Students []student.Student `json:"students"`
	Filtered int               `json:"filtered"`
	Total    int               `json:"total"`
}

func (v *Views) StudentsPage(filter *student.QueryFilter, ordering []core.DBOrdering) *Page[StudentsView] {
	return NewPage(func(ctx context.Context) (StudentsView, error) {
		return v.students(ctx, filter, ordering)
	})
}

func (v *Views) students(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) (StudentsView, error) {
	all, err := v.svc.Students.GetAll(ctx)
	if err != nil {
		return StudentsView{}, errors.Wrap(err, "fetching students")
	}

	kept := make([]student.Student, 0, len(all))
	for _, s := range all {
		if filter.Keep(s) {
			kept = append(kept, s)
		}
	}
	if len(ordering) > 0 {
		student.Sort(kept, ordering)
	}

	sv := StudentsView{Students: kept, Filtered: len(kept), Total: len(all)}
	if filter != nil {
		sv.Search, sv.Status = filter.Search, filter.Status
	}
	return sv, nil
}

// Classes

type (
	ClassSummary struct {
		class.Class
		Students []student.Student `json:"students"`
	}

	ClassesView struct {
		Classes          []ClassSummary `json:"classes"`
		TotalClasses     int            `json:"totalClasses"`
		EnrolledStudents int            `json:"enrolledStudents"`
		AverageClassSize int            `json:"averageClassSize"`
	}
)

func (v *Views) ClassesPage() *Page[ClassesView] {
	return NewPage(v.classes)
}

func (v *Views) classes(ctx context.Context) (ClassesView, error) {
	snap, err := v.fetch(ctx, withClasses|withStudents)
	if err != nil {
		return ClassesView{}, err
	}

	summaries := make([]ClassSummary, 0, len(snap.classes))
	for _, c := range snap.classes {
		summaries = append(summaries, ClassSummary{Class: c, Students: report.ClassMembers(c, snap.students)})
	}
	return ClassesView{
		Classes:          summaries,
		TotalClasses:     len(snap.classes),
		EnrolledStudents: report.EnrolledCount(snap.classes),
		AverageClassSize: report.AverageClassSize(snap.classes),
	}, nil
}

// Grades

type (
	// StudentGrades is a gradebook row; Scores follow the order of GradesView.Assignments.
	StudentGrades struct {
		Student student.Student `json:"student"`
		Scores  []*float64      `json:"scores"`
		Average *int            `json:"average"` // nil when the student has no grade
		Letter  string          `json:"letter"`  // "-" when the student has no grade
	}

	GradesView struct {
		Classes      []class.Class           `json:"classes"`
		Class        *class.Class            `json:"class"`
		Assignments  []assignment.Assignment `json:"assignments"`
		Rows         []StudentGrades         `json:"rows"`
		ClassAverage int                     `json:"classAverage"`
		Completion   int                     `json:"completion"`
	}
)

// GradesPage builds the gradebook of the class (the first class when classID is 0).
func (v *Views) GradesPage(classID int) *Page[GradesView] {
	return NewPage(func(ctx context.Context) (GradesView, error) {
		gv, _, err := v.gradebook(ctx, classID)
		return gv, err
	})
}

func (v *Views) gradebook(ctx context.Context, classID int) (GradesView, report.Gradebook, error) {
	snap, err := v.fetch(ctx, withClasses|withStudents|withAssignments|withGrades)
	if err != nil {
		return GradesView{}, report.Gradebook{}, err
	}

	gv := GradesView{
		Classes:     snap.classes,
		Assignments: []assignment.Assignment{},
		Rows:        []StudentGrades{},
	}
	selected, ok := report.FindClass(snap.classes, classID)
	if !ok {
		if classID != 0 {
			return GradesView{}, report.Gradebook{}, class.ErrNotFound
		}
		return gv, report.Gradebook{}, nil
	}
	gv.Class = &selected

	members := report.ClassMembers(selected, snap.students)
	gv.Assignments = report.ClassAssignments(selected.ID, snap.assignments)
	matrix := report.GradeMatrix(members, gv.Assignments, snap.grades)
	averages := make(map[int]*float64, len(members))

	for _, s := range members {
		row := StudentGrades{Student: s, Scores: make([]*float64, 0, len(gv.Assignments)), Letter: "-"}
		for _, a := range gv.Assignments {
			row.Scores = append(row.Scores, matrix[s.ID][a.ID])
		}
		if avg, ok := report.StudentAverage(s.ID, snap.grades); ok {
			rounded := int(math.Round(avg))
			row.Average = &rounded
			row.Letter = report.LetterGrade(float64(rounded))
			averages[s.ID] = &avg
		}
		gv.Rows = append(gv.Rows, row)
	}
	gv.ClassAverage = report.ClassAverage(gv.Assignments, snap.grades)
	gv.Completion = report.Completion(members, gv.Assignments, snap.grades)

	gb := report.Gradebook{
		ClassName:   selected.Name,
		Students:    members,
		Assignments: gv.Assignments,
		Matrix:      matrix,
		Averages:    averages,
	}
	return gv, gb, nil
}

// Gradebook returns the export of the class gradebook.
func (v *Views) Gradebook(ctx context.Context, classID int) (report.Gradebook, error) {
	gv, gb, err := v.gradebook(ctx, classID)
	if err == nil && gv.Class == nil {
		err = class.ErrNotFound
	}
	return gb, err
}

// Attendance

type (
	// StudentAttendance is an attendance row; Week follows the order of AttendanceView.Week.
	// Statuses are empty when nothing was recorded.
	StudentAttendance struct {
		Student student.Student `json:"student"`
		Status  string          `json:"status"`
		Week    []string        `json:"week"`
		Rate    int             `json:"rate"`
	}

	AttendanceView struct {
		Classes []class.Class       `json:"classes"`
		Class   *class.Class        `json:"class"`
		Date    string              `json:"date"`
		Week    []string            `json:"week"`
		Rows    []StudentAttendance `json:"rows"`
	}
)

// AttendancePage builds the attendance sheet of the class (the first class when classID is 0)
// for the week of `date` (today when empty).
func (v *Views) AttendancePage(classID int, date string) *Page[AttendanceView] {
	return NewPage(func(ctx context.Context) (AttendanceView, error) {
		return v.attendance(ctx, classID, date)
	})
}

func (v *Views) attendance(ctx context.Context, classID int, date string) (AttendanceView, error) {
	if date == "" {
		date = core.Today()
	}
	day, err := core.ParseDay(date)
	if err != nil {
		return AttendanceView{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "must be a date formatted as YYYY-MM-DD"})
	}

	snap, err := v.fetch(ctx, withClasses|withStudents|withAttendance)
	if err != nil {
		return AttendanceView{}, err
	}

	av := AttendanceView{Classes: snap.classes, Date: date, Week: weekDays(day), Rows: []StudentAttendance{}}
	selected, ok := report.FindClass(snap.classes, classID)
	if !ok {
		if classID != 0 {
			return AttendanceView{}, class.ErrNotFound
		}
		return av, nil
	}
	av.Class = &selected

	for _, s := range report.ClassMembers(selected, snap.students) {
		row := StudentAttendance{
			Student: s,
			Status:  recordStatus(snap.records, s.ID, selected.ID, date),
			Week:    make([]string, 0, len(av.Week)),
			Rate:    report.StudentAttendanceRate(s.ID, selected.ID, snap.records),
		}
		for _, d := range av.Week {
			row.Week = append(row.Week, recordStatus(snap.records, s.ID, selected.ID, d))
		}
		av.Rows = append(av.Rows, row)
	}
	return av, nil
}

func weekDays(day time.Time) []string {
	days := report.WeekDays(day)
	week := make([]string, 0, len(days))
	for _, d := range days {
		week = append(week, d.Format(core.DateLayout))
	}
	return week
}

func recordStatus(records []attendance.Record, studentID, classID int, date string) string {
	if r, ok := report.FindRecord(records, studentID, classID, date); ok {
		return r.Status
	}
	return ""
}

// Package report computes the classroom statistics shown on the pages and builds the exports.
package report

import (
	"math"
	"time"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
)

// RecentWindow is how far back the dashboard looks for recent grades.
const RecentWindow = 7 * 24 * time.Hour

// Average is the mean of `scores`; ok is false when there is none.
func Average(scores []float64) (mean float64, ok bool) {
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), true
}

// RoundedAverage is Average rounded to the nearest integer, 0 when there is no score.
func RoundedAverage(scores []float64) int {
	mean, _ := Average(scores)
	return int(math.Round(mean))
}

func LetterGrade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// Percent is round(part/total*100), 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// AttendanceRate is the rounded percentage of Present records.
func AttendanceRate(records []attendance.Record) int {
	var present int
	for _, r := range records {
		if r.IsPresent() {
			present++
		}
	}
	return Percent(present, len(records))
}

// WeekDays returns Monday to Friday of the week (starting on Sunday) containing `day`.
func WeekDays(day time.Time) []time.Time {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	days := make([]time.Time, 5)
	for i := range days {
		days[i] = sunday.AddDate(0, 0, i+1)
	}
	return days
}

// ClassMembers keeps the students enrolled in `c`, in the order of `students`.
func ClassMembers(c class.Class, students []student.Student) []student.Student {
	members := make([]student.Student, 0, len(c.StudentIDs))
	for _, s := range students {
		if c.HasStudent(s.ID) {
			members = append(members, s)
		}
	}
	return members
}

func ClassAssignments(classID int, assignments []assignment.Assignment) []assignment.Assignment {
	kept := make([]assignment.Assignment, 0)
	for _, a := range assignments {
		if a.ClassID == classID {
			kept = append(kept, a)
		}
	}
	return kept
}

// FindClass returns the class with `id`, or the first class when id is 0.
func FindClass(classes []class.Class, id int) (class.Class, bool) {
	for _, c := range classes {
		if id == 0 || c.ID == id {
			return c, true
		}
	}
	return class.Class{}, false
}

// FindGrade returns the first grade of the student for the assignment.
func FindGrade(grades []grade.Grade, studentID, assignmentID int) (grade.Grade, bool) {
	for _, g := range grades {
		if g.StudentID == studentID && g.AssignmentID == assignmentID {
			return g, true
		}
	}
	return grade.Grade{}, false
}

// FindRecord returns the attendance record of the student in the class on `date`.
func FindRecord(records []attendance.Record, studentID, classID int, date string) (attendance.Record, bool) {
	for _, r := range records {
		if r.StudentID == studentID && r.ClassID == classID && r.Date == date {
			return r, true
		}
	}
	return attendance.Record{}, false
}

// Matrix maps studentId -> assignmentId -> score (nil when ungraded).
type Matrix map[int]map[int]*float64

func GradeMatrix(students []student.Student, assignments []assignment.Assignment, grades []grade.Grade) Matrix {
	m := make(Matrix, len(students))
	for _, s := range students {
		row := make(map[int]*float64, len(assignments))
		for _, a := range assignments {
			if g, ok := FindGrade(grades, s.ID, a.ID); ok {
				score := g.Score
				row[a.ID] = &score
			} else {
				row[a.ID] = nil
			}
		}
		m[s.ID] = row
	}
	return m
}

// StudentAverage is the mean of every grade of the student, across classes.
func StudentAverage(studentID int, grades []grade.Grade) (float64, bool) {
	filter := &grade.QueryFilter{StudentID: studentID}
	scores := make([]float64, 0)
	for _, g := range grades {
		if filter.Keep(g) {
			scores = append(scores, g.Score)
		}
	}
	return Average(scores)
}

// StudentAttendanceRate is the attendance rate of the student within the class.
func StudentAttendanceRate(studentID, classID int, records []attendance.Record) int {
	filter := &attendance.QueryFilter{StudentID: studentID, ClassID: classID}
	kept := make([]attendance.Record, 0)
	for _, r := range records {
		if filter.Keep(r) {
			kept = append(kept, r)
		}
	}
	return AttendanceRate(kept)
}

// ClassAverage is the rounded mean of the grades given on the class assignments, 0 if none.
func ClassAverage(assignments []assignment.Assignment, grades []grade.Grade) int {
	ids := make(map[int]struct{}, len(assignments))
	for _, a := range assignments {
		ids[a.ID] = struct{}{}
	}
	scores := make([]float64, 0)
	for _, g := range grades {
		if _, ok := ids[g.AssignmentID]; ok {
			scores = append(scores, g.Score)
		}
	}
	return RoundedAverage(scores)
}

// Completion is the rounded percentage of (student, assignment) cells having a grade.
func Completion(students []student.Student, assignments []assignment.Assignment, grades []grade.Grade) int {
	sIDs := make(map[int]struct{}, len(students))
	for _, s := range students {
		sIDs[s.ID] = struct{}{}
	}
	aIDs := make(map[int]struct{}, len(assignments))
	for _, a := range assignments {
		aIDs[a.ID] = struct{}{}
	}
	var graded int
	for _, g := range grades {
		_, okS := sIDs[g.StudentID]
		_, okA := aIDs[g.AssignmentID]
		if okS && okA {
			graded++
		}
	}
	return Percent(graded, len(students)*len(assignments))
}

// RecentCount counts the grades submitted at or after `since`.
func RecentCount(grades []grade.Grade, since time.Time) int {
	var n int
	for _, g := range grades {
		day, err := core.ParseDay(g.SubmittedDate)
		if err != nil {
			continue
		}
		if !day.Before(since) {
			n++
		}
	}
	return n
}

// EnrolledCount sums the class sizes (a student in two classes counts twice).
func EnrolledCount(classes []class.Class) int {
	var n int
	for _, c := range classes {
		n += c.Size()
	}
	return n
}

// AverageClassSize is the rounded mean class size, 0 without classes.
func AverageClassSize(classes []class.Class) int {
	if len(classes) == 0 {
		return 0
	}
	return int(math.Round(float64(EnrolledCount(classes)) / float64(len(classes))))
}

type DashboardStats struct {
	TotalStudents  int `json:"totalStudents"`
	AverageGrade   int `json:"averageGrade"`
	AttendanceRate int `json:"attendanceRate"`
	TotalClasses   int `json:"totalClasses"`
	RecentActivity int `json:"recentActivity"`
}

// Dashboard computes the overview stats at `now`.
func Dashboard(students []student.Student, grades []grade.Grade, records []attendance.Record, classes []class.Class, now time.Time) DashboardStats {
	return DashboardStats{
		TotalStudents:  len(students),
		AverageGrade:   RoundedAverage(grade.Scores(grades)),
		AttendanceRate: AttendanceRate(records),
		TotalClasses:   len(classes),
		RecentActivity: RecentCount(grades, now.Add(-RecentWindow)),
	}
}

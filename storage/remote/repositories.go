package remote

import (
	"context"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
)

// wire records
type (
	studentRecord struct {
		ID             int    `json:"Id,omitempty"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		Email          string `json:"email"`
		Grade          string `json:"grade"`
		StudentID      string `json:"studentId"`
		EnrollmentDate string `json:"enrollmentDate"`
		Status         string `json:"status"`
	}

	// classRecord carries the members as a comma-separated string and the name in `Name`.
	classRecord struct {
		ID         int    `json:"Id,omitempty"`
		Tags       string `json:"Tags"`
		Name       string `json:"Name"`
		Subject    string `json:"subject"`
		Period     string `json:"period"`
		StudentIDs string `json:"studentIds"`
	}

	assignmentRecord struct {
		ID          int    `json:"Id,omitempty"`
		Name        string `json:"Name"`
		ClassID     int    `json:"classId"`
		TotalPoints int    `json:"totalPoints"`
	}

	gradeRecord struct {
		ID            int     `json:"Id,omitempty"`
		StudentID     int     `json:"studentId"`
		AssignmentID  int     `json:"assignmentId"`
		Score         float64 `json:"score"`
		SubmittedDate string  `json:"submittedDate"`
	}

	attendanceRecord struct {
		ID        int    `json:"Id,omitempty"`
		StudentID int    `json:"studentId"`
		ClassID   int    `json:"classId"`
		Date      string `json:"date"`
		Status    string `json:"status"`
	}
)

// Students

type studentRepository struct {
	table table[studentRecord, student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *Client) student.Repository {
	return &studentRepository{table: table[studentRecord, student.Student]{
		client:   client,
		name:     "student",
		fields:   Fields("firstName", "lastName", "email", "grade", "studentId", "enrollmentDate", "status"),
		notFound: student.ErrNotFound,
		decode:   func(r studentRecord) student.Student { return student.Student(r) },
		encode:   func(s student.Student) studentRecord { return studentRecord(s) },
	}}
}

// QueryStudents filters the status on the backend; search and ordering are applied locally.
func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var where []Condition
	if filter != nil && filter.Status != "" {
		where = append(where, EqualTo("status", filter.Status))
	}
	students, err := repo.table.query(ctx, where...)
	if err != nil {
		return nil, err
	}
	if filter != nil && filter.Search != "" {
		kept := students[:0]
		for _, s := range students {
			if filter.Keep(s) {
				kept = append(kept, s)
			}
		}
		students = kept
	}
	if len(ordering) > 0 {
		student.Sort(students, ordering)
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	return repo.table.get(ctx, id)
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = 0
	return repo.table.create(ctx, s)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	return repo.table.update(ctx, s)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	return repo.table.remove(ctx, id)
}

// Classes

type classRepository struct {
	table table[classRecord, class.Class]
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(client *Client) class.Repository {
	return &classRepository{table: table[classRecord, class.Class]{
		client:   client,
		name:     "class",
		fields:   Fields("Tags", "Name", "subject", "period", "studentIds"),
		orderBy:  []OrderBy{{FieldName: "Name", SortType: "ASC"}},
		notFound: class.ErrNotFound,
		decode: func(r classRecord) class.Class {
			return class.Class{
				ID:         r.ID,
				Tags:       r.Tags,
				Name:       r.Name,
				Subject:    r.Subject,
				Period:     r.Period,
				StudentIDs: class.ParseStudentIDs(r.StudentIDs),
			}
		},
		encode: func(c class.Class) classRecord {
			return classRecord{
				ID:         c.ID,
				Tags:       c.Tags,
				Name:       c.Name,
				Subject:    c.Subject,
				Period:     c.Period,
				StudentIDs: class.FormatStudentIDs(c.StudentIDs),
			}
		},
	}}
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	return repo.table.query(ctx)
}

func (repo *classRepository) GetClass(ctx context.Context, id int) (class.Class, error) {
	return repo.table.get(ctx, id)
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = 0
	return repo.table.create(ctx, c)
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	return repo.table.update(ctx, c)
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) (class.Class, error) {
	return repo.table.remove(ctx, id)
}

// Assignments

type assignmentRepository struct {
	table table[assignmentRecord, assignment.Assignment]
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(client *Client) assignment.Repository {
	return &assignmentRepository{table: table[assignmentRecord, assignment.Assignment]{
		client:   client,
		name:     "assignment",
		fields:   Fields("Name", "classId", "totalPoints"),
		notFound: assignment.ErrNotFound,
		decode:   func(r assignmentRecord) assignment.Assignment { return assignment.Assignment(r) },
		encode:   func(a assignment.Assignment) assignmentRecord { return assignmentRecord(a) },
	}}
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	var where []Condition
	if filter != nil && filter.ClassID != 0 {
		where = append(where, EqualTo("classId", filter.ClassID))
	}
	return repo.table.query(ctx, where...)
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	return repo.table.get(ctx, id)
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	a.ID = 0
	return repo.table.create(ctx, a)
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	return repo.table.update(ctx, a)
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	return repo.table.remove(ctx, id)
}

// Grades

type gradeRepository struct {
	table table[gradeRecord, grade.Grade]
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(client *Client) grade.Repository {
	return &gradeRepository{table: table[gradeRecord, grade.Grade]{
		client:   client,
		name:     "grade",
		fields:   Fields("studentId", "assignmentId", "score", "submittedDate"),
		notFound: grade.ErrNotFound,
		decode:   func(r gradeRecord) grade.Grade { return grade.Grade(r) },
		encode:   func(g grade.Grade) gradeRecord { return gradeRecord(g) },
	}}
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter) ([]grade.Grade, error) {
	var where []Condition
	if filter != nil {
		if filter.StudentID != 0 {
			where = append(where, EqualTo("studentId", filter.StudentID))
		}
		if filter.AssignmentID != 0 {
			where = append(where, EqualTo("assignmentId", filter.AssignmentID))
		}
	}
	return repo.table.query(ctx, where...)
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	return repo.table.get(ctx, id)
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = 0
	return repo.table.create(ctx, g)
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	return repo.table.update(ctx, g)
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	return repo.table.remove(ctx, id)
}

// Attendance

type attendanceRepository struct {
	table table[attendanceRecord, attendance.Record]
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(client *Client) attendance.Repository {
	return &attendanceRepository{table: table[attendanceRecord, attendance.Record]{
		client:   client,
		name:     "attendance",
		fields:   Fields("studentId", "classId", "date", "status"),
		notFound: attendance.ErrNotFound,
		decode:   func(r attendanceRecord) attendance.Record { return attendance.Record(r) },
		encode:   func(r attendance.Record) attendanceRecord { return attendanceRecord(r) },
	}}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	var where []Condition
	if filter != nil {
		if filter.StudentID != 0 {
			where = append(where, EqualTo("studentId", filter.StudentID))
		}
		if filter.ClassID != 0 {
			where = append(where, EqualTo("classId", filter.ClassID))
		}
		if filter.Date != "" {
			where = append(where, EqualTo("date", filter.Date))
		}
	}
	return repo.table.query(ctx, where...)
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	return repo.table.get(ctx, id)
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	r.ID = 0
	return repo.table.create(ctx, r)
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	return repo.table.update(ctx, r)
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id int) (attendance.Record, error) {
	return repo.table.remove(ctx, id)
}

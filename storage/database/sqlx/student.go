package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/student"
)

const studentColumns = "id, first_name, last_name, email, grade, student_id, enrollment_date, status"

type studentRow struct {
	ID             int       `db:"id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	Grade          string    `db:"grade"`
	StudentID      string    `db:"student_id"`
	EnrollmentDate null.Time `db:"enrollment_date"`
	Status         string    `db:"status"`
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:             row.ID,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		Grade:          row.Grade,
		StudentID:      row.StudentID,
		EnrollmentDate: fromDate(row.EnrollmentDate),
		Status:         row.Status,
	}
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) student.Repository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var where whereClause
	if filter != nil {
		if filter.Search != "" {
			where.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR student_id ILIKE ?)", likePattern(filter.Search))
		}
		if filter.Status != "" {
			where.add("status = ?", filter.Status)
		}
	}

	var rows []studentRow
	q := "SELECT " + studentColumns + " FROM student" + where.String() + orderBy(ordering, student.OrderingFields)
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	q := "SELECT " + studentColumns + " FROM student WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.student(), nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `INSERT INTO student (first_name, last_name, email, grade, student_id, enrollment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := sqlx.GetContext(ctx, repo.exec, &s.ID, q,
		s.FirstName, s.LastName, s.Email, s.Grade, s.StudentID, toDate(s.EnrollmentDate), s.Status)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	q := `UPDATE student SET first_name = $2, last_name = $3, email = $4, grade = $5, student_id = $6,
		enrollment_date = $7, status = $8 WHERE id = $1`
	res, err := repo.exec.ExecContext(ctx, q,
		s.ID, s.FirstName, s.LastName, s.Email, s.Grade, s.StudentID, toDate(s.EnrollmentDate), s.Status)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if err = expectOne(res, student.ErrNotFound, "updating student"); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	q := "DELETE FROM student WHERE id = $1 RETURNING " + studentColumns
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "deleting student")
	}
	return row.student(), nil
}

package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/grade"
)

const gradeColumns = "id, student_id, assignment_id, score, submitted_date"

type gradeRow struct {
	ID            int       `db:"id"`
	StudentID     int       `db:"student_id"`
	AssignmentID  int       `db:"assignment_id"`
	Score         float64   `db:"score"`
	SubmittedDate null.Time `db:"submitted_date"`
}

func (row gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:            row.ID,
		StudentID:     row.StudentID,
		AssignmentID:  row.AssignmentID,
		Score:         row.Score,
		SubmittedDate: fromDate(row.SubmittedDate),
	}
}

type gradeRepository struct {
	exec core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) grade.Repository {
	return &gradeRepository{exec: exec}
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter) ([]grade.Grade, error) {
	var where whereClause
	if filter != nil {
		if filter.StudentID != 0 {
			where.add("student_id = ?", filter.StudentID)
		}
		if filter.AssignmentID != 0 {
			where.add("assignment_id = ?", filter.AssignmentID)
		}
	}

	var rows []gradeRow
	q := "SELECT " + gradeColumns + " FROM grade" + where.String() + " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.grade())
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	var row gradeRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, "SELECT "+gradeColumns+" FROM grade WHERE id = $1", id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "finding grade by ID")
	}
	return row.grade(), nil
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := "INSERT INTO grade (student_id, assignment_id, score, submitted_date) VALUES ($1, $2, $3, $4) RETURNING id"
	err := sqlx.GetContext(ctx, repo.exec, &g.ID, q, g.StudentID, g.AssignmentID, g.Score, toDate(g.SubmittedDate))
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := "UPDATE grade SET student_id = $2, assignment_id = $3, score = $4, submitted_date = $5 WHERE id = $1"
	res, err := repo.exec.ExecContext(ctx, q, g.ID, g.StudentID, g.AssignmentID, g.Score, toDate(g.SubmittedDate))
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if err = expectOne(res, grade.ErrNotFound, "updating grade"); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	var row gradeRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, "DELETE FROM grade WHERE id = $1 RETURNING "+gradeColumns, id); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "deleting grade")
	}
	return row.grade(), nil
}

package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
)

const assignmentColumns = "id, name, class_id, total_points"

type assignmentRow struct {
	ID          int    `db:"id"`
	Name        string `db:"name"`
	ClassID     int    `db:"class_id"`
	TotalPoints int    `db:"total_points"`
}

func (row assignmentRow) assignment() assignment.Assignment {
	return assignment.Assignment(row)
}

type assignmentRepository struct {
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) assignment.Repository {
	return &assignmentRepository{exec: exec}
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	var where whereClause
	if filter != nil && filter.ClassID != 0 {
		where.add("class_id = ?", filter.ClassID)
	}

	var rows []assignmentRow
	q := "SELECT " + assignmentColumns + " FROM assignment" + where.String() + " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.assignment())
	}
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	var row assignmentRow
	q := "SELECT " + assignmentColumns + " FROM assignment WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment by ID")
	}
	return row.assignment(), nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := "INSERT INTO assignment (name, class_id, total_points) VALUES ($1, $2, $3) RETURNING id"
	if err := sqlx.GetContext(ctx, repo.exec, &a.ID, q, a.Name, a.ClassID, a.TotalPoints); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := "UPDATE assignment SET name = $2, class_id = $3, total_points = $4 WHERE id = $1"
	res, err := repo.exec.ExecContext(ctx, q, a.ID, a.Name, a.ClassID, a.TotalPoints)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if err = expectOne(res, assignment.ErrNotFound, "updating assignment"); err != nil {
		return assignment.Assignment{}, err
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	var row assignmentRow
	q := "DELETE FROM assignment WHERE id = $1 RETURNING " + assignmentColumns
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "deleting assignment")
	}
	return row.assignment(), nil
}

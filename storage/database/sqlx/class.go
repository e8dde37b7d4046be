package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/class"
)

const classColumns = "id, name, subject, period, student_ids"

type classRow struct {
	ID         int           `db:"id"`
	Name       string        `db:"name"`
	Subject    null.String   `db:"subject"`
	Period     null.String   `db:"period"`
	StudentIDs pq.Int64Array `db:"student_ids"`
}

func (row classRow) class() class.Class {
	ids := make([]int, 0, len(row.StudentIDs))
	for _, id := range row.StudentIDs {
		ids = append(ids, int(id))
	}
	return class.Class{
		ID:         row.ID,
		Name:       row.Name,
		Subject:    row.Subject.String,
		Period:     row.Period.String,
		StudentIDs: ids,
	}
}

func studentIDsArray(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	return arr
}

type classRepository struct {
	exec core.DBExecutor
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(exec core.DBExecutor) class.Repository {
	return &classRepository{exec: exec}
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, "SELECT "+classColumns+" FROM class ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.class())
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id int) (class.Class, error) {
	var row classRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, "SELECT "+classColumns+" FROM class WHERE id = $1", id); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class by ID")
	}
	return row.class(), nil
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	q := "INSERT INTO class (name, subject, period, student_ids) VALUES ($1, $2, $3, $4) RETURNING id"
	err := sqlx.GetContext(ctx, repo.exec, &c.ID, q,
		c.Name, toNullString(c.Subject), toNullString(c.Period), studentIDsArray(c.StudentIDs))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	if c.StudentIDs == nil {
		c.StudentIDs = []int{}
	}
	return c, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	q := "UPDATE class SET name = $2, subject = $3, period = $4, student_ids = $5 WHERE id = $1"
	res, err := repo.exec.ExecContext(ctx, q,
		c.ID, c.Name, toNullString(c.Subject), toNullString(c.Period), studentIDsArray(c.StudentIDs))
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if err = expectOne(res, class.ErrNotFound, "updating class"); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) (class.Class, error) {
	var row classRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, "DELETE FROM class WHERE id = $1 RETURNING "+classColumns, id); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "deleting class")
	}
	return row.class(), nil
}

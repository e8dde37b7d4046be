package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/attendance"
)

const attendanceColumns = "id, student_id, class_id, date, status"

type attendanceRow struct {
	ID        int       `db:"id"`
	StudentID int       `db:"student_id"`
	ClassID   int       `db:"class_id"`
	Date      time.Time `db:"date"`
	Status    string    `db:"status"`
}

func (row attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:        row.ID,
		StudentID: row.StudentID,
		ClassID:   row.ClassID,
		Date:      row.Date.UTC().Format(core.DateLayout),
		Status:    row.Status,
	}
}

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) attendance.Repository {
	return &attendanceRepository{exec: exec}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	var where whereClause
	if filter != nil {
		if filter.StudentID != 0 {
			where.add("student_id = ?", filter.StudentID)
		}
		if filter.ClassID != 0 {
			where.add("class_id = ?", filter.ClassID)
		}
		if filter.Date != "" {
			where.add("date = ?", filter.Date)
		}
	}

	var rows []attendanceRow
	q := "SELECT " + attendanceColumns + " FROM attendance" + where.String() + " ORDER BY id"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	var row attendanceRow
	q := "SELECT " + attendanceColumns + " FROM attendance WHERE id = $1"
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound, "finding attendance by ID")
	}
	return row.record(), nil
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := "INSERT INTO attendance (student_id, class_id, date, status) VALUES ($1, $2, $3, $4) RETURNING id"
	if err := sqlx.GetContext(ctx, repo.exec, &r.ID, q, r.StudentID, r.ClassID, r.Date, r.Status); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance")
	}
	return r, nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	q := "UPDATE attendance SET student_id = $2, class_id = $3, date = $4, status = $5 WHERE id = $1"
	res, err := repo.exec.ExecContext(ctx, q, r.ID, r.StudentID, r.ClassID, r.Date, r.Status)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance")
	}
	if err = expectOne(res, attendance.ErrNotFound, "updating attendance"); err != nil {
		return attendance.Record{}, err
	}
	return r, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id int) (attendance.Record, error) {
	var row attendanceRow
	q := "DELETE FROM attendance WHERE id = $1 RETURNING " + attendanceColumns
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrNotFound, "deleting attendance")
	}
	return row.record(), nil
}

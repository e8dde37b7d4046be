package inmemdb

import (
	"context"

	"github.com/scholarhub/backend/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	return repo.db.attendance.all(filter.Keep), nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id int) (attendance.Record, error) {
	if err := repo.db.wait(ctx); err != nil {
		return attendance.Record{}, err
	}
	if r, ok := repo.db.attendance.get(id); ok {
		return r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := repo.db.wait(ctx); err != nil {
		return attendance.Record{}, err
	}
	return repo.db.attendance.insert(r), nil
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, r attendance.Record) (attendance.Record, error) {
	if err := repo.db.wait(ctx); err != nil {
		return attendance.Record{}, err
	}
	if !repo.db.attendance.replace(r) {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return r, nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, id int) (attendance.Record, error) {
	if err := repo.db.wait(ctx); err != nil {
		return attendance.Record{}, err
	}
	if r, ok := repo.db.attendance.remove(id); ok {
		return r, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

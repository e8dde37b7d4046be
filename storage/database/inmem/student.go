package inmemdb

import (
	"context"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	students := repo.db.student.all(filter.Keep)
	if len(ordering) > 0 {
		student.Sort(students, ordering)
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id int) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	if s, ok := repo.db.student.get(id); ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	return repo.db.student.insert(s), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	if !repo.db.student.replace(s) {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) (student.Student, error) {
	if err := repo.db.wait(ctx); err != nil {
		return student.Student{}, err
	}
	if s, ok := repo.db.student.remove(id); ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

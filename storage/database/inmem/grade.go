package inmemdb

import (
	"context"

	"github.com/scholarhub/backend/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter) ([]grade.Grade, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	return repo.db.grade.all(filter.Keep), nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id int) (grade.Grade, error) {
	if err := repo.db.wait(ctx); err != nil {
		return grade.Grade{}, err
	}
	if g, ok := repo.db.grade.get(id); ok {
		return g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := repo.db.wait(ctx); err != nil {
		return grade.Grade{}, err
	}
	return repo.db.grade.insert(g), nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	if err := repo.db.wait(ctx); err != nil {
		return grade.Grade{}, err
	}
	if !repo.db.grade.replace(g) {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id int) (grade.Grade, error) {
	if err := repo.db.wait(ctx); err != nil {
		return grade.Grade{}, err
	}
	if g, ok := repo.db.grade.remove(id); ok {
		return g, nil
	}
	return grade.Grade{}, grade.ErrNotFound
}

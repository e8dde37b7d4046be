package inmemdb

import (
	"context"

	"github.com/scholarhub/backend/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter) ([]assignment.Assignment, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	return repo.db.assignment.all(filter.Keep), nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	if err := repo.db.wait(ctx); err != nil {
		return assignment.Assignment{}, err
	}
	if a, ok := repo.db.assignment.get(id); ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if err := repo.db.wait(ctx); err != nil {
		return assignment.Assignment{}, err
	}
	return repo.db.assignment.insert(a), nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if err := repo.db.wait(ctx); err != nil {
		return assignment.Assignment{}, err
	}
	if !repo.db.assignment.replace(a) {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int) (assignment.Assignment, error) {
	if err := repo.db.wait(ctx); err != nil {
		return assignment.Assignment{}, err
	}
	if a, ok := repo.db.assignment.remove(id); ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

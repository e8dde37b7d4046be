package inmemdb

import (
	"context"

	"github.com/scholarhub/backend/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

// clone detaches the member list from the stored row.
func clone(c class.Class) class.Class {
	ids := make([]int, len(c.StudentIDs))
	copy(ids, c.StudentIDs)
	c.StudentIDs = ids
	return c
}

func (repo *classRepository) QueryClasses(ctx context.Context) ([]class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return nil, err
	}
	classes := repo.db.class.all(nil)
	for i := range classes {
		classes[i] = clone(classes[i])
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id int) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	if c, ok := repo.db.class.get(id); ok {
		return clone(c), nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	return clone(repo.db.class.insert(clone(c))), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	if !repo.db.class.replace(clone(c)) {
		return class.Class{}, class.ErrNotFound
	}
	return clone(c), nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) (class.Class, error) {
	if err := repo.db.wait(ctx); err != nil {
		return class.Class{}, err
	}
	if c, ok := repo.db.class.remove(id); ok {
		return c, nil
	}
	return class.Class{}, class.ErrNotFound
}

package student

import (
	"context"
	"errors"

	"github.com/scholarhub/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		// QueryStudents applies AND operation on available QueryFilter fields.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id int) (Student, error)
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// UpdateStudent replaces the stored Student having the same ID.
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudent removes the Student and returns it.
		DeleteStudent(ctx context.Context, id int) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create assigns the enrollment date (today) and the Active status.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		FirstName:      ns.FirstName,
		LastName:       ns.LastName,
		Email:          ns.Email,
		Grade:          ns.Grade,
		StudentID:      ns.StudentID,
		EnrollmentDate: core.Today(),
		Status:         StatusActive,
	})
}

func (svc *Service) GetAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, nil, nil)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, CleanOrdering(ordering))
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

// Update merges the set fields of `us` into the stored Student.
func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, us.Apply(s))
}

func (svc *Service) Delete(ctx context.Context, id int) (Student, error) {
	return svc.repo.DeleteStudent(ctx, id)
}

// CleanOrdering drops the orderings on unknown fields.
func CleanOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	var cleaned []core.DBOrdering
	for _, ord := range ordering {
		if _, ok := OrderingFields[ord.Field]; ok {
			cleaned = append(cleaned, ord)
		}
	}
	return cleaned
}

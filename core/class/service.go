package class

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("class not found")
)

type (
	Repository interface {
		QueryClasses(ctx context.Context) ([]Class, error)
		GetClass(ctx context.Context, id int) (Class, error)
		CreateClass(ctx context.Context, c Class) (Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id int) (Class, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	ids := nc.StudentIDs
	if ids == nil {
		ids = []int{}
	}
	return svc.repo.CreateClass(ctx, Class{
		Name:       nc.Name,
		Subject:    nc.Subject,
		Period:     nc.Period,
		StudentIDs: ids,
	})
}

func (svc *Service) GetAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	return svc.repo.UpdateClass(ctx, uc.Apply(c))
}

func (svc *Service) Delete(ctx context.Context, id int) (Class, error) {
	return svc.repo.DeleteClass(ctx, id)
}

// Enroll adds the Student to the Class (no-op if already enrolled).
func (svc *Service) Enroll(ctx context.Context, id, studentID int) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if c.HasStudent(studentID) {
		return c, nil
	}
	c.StudentIDs = append(append([]int{}, c.StudentIDs...), studentID)
	return svc.repo.UpdateClass(ctx, c)
}

// Unenroll removes the Student from the Class (no-op if not enrolled).
func (svc *Service) Unenroll(ctx context.Context, id, studentID int) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if !c.HasStudent(studentID) {
		return c, nil
	}
	ids := make([]int, 0, len(c.StudentIDs)-1)
	for _, sid := range c.StudentIDs {
		if sid != studentID {
			ids = append(ids, sid)
		}
	}
	c.StudentIDs = ids
	return svc.repo.UpdateClass(ctx, c)
}

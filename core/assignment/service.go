package assignment

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")
)

type (
	Repository interface {
		QueryAssignments(ctx context.Context, filter *QueryFilter) ([]Assignment, error)
		GetAssignment(ctx context.Context, id int) (Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) (Assignment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	return svc.repo.CreateAssignment(ctx, Assignment{
		Name:        na.Name,
		ClassID:     na.ClassID,
		TotalPoints: na.TotalPoints,
	})
}

func (svc *Service) GetAll(ctx context.Context) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, nil)
}

func (svc *Service) GetByClassID(ctx context.Context, classID int) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, &QueryFilter{ClassID: classID})
}

func (svc *Service) GetByID(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	return svc.repo.UpdateAssignment(ctx, ua.Apply(a))
}

func (svc *Service) Delete(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.DeleteAssignment(ctx, id)
}

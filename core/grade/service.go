package grade

import (
	"context"
	"errors"

	"github.com/scholarhub/backend/core"
)

var (
	// errors
	ErrNotFound = errors.New("grade not found")
)

type (
	Repository interface {
		QueryGrades(ctx context.Context, filter *QueryFilter) ([]Grade, error)
		GetGrade(ctx context.Context, id int) (Grade, error)
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int) (Grade, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create sets the submission date to today.
func (svc *Service) Create(ctx context.Context, ng NewGrade) (Grade, error) {
	return svc.repo.CreateGrade(ctx, Grade{
		StudentID:     ng.StudentID,
		AssignmentID:  ng.AssignmentID,
		Score:         ng.Score,
		SubmittedDate: core.Today(),
	})
}

func (svc *Service) GetAll(ctx context.Context) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, nil)
}

func (svc *Service) GetByStudentID(ctx context.Context, studentID int) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, &QueryFilter{StudentID: studentID})
}

func (svc *Service) GetByAssignmentID(ctx context.Context, assignmentID int) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, &QueryFilter{AssignmentID: assignmentID})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Grade, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Grade, error) {
	return svc.repo.GetGrade(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGrade) (Grade, error) {
	g, err := svc.repo.GetGrade(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	return svc.repo.UpdateGrade(ctx, ug.Apply(g))
}

func (svc *Service) Delete(ctx context.Context, id int) (Grade, error) {
	return svc.repo.DeleteGrade(ctx, id)
}
